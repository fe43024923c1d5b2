// Package notify pushes finished analyses to Telegram chats.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/tradeagent/models"
)

// sendDelay keeps bursts under Telegram's 30 messages per second.
const sendDelay = 50 * time.Millisecond

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram broadcasts actionable analyses to a fixed set of chats.
type Telegram struct {
	bot     sender
	chatIDs []int64
	logger  zerolog.Logger
}

// NewTelegram connects to the bot API with the given token.
func NewTelegram(token string, chatIDs []int64) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	return newTelegram(bot, chatIDs), nil
}

func newTelegram(bot sender, chatIDs []int64) *Telegram {
	return &Telegram{
		bot:     bot,
		chatIDs: chatIDs,
		logger:  log.With().Str("component", "telegram_notifier").Logger(),
	}
}

// Notify sends the analysis to every chat. Only directional signals that
// passed the quality gate are sent; anything else is skipped silently.
func (t *Telegram) Notify(ctx context.Context, a *models.Analysis) error {
	if !Actionable(a) {
		return nil
	}
	text := FormatAnalysis(a)

	var failed int
	for i, chatID := range t.chatIDs {
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			t.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send analysis")
			failed++
		}
		if i < len(t.chatIDs)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sendDelay):
			}
		}
	}

	t.logger.Info().Str("analysis", a.ID).Int("chats", len(t.chatIDs)).Int("failed", failed).Msg("Analysis broadcast")
	if failed > 0 {
		return fmt.Errorf("telegram: %d of %d sends failed", failed, len(t.chatIDs))
	}
	return nil
}

// Actionable reports whether an analysis is worth broadcasting.
func Actionable(a *models.Analysis) bool {
	return a != nil && a.Signal.SignalType.IsDirectional() && a.Validation.Passed
}

// FormatAnalysis renders the plain-text message for an analysis.
func FormatAnalysis(a *models.Analysis) string {
	var sb strings.Builder
	s := a.Signal

	icon := "🟢"
	if s.SignalType == models.SignalTypeSell {
		icon = "🔴"
	}
	sb.WriteString(fmt.Sprintf("%s %s %s (%s)\n", icon, s.SignalType, a.Symbol, a.Timeframe))
	sb.WriteString(fmt.Sprintf("Confidence: %.2f%% | Quality: %.2f | Strength: %s\n", s.Confidence, s.QualityScore, s.Strength))
	sb.WriteString(fmt.Sprintf("Entry: %.5f\n", s.EntryPrice))

	if r := a.Risk; r != nil {
		sb.WriteString(fmt.Sprintf("Stop: %.5f (%s)\n", r.StopLoss.Price, r.StopLoss.Method))
		for i, tp := range r.TakeProfits.Legs() {
			sb.WriteString(fmt.Sprintf("TP%d: %.5f (%v%%)\n", i+1, tp.Price, tp.PositionPercentage))
		}
		sb.WriteString(fmt.Sprintf("R:R %v:1 (%s)\n", r.RiskReward.Ratio, r.RiskReward.Status))
		sb.WriteString(fmt.Sprintf("Size: %v units, risk %.2f\n", r.PositionSize.Units, r.PositionSize.RiskAmount))
		if !r.Checks.AllPassed {
			sb.WriteString("⚠ Risk limits exceeded\n")
		}
	}

	if len(s.Reasons) > 0 {
		sb.WriteString("\nReasons:\n")
		for _, reason := range s.Reasons {
			sb.WriteString("• " + reason + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
