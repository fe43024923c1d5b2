package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	httpClient "github.com/Alias1177/tradeagent/internal/platform/http"
	"github.com/Alias1177/tradeagent/models"
)

// ErrEmptyCompletion is returned when the API answers without choices.
var ErrEmptyCompletion = errors.New("openai returned no choices")

// Client wraps the OpenAI API client
type Client struct {
	client *openai.Client
	model  string
	http   *httpClient.Client
	logger zerolog.Logger
}

// ClientOptions configures the narrative client.
type ClientOptions struct {
	APIKey         string
	Model          string
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
	MaxRetries     int
}

// NewClient creates a new OpenAI client
func NewClient(opts ClientOptions) *Client {
	if opts.Model == "" {
		opts.Model = openai.GPT4oMini
	}
	hc := httpClient.NewClient(httpClient.ClientOptions{
		Timeout:        opts.RequestTimeout,
		RequestsPerSec: opts.RequestsPerSec,
		MaxRetries:     opts.MaxRetries,
	})

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	cfg.HTTPClient = hc.HTTPClient

	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  opts.Model,
		http:   hc,
		logger: log.With().Str("component", "openai_client").Logger(),
	}
}

// GenerateCompletion sends a prompt to OpenAI and returns the completion.
// Rate limits and server errors are retried; other API errors are not.
func (c *Client) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Int("prompt_len", len(prompt)).Str("model", c.model).Msg("Sending prompt to OpenAI")

	var resp openai.ChatCompletionResponse
	err := c.http.Retry(ctx, func() error {
		var err error
		resp, err = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("OpenAI API error")
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn().Msg("OpenAI returned empty choices")
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Narrate asks the model for a trading recommendation on a finished analysis.
func (c *Client) Narrate(ctx context.Context, req models.NarrativeRequest) (string, error) {
	return c.GenerateCompletion(ctx, BuildPrompt(req))
}

// BuildPrompt renders the recommendation request for an analysis.
func BuildPrompt(req models.NarrativeRequest) string {
	var sb strings.Builder
	sb.WriteString("Based on the following market analysis, provide a trading recommendation:\n\n")

	sb.WriteString("Market Analysis:\n")
	sb.WriteString(fmt.Sprintf("Symbol: %s\nTimeframe: %s\n", req.Symbol, req.Timeframe))
	if req.Technical != nil {
		sb.WriteString(fmt.Sprintf("Current price: %.5f\n", req.Technical.CurrentPrice))
	}
	if p := req.Chart.SupportPrice(); p != nil {
		sb.WriteString(fmt.Sprintf("Nearest support: %.5f\n", *p))
	}
	if p := req.Chart.ResistancePrice(); p != nil {
		sb.WriteString(fmt.Sprintf("Nearest resistance: %.5f\n", *p))
	}

	sb.WriteString("\nTechnical Indicators:\n")
	if req.Technical != nil {
		results := req.Technical.Results()
		for _, name := range models.AllIndicators {
			r, ok := results[name]
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("- %s: %s (%s)\n", name, r.Interpretation, r.Signal))
		}
	}

	sb.WriteString("\nChart Patterns:\n")
	if len(req.Chart.Patterns) == 0 {
		sb.WriteString("- none\n")
	}
	for _, p := range req.Chart.Patterns {
		sb.WriteString(fmt.Sprintf("- %s (%s, %s)\n", p.Name, p.Type, p.Signal))
	}

	s := req.Signal
	sb.WriteString("\nEngine Signal:\n")
	sb.WriteString(fmt.Sprintf("%s with %.2f%% confidence, quality %.2f, %d confluences\n",
		s.SignalType, s.Confidence, s.QualityScore, s.ConfluenceCount))
	for _, reason := range s.Reasons {
		sb.WriteString("- " + reason + "\n")
	}
	if r := req.Risk; r != nil {
		sb.WriteString(fmt.Sprintf("Entry %.5f, stop %.5f, TP1 %.5f, TP2 %.5f, TP3 %.5f, R:R %v:1\n",
			s.EntryPrice, r.StopLoss.Price, r.TakeProfits.TP1.Price, r.TakeProfits.TP2.Price,
			r.TakeProfits.TP3.Price, r.RiskReward.Ratio))
	}

	sb.WriteString(`
Please provide:
1. Trading Signal (BUY/SELL/HOLD)
2. Confidence Level (0-100%)
3. Entry Points
4. Stop Loss
5. Take Profit Targets
6. Risk/Reward Ratio
7. Key Reasons for the Recommendation
`)
	return sb.String()
}
