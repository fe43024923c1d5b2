package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/tradeagent/internal/config"
	"github.com/Alias1177/tradeagent/internal/database"
	"github.com/Alias1177/tradeagent/internal/notify"
	"github.com/Alias1177/tradeagent/internal/server"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and signal stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			p := buildPipeline(ctx, cfg)
			defer p.Close()

			srv := server.New(p.agent, p.risk, server.Options{
				Addr:    cfg.HTTPAddr,
				GinMode: cfg.GinMode,
			})

			if cfg.DB.Host != "" {
				db, err := database.New(ctx, cfg.DBParams())
				if err != nil {
					return err
				}
				defer db.Close()
				srv.WithStore(db)
				log.Info().Str("host", cfg.DB.Host).Msg("Signal store connected")
			}

			if cfg.TelegramBotToken != "" {
				bot, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatIDs)
				if err != nil {
					log.Warn().Err(err).Msg("Telegram notifications disabled")
				} else {
					srv.WithNotifier(bot)
				}
			}

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides HTTP_ADDR)")
	return cmd
}
