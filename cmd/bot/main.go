package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/eguide/guidebook/internal/bot"
	"github.com/eguide/guidebook/internal/config"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	client := bot.NewClient(cfg.Token)
	relay := bot.NewRelayClient(cfg.APIURL, cfg.APIKey)
	poller := bot.NewPoller(client, relay, cfg)

	// An operator interrupt is the only thing that stops the loop; the
	// in-flight tick is allowed to finish.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Warn().Msg("starting...")
	poller.Run(ctx)
	log.Warn().Msg("exiting...")
}
