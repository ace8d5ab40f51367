package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/eguide/guidebook/internal/config"
	"github.com/eguide/guidebook/internal/db"
	"github.com/eguide/guidebook/internal/store"
	"github.com/eguide/guidebook/internal/web"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("db open")
	}

	r := web.Router(cfg.APIKey,
		store.NewUserStore(conn),
		store.NewLinkStore(conn),
		store.NewNotificationStore(conn))

	log.Info().Str("addr", cfg.Addr).Msg("guidebook listening")
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
