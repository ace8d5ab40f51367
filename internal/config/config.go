// Package config loads configuration for the two guidebook processes from the
// environment. Secrets live in .env.secret next to the regular .env so they can
// be kept out of version control; both files are optional and plain environment
// variables always win.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Server configures the platform process: the web app plus the relay API.
type Server struct {
	Addr    string `envconfig:"ADDR" default:":8080"`
	DBPath  string `envconfig:"DB_PATH" default:"guidebook.db"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	APIKey  string `envconfig:"SECRET_API_KEY" required:"true"`
}

// Bot configures the relay process: the Telegram poller.
type Bot struct {
	Token   string `envconfig:"SECRET_BOT_TOKEN" required:"true"`
	APIURL  string `envconfig:"SECRET_API_URL" required:"true"`
	APIKey  string `envconfig:"SECRET_API_KEY" required:"true"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	// Cadence of the two scheduled tasks. Updates are drained far more often
	// than notifications are delivered.
	UpdateEvery  time.Duration `envconfig:"UPDATE_EVERY" default:"1s"`
	DeliverEvery time.Duration `envconfig:"DELIVER_EVERY" default:"1m"`

	// Long-poll timeout (seconds) passed to Telegram getUpdates.
	PollTimeout int `envconfig:"POLL_TIMEOUT" default:"10"`
}

func loadDotenv() {
	// Missing files are fine; the environment may be set some other way.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.secret")
}

// LoadServer reads the platform process configuration.
func LoadServer() (Server, error) {
	loadDotenv()
	var cfg Server
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// LoadBot reads the relay process configuration.
func LoadBot() (Bot, error) {
	loadDotenv()
	var cfg Bot
	err := envconfig.Process("", &cfg)
	return cfg, err
}
