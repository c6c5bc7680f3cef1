// The sweeper runs the materialization sweep on a fixed interval. It is meant
// to run alongside the API server against the same database file.
package main

import (
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ledgerlight/backend/internal/models"
	"github.com/ledgerlight/backend/internal/sweep"
	"github.com/ledgerlight/backend/internal/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration from a .env file if one exists
	_ = godotenv.Load()

	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if ok && logFormat == "human" {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(output).With().Timestamp().Logger()

	// How often the sweep runs. Runs are cheap since the checkpoints make
	// them no-ops when nothing is due.
	interval := time.Hour
	if value, ok := os.LookupEnv("SWEEP_INTERVAL"); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			log.Fatal().Str("SWEEP_INTERVAL", value).Msg("SWEEP_INTERVAL is not a valid duration")
		}
		interval = parsed
	}

	dataDir := filepath.Join(".", "data")
	err := os.MkdirAll(dataDir, os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	err = models.Connect(filepath.Join(dataDir, "gorm.db"))
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	log.Info().Dur("interval", interval).Msg("sweeper startup complete")

	// Sweep once on startup so that a restart never delays due resources
	// by a full interval
	sweep.Run(models.DB, types.Today())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			sweep.Run(models.DB, types.Today())
		case sig := <-quit:
			log.Info().Str("signal", sig.String()).Msg("sweeper shutting down")
			return
		}
	}
}
