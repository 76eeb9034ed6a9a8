// Command r9kbot runs the duplicate-content moderation bot: it connects to
// the platform gateway, enforces uniqueness in the configured channels, and
// optionally serves a read-only admin API for infraction stats.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/r9klabs/r9kbot/internal/bot"
	"github.com/r9klabs/r9kbot/internal/config"
	httpapi "github.com/r9klabs/r9kbot/internal/http"
	"github.com/r9klabs/r9kbot/internal/observability"
	"github.com/r9klabs/r9kbot/internal/platform"
	"github.com/r9klabs/r9kbot/internal/platform/gateway"
	"github.com/r9klabs/r9kbot/internal/platform/rest"
	"github.com/r9klabs/r9kbot/internal/repo"
	"github.com/r9klabs/r9kbot/internal/services"
)

func main() {
	cfg := config.MustLoad()
	log := newLogger(cfg)

	log.Info().
		Str("version", versioninfo.Short()).
		Int("moderated_channels", len(cfg.ModeratedChannels)).
		Bool("silent_mode", cfg.SilentMode).
		Msg("r9kbot starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, versioninfo.Short())
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	actions := rest.New(cfg.APIBaseURL, cfg.Token, log)
	b := &bot.Bot{
		Cfg:        cfg,
		Moderation: services.NewModerationService(db, actions, cfg.SilentMode, log),
		Stats:      &services.StatsService{DB: db},
		Actions:    actions,
		Log:        log,
	}

	gw := gateway.New(cfg.GatewayURL, cfg.Token, log)
	gw.On(platform.EventMessageCreate, b.HandleEvent)
	gw.On(platform.EventMessageUpdate, b.HandleEvent)

	var admin *http.Server
	if cfg.Admin.Addr != "" {
		gin.SetMode(cfg.Admin.GinMode)
		r := gin.New()
		httpapi.RegisterRoutes(r, db, cfg)
		admin = &http.Server{
			Addr:              cfg.Admin.Addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.Admin.Addr).Msg("admin api listening")
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("admin api server failed")
				stop()
			}
		}()
	}

	if err := gw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("gateway loop exited")
	}

	if admin != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := admin.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("admin api shutdown failed")
		}
	}

	log.Info().Msg("r9kbot stopped")
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr)
	if cfg.LogPretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Str("service", "r9kbot").Logger()
}
