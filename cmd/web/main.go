package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pefman/health-duel/internal/api"
	"github.com/pefman/health-duel/internal/battle"
	"github.com/pefman/health-duel/internal/config"
	"github.com/pefman/health-duel/internal/fallback"
	"github.com/pefman/health-duel/internal/form"
	"github.com/pefman/health-duel/internal/profile"
	"github.com/pefman/health-duel/internal/session"
	"github.com/pefman/health-duel/internal/stats"
	"github.com/pefman/health-duel/internal/web"
)

// Build metadata injected via -ldflags at build time
var (
	buildVersion = "dev"
	buildTime    = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if os.Getenv("LOG_LEVEL") == "debug" {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		log.Fatalf("battle catalog: %v", err)
	}

	client := api.NewClient(cfg.APIConfig())
	mocks := fallback.Default()
	srv, err := web.New(web.Deps{
		Runner:    battle.NewRunner(cfg.Battle, battle.TimerPacer{}, catalog, nil),
		Matches:   client,
		Collector: form.NewCollector(client),
		Viewer:    profile.NewViewer(client, cfg.PublicOrigin, mocks),
		Sessions:  session.NewCookieStore(cfg.SessionCookie),
		Tally:     stats.NewTally(),
		Fallback:  mocks,
		Origin:    cfg.PublicOrigin,
		Base:      ctx,
	})
	if err != nil {
		log.Fatalf("web: %v", err)
	}

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()
	slog.InfoContext(ctx, "health-duel web listening",
		"version", buildVersion, "built", buildTime, "addr", cfg.Addr, "api", cfg.APIBase,
		"damage", cfg.Battle.Damage, "stepDelay", cfg.Battle.StepDelay)

	<-ctx.Done()
	slog.InfoContext(ctx, "shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "graceful shutdown failed", "error", err)
		if err := s.Close(); err != nil {
			slog.ErrorContext(ctx, "forced close failed", "error", err)
		}
	}
	slog.InfoContext(ctx, "server shutdown complete")
}
