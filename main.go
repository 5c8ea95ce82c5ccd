package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/minimal-match/internal/config"
	"github.com/robalobadob/minimal-match/internal/httpserver"
	"github.com/robalobadob/minimal-match/internal/store"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	symbols, err := cfg.Symbols()
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.SymbolsFile).Msg("failed to load symbols")
	}

	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()

	srv := httpserver.New(db, store.NewMemorySessions(), httpserver.Options{
		ClientOrigin: cfg.ClientOrigin,
		JWTSecret:    cfg.JWTSecret,
		SessionTTL:   cfg.SessionTTL,
		Timing:       cfg.Timing(),
		Symbols:      symbols,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go srv.RunJanitor(ctx, time.Minute)

	httpSrv := &http.Server{Addr: ":" + cfg.Port, Handler: srv.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("port", cfg.Port).Int("symbols", len(symbols)).Msg("starting minimal-match server")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
}
