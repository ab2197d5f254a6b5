package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cat-virtual/internal/adapters/auth/supabase"
	mqttevents "cat-virtual/internal/adapters/events/mqtt"
	mem "cat-virtual/internal/adapters/storage/memory"
	pg "cat-virtual/internal/adapters/storage/postgres"
	"cat-virtual/internal/adapters/storage/sqlite"
	"cat-virtual/internal/config"
	"cat-virtual/internal/domain/petstate"
	"cat-virtual/internal/platform/logger"
	"cat-virtual/internal/ports/auth"
	"cat-virtual/internal/router"
)

// @title Cat Virtual API
// @version 1.0
// @description Estado de la mascota virtual: hambre y felicidad que decaen con el tiempo.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	if err := run(cfg, lg); err != nil {
		lg.Error("fatal", logger.Fields{"error": err})
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg logger.Logger) error {
	// Store remoto: Postgres si hay DSN, si no in-memory.
	var records petstate.RecordStore
	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = pg.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			return err
		}
		records = pg.NewPetStateRepo(db)
		lg.Info("remote store: postgres", nil)
	} else {
		records = mem.NewPetStateRepo()
		lg.Warn("DB_DSN not set, remote store is in-memory", nil)
	}

	device, err := sqlite.Open(cfg.DeviceDBPath)
	if err != nil {
		return err
	}
	defer device.Close()

	var verifier auth.AuthVerifier
	if cfg.AuthEnabled() {
		v, err := supabase.NewVerifier(supabase.Config{URL: cfg.SupabaseURL, AnonKey: cfg.SupabaseAnonKey})
		if err != nil {
			return err
		}
		verifier = v
	} else {
		lg.Warn("auth disabled, accepting X-Debug-User-ID", nil)
	}

	var publisher petstate.Publisher
	if cfg.MQTTBroker != "" {
		p, err := mqttevents.NewRealPublisher(cfg.MQTTBroker, cfg.MQTTTopic, cfg.MQTTClientID)
		if err != nil {
			// MQTT es opcional: sin broker la mascota sigue funcionando.
			lg.Warn("mqtt disabled", logger.Fields{"broker": cfg.MQTTBroker, "error": err})
		} else {
			defer p.Close()
			publisher = p
		}
	}

	hub := petstate.NewHub(records, device, petstate.SessionOptions{
		Interval:    cfg.DecayInterval,
		SaveTimeout: cfg.SaveTimeout,
		IdleTimeout: cfg.SessionIdle,
		Name:        cfg.PetName,
		Logger:      lg,
		Publisher:   publisher,
	})
	defer hub.Close()

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Hub:          hub,
		Logger:       lg,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("starting server", logger.Fields{"addr": cfg.Addr()})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sigCh:
		lg.Info("shutting down", logger.Fields{"signal": s.String()})
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
