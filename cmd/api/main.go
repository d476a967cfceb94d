package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"pet-sitting-marketplace/internal/adapters/auth/identity"
	"pet-sitting-marketplace/internal/adapters/notify/pushgateway"
	"pet-sitting-marketplace/internal/config"
	"pet-sitting-marketplace/internal/platform/logger"
	"pet-sitting-marketplace/internal/ports/auth"
	"pet-sitting-marketplace/internal/ports/notify"
	"pet-sitting-marketplace/internal/router"
)

func main() {
	// .env es opcional; en prod las vars vienen del entorno.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	lg := logger.NewFromEnv()

	var verifier auth.AuthVerifier
	if cfg.IdentityBaseURL != "" {
		client, err := identity.NewClient(identity.Config{
			BaseURL: cfg.IdentityBaseURL,
			APIKey:  cfg.IdentityAPIKey,
			Timeout: cfg.HTTPTimeout,
		})
		if err != nil {
			log.Fatalf("identity client: %v", err)
		}
		verifier = identity.NewVerifier(client)
	} else {
		lg.Warn("identity gateway not configured, running in dev auth mode", nil)
	}

	var pusher notify.Pusher
	if cfg.PushBaseURL != "" && !cfg.PushDisabled {
		p, err := pushgateway.New(pushgateway.Config{
			BaseURL: cfg.PushBaseURL,
			APIKey:  cfg.PushAPIKey,
			Timeout: cfg.HTTPTimeout,
		})
		if err != nil {
			log.Fatalf("push gateway: %v", err)
		}
		pusher = p
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Pusher:       pusher,
		Logger:       lg,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lg.Info("starting server", map[string]any{"addr": cfg.Addr()})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
