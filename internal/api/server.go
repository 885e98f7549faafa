package api

import (
	"context"
	"os"
	"strings"

	"roadtrip/internal/auth"
	"roadtrip/internal/config"
	"roadtrip/internal/metrics"
	"roadtrip/internal/store"
)

type Server struct {
	Store   store.Store
	Auth    *auth.Verifier
	Broker  EventBroker
	Cache   *PlanCache
	Pricing config.Pricing
}

// NewServer creates a Server. If DATABASE_URL is unset, uses the
// in-memory store; if REDIS_URL is unset, the in-process broker.
func NewServer() (*Server, error) {
	dsn := os.Getenv("DATABASE_URL")
	var s store.Store
	if strings.TrimSpace(dsn) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		// Schema bootstrap (dev helper)
		if os.Getenv("DB_MIGRATE") != "false" {
			_ = sp.EnsureSchema(context.Background())
		}
		s = sp
	}
	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		if rb, err := NewRedisBroker(); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}
	pricing, err := config.LoadPricing()
	if err != nil {
		return nil, err
	}
	metrics.RegisterDefault()
	return &Server{
		Store:   s,
		Auth:    auth.NewVerifierFromEnv(),
		Broker:  broker,
		Cache:   NewPlanCache(),
		Pricing: pricing,
	}, nil
}
