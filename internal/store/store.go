package store

import (
	"context"
	"errors"

	"roadtrip/internal/model"
)

// Store is the persistence interface used by the API server. Trips are
// saved drafts (inputs plus user stop decisions); computed plans are
// never persisted.
type Store interface {
	// Vehicles
	CreateVehicle(ctx context.Context, tenantID string, v model.Vehicle) (model.Vehicle, error)
	GetVehicle(ctx context.Context, tenantID, id string) (model.Vehicle, error)
	ListVehicles(ctx context.Context, tenantID, cursor string, limit int) ([]model.Vehicle, string, error)
	UpdateVehicle(ctx context.Context, tenantID, id string, v model.Vehicle) (model.Vehicle, error)
	DeleteVehicle(ctx context.Context, tenantID, id string) error

	// Trips
	CreateTrip(ctx context.Context, tenantID string, t model.Trip) (model.Trip, error)
	GetTrip(ctx context.Context, tenantID, id string) (model.Trip, error)
	ListTrips(ctx context.Context, tenantID, cursor string, limit int) ([]model.Trip, string, error)
	UpdateTrip(ctx context.Context, tenantID, id string, t model.Trip) (model.Trip, error)
	DeleteTrip(ctx context.Context, tenantID, id string) error

	// Stop overrides: one user decision about one suggested stop,
	// keyed by the stop's deterministic ID. Bumps the trip version.
	SaveStopOverride(ctx context.Context, tenantID, tripID, stopID string, ov model.StopOverride) (model.Trip, error)
}

var ErrNotFound = errors.New("not found")
