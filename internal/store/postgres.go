package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"roadtrip/internal/model"
)

// Postgres persists vehicles and trip drafts. Trip inputs (segments,
// settings, geometry, overrides) live in JSONB columns; the plan itself
// is recomputed on demand and never stored.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// EnsureSchema creates the tables if they do not exist (dev helper;
// production deployments run migrations out of band).
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS vehicles (
    id UUID PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    name TEXT,
    tank_liters DOUBLE PRECISION NOT NULL,
    liters_per_100km DOUBLE PRECISION NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS vehicles_tenant_idx ON vehicles (tenant_id, id);
CREATE TABLE IF NOT EXISTS trips (
    id UUID PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    name TEXT,
    vehicle_id TEXT,
    vehicle JSONB NOT NULL,
    segments JSONB NOT NULL,
    settings JSONB NOT NULL,
    geometry JSONB,
    overrides JSONB NOT NULL DEFAULT '{}',
    version INT NOT NULL DEFAULT 1,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS trips_tenant_idx ON trips (tenant_id, id);
`)
	return err
}

func (p *Postgres) CreateVehicle(ctx context.Context, tenantID string, v model.Vehicle) (model.Vehicle, error) {
	v.ID = uuid.New().String()
	v.TenantID = tenantID
	v.CreatedAt = time.Now().UTC()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO vehicles (id, tenant_id, name, tank_liters, liters_per_100km, created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		v.ID, v.TenantID, v.Name, v.TankLiters, v.LitersPer100Km, v.CreatedAt)
	if err != nil {
		return model.Vehicle{}, err
	}
	return v, nil
}

func (p *Postgres) GetVehicle(ctx context.Context, tenantID, id string) (model.Vehicle, error) {
	var v model.Vehicle
	row := p.db.QueryRowContext(ctx,
		`SELECT id::text, tenant_id, COALESCE(name,''), tank_liters, liters_per_100km, created_at FROM vehicles WHERE tenant_id=$1 AND id=$2`,
		tenantID, id)
	if err := row.Scan(&v.ID, &v.TenantID, &v.Name, &v.TankLiters, &v.LitersPer100Km, &v.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return v, ErrNotFound
		}
		return v, err
	}
	return v, nil
}

func (p *Postgres) ListVehicles(ctx context.Context, tenantID, cursor string, limit int) ([]model.Vehicle, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, tenant_id, COALESCE(name,''), tank_liters, liters_per_100km, created_at FROM vehicles WHERE tenant_id=$1 AND id::text > $2 ORDER BY id LIMIT $3`,
		tenantID, cursor, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.Vehicle{}
	var last string
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.TenantID, &v.Name, &v.TankLiters, &v.LitersPer100Km, &v.CreatedAt); err != nil {
			return nil, "", err
		}
		out = append(out, v)
		last = v.ID
	}
	var next string
	if len(out) == limit {
		next = last
	}
	return out, next, rows.Err()
}

func (p *Postgres) UpdateVehicle(ctx context.Context, tenantID, id string, v model.Vehicle) (model.Vehicle, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE vehicles SET name=$3, tank_liters=$4, liters_per_100km=$5 WHERE tenant_id=$1 AND id=$2`,
		tenantID, id, v.Name, v.TankLiters, v.LitersPer100Km)
	if err != nil {
		return model.Vehicle{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Vehicle{}, ErrNotFound
	}
	return p.GetVehicle(ctx, tenantID, id)
}

func (p *Postgres) DeleteVehicle(ctx context.Context, tenantID, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM vehicles WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateTrip(ctx context.Context, tenantID string, t model.Trip) (model.Trip, error) {
	t.ID = uuid.New().String()
	t.TenantID = tenantID
	t.Version = 1
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	if t.Overrides == nil {
		t.Overrides = map[string]model.StopOverride{}
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO trips (id, tenant_id, name, vehicle_id, vehicle, segments, settings, geometry, overrides, version, created_at, updated_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		t.ID, t.TenantID, t.Name, t.VehicleID, toJSON(t.Vehicle), toJSON(t.Segments), toJSON(t.Settings), toJSONOrNull(t.Geometry), toJSON(t.Overrides), t.Version, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return model.Trip{}, err
	}
	return t, nil
}

func (p *Postgres) GetTrip(ctx context.Context, tenantID, id string) (model.Trip, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id::text, tenant_id, COALESCE(name,''), COALESCE(vehicle_id,''), vehicle, segments, settings, geometry, overrides, version, created_at, updated_at FROM trips WHERE tenant_id=$1 AND id=$2`,
		tenantID, id)
	return scanTrip(row)
}

func (p *Postgres) ListTrips(ctx context.Context, tenantID, cursor string, limit int) ([]model.Trip, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, tenant_id, COALESCE(name,''), COALESCE(vehicle_id,''), vehicle, segments, settings, geometry, overrides, version, created_at, updated_at FROM trips WHERE tenant_id=$1 AND id::text > $2 ORDER BY id LIMIT $3`,
		tenantID, cursor, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.Trip{}
	var last string
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, t)
		last = t.ID
	}
	var next string
	if len(out) == limit {
		next = last
	}
	return out, next, rows.Err()
}

func (p *Postgres) UpdateTrip(ctx context.Context, tenantID, id string, t model.Trip) (model.Trip, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE trips SET name=$3, vehicle_id=$4, vehicle=$5, segments=$6, settings=$7, geometry=$8, version=version+1, updated_at=now() WHERE tenant_id=$1 AND id=$2`,
		tenantID, id, t.Name, t.VehicleID, toJSON(t.Vehicle), toJSON(t.Segments), toJSON(t.Settings), toJSONOrNull(t.Geometry))
	if err != nil {
		return model.Trip{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Trip{}, ErrNotFound
	}
	return p.GetTrip(ctx, tenantID, id)
}

func (p *Postgres) DeleteTrip(ctx context.Context, tenantID, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM trips WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveStopOverride(ctx context.Context, tenantID, tripID, stopID string, ov model.StopOverride) (model.Trip, error) {
	// Merge at the JSONB level: existing decision fields survive unless
	// the new override sets them.
	res, err := p.db.ExecContext(ctx,
		`UPDATE trips SET overrides = jsonb_set(overrides, ARRAY[$3], COALESCE(overrides->$3, '{}'::jsonb) || $4::jsonb), version=version+1, updated_at=now() WHERE tenant_id=$1 AND id=$2`,
		tenantID, tripID, stopID, toJSON(ov))
	if err != nil {
		return model.Trip{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Trip{}, ErrNotFound
	}
	return p.GetTrip(ctx, tenantID, tripID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (model.Trip, error) {
	var t model.Trip
	var vehicle, segments, settings, overrides, geometry []byte
	err := row.Scan(&t.ID, &t.TenantID, &t.Name, &t.VehicleID, &vehicle, &segments, &settings, &geometry, &overrides, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, ErrNotFound
		}
		return t, err
	}
	if err := json.Unmarshal(vehicle, &t.Vehicle); err != nil {
		return t, err
	}
	if err := json.Unmarshal(segments, &t.Segments); err != nil {
		return t, err
	}
	if err := json.Unmarshal(settings, &t.Settings); err != nil {
		return t, err
	}
	if len(geometry) > 0 {
		var g model.RouteGeometry
		if err := json.Unmarshal(geometry, &g); err != nil {
			return t, err
		}
		t.Geometry = &g
	}
	if err := json.Unmarshal(overrides, &t.Overrides); err != nil {
		return t, err
	}
	return t, nil
}

func toJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

func toJSONOrNull(v *model.RouteGeometry) any {
	if v == nil {
		return nil
	}
	return toJSON(v)
}
