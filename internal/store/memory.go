package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"roadtrip/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu          sync.Mutex
	vehicles    map[string]model.Vehicle // id -> vehicle
	vehiclesTen map[string][]string      // tenant -> vehicle ids
	trips       map[string]model.Trip    // id -> trip
	tripsTen    map[string][]string      // tenant -> trip ids
}

func NewMemory() *Memory {
	return &Memory{
		vehicles:    map[string]model.Vehicle{},
		vehiclesTen: map[string][]string{},
		trips:       map[string]model.Trip{},
		tripsTen:    map[string][]string{},
	}
}

func (m *Memory) CreateVehicle(ctx context.Context, tenantID string, v model.Vehicle) (model.Vehicle, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	v.ID = uuid.New().String()
	v.TenantID = tenantID
	v.CreatedAt = time.Now().UTC()
	m.vehicles[v.ID] = v
	m.vehiclesTen[tenantID] = append(m.vehiclesTen[tenantID], v.ID)
	return v, nil
}

func (m *Memory) GetVehicle(ctx context.Context, tenantID, id string) (model.Vehicle, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok || v.TenantID != tenantID {
		return model.Vehicle{}, ErrNotFound
	}
	return v, nil
}

func (m *Memory) ListVehicles(ctx context.Context, tenantID, cursor string, limit int) ([]model.Vehicle, string, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	ids := m.vehiclesTen[tenantID]
	out := []model.Vehicle{}
	next := pageIDs(ids, cursor, limit, func(id string) { out = append(out, m.vehicles[id]) })
	return out, next, nil
}

func (m *Memory) UpdateVehicle(ctx context.Context, tenantID, id string, v model.Vehicle) (model.Vehicle, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	cur, ok := m.vehicles[id]
	if !ok || cur.TenantID != tenantID {
		return model.Vehicle{}, ErrNotFound
	}
	v.ID = cur.ID
	v.TenantID = cur.TenantID
	v.CreatedAt = cur.CreatedAt
	m.vehicles[id] = v
	return v, nil
}

func (m *Memory) DeleteVehicle(ctx context.Context, tenantID, id string) error {
	m.mu.Lock(); defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok || v.TenantID != tenantID {
		return ErrNotFound
	}
	delete(m.vehicles, id)
	m.vehiclesTen[tenantID] = removeID(m.vehiclesTen[tenantID], id)
	return nil
}

func (m *Memory) CreateTrip(ctx context.Context, tenantID string, t model.Trip) (model.Trip, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	t.ID = uuid.New().String()
	t.TenantID = tenantID
	t.Version = 1
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	if t.Overrides == nil {
		t.Overrides = map[string]model.StopOverride{}
	}
	m.trips[t.ID] = t
	m.tripsTen[tenantID] = append(m.tripsTen[tenantID], t.ID)
	return t, nil
}

func (m *Memory) GetTrip(ctx context.Context, tenantID, id string) (model.Trip, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok || t.TenantID != tenantID {
		return model.Trip{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) ListTrips(ctx context.Context, tenantID, cursor string, limit int) ([]model.Trip, string, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	ids := m.tripsTen[tenantID]
	out := []model.Trip{}
	next := pageIDs(ids, cursor, limit, func(id string) { out = append(out, m.trips[id]) })
	return out, next, nil
}

func (m *Memory) UpdateTrip(ctx context.Context, tenantID, id string, t model.Trip) (model.Trip, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	cur, ok := m.trips[id]
	if !ok || cur.TenantID != tenantID {
		return model.Trip{}, ErrNotFound
	}
	t.ID = cur.ID
	t.TenantID = cur.TenantID
	t.CreatedAt = cur.CreatedAt
	t.Version = cur.Version + 1
	t.UpdatedAt = time.Now().UTC()
	if t.Overrides == nil {
		t.Overrides = cur.Overrides
	}
	m.trips[id] = t
	return t, nil
}

func (m *Memory) DeleteTrip(ctx context.Context, tenantID, id string) error {
	m.mu.Lock(); defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok || t.TenantID != tenantID {
		return ErrNotFound
	}
	delete(m.trips, id)
	m.tripsTen[tenantID] = removeID(m.tripsTen[tenantID], id)
	return nil
}

func (m *Memory) SaveStopOverride(ctx context.Context, tenantID, tripID, stopID string, ov model.StopOverride) (model.Trip, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	t, ok := m.trips[tripID]
	if !ok || t.TenantID != tenantID {
		return model.Trip{}, ErrNotFound
	}
	// Copy-on-write so earlier reads keep their snapshot.
	next := make(map[string]model.StopOverride, len(t.Overrides)+1)
	for k, v := range t.Overrides {
		next[k] = v
	}
	merged := next[stopID]
	if ov.Accepted != nil {
		merged.Accepted = ov.Accepted
	}
	if ov.Dismissed != nil {
		merged.Dismissed = ov.Dismissed
	}
	if ov.DurationMin != nil {
		merged.DurationMin = ov.DurationMin
	}
	next[stopID] = merged
	t.Overrides = next
	t.Version++
	t.UpdatedAt = time.Now().UTC()
	m.trips[tripID] = t
	return t, nil
}

// pageIDs walks ids after cursor, visiting up to limit entries, and
// returns the next cursor ("" when the page is not full).
func pageIDs(ids []string, cursor string, limit int, visit func(id string)) string {
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	n := 0
	var last string
	for i := start; i < len(ids) && n < limit; i++ {
		visit(ids[i])
		last = ids[i]
		n++
	}
	if n < limit {
		return ""
	}
	return last
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
