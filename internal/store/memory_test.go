package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"roadtrip/internal/model"
)

func testTrip() model.Trip {
	return model.Trip{
		Name: "Coast run",
		Segments: []model.Segment{{
			From:        model.Place{Name: "A"},
			To:          model.Place{Name: "B"},
			DistanceKm:  500,
			DurationMin: 330,
		}},
		Vehicle:  model.Vehicle{TankLiters: 55, LitersPer100Km: 10},
		Settings: model.TripSettings{StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestMemoryVehicleCRUD(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	v, err := m.CreateVehicle(ctx, "t1", model.Vehicle{Name: "Wagon", TankLiters: 60, LitersPer100Km: 8})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.ID == "" || v.TenantID != "t1" {
		t.Fatalf("vehicle not normalized: %+v", v)
	}

	got, err := m.GetVehicle(ctx, "t1", v.ID)
	if err != nil || got.Name != "Wagon" {
		t.Fatalf("get: %v %+v", err, got)
	}
	if _, err := m.GetVehicle(ctx, "other", v.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-tenant read: %v", err)
	}

	v.Name = "Van"
	if _, err := m.UpdateVehicle(ctx, "t1", v.ID, v); err != nil {
		t.Fatalf("update: %v", err)
	}
	items, next, err := m.ListVehicles(ctx, "t1", "", 10)
	if err != nil || len(items) != 1 || next != "" {
		t.Fatalf("list: %v %d %q", err, len(items), next)
	}
	if items[0].Name != "Van" {
		t.Fatalf("update lost: %+v", items[0])
	}

	if err := m.DeleteVehicle(ctx, "t1", v.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.GetVehicle(ctx, "t1", v.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}

func TestMemoryTripVersioning(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	tr, err := m.CreateTrip(ctx, "t1", testTrip())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tr.Version != 1 {
		t.Fatalf("new trip version %d, want 1", tr.Version)
	}

	tr.Name = "Coast run v2"
	tr2, err := m.UpdateTrip(ctx, "t1", tr.ID, tr)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if tr2.Version != 2 {
		t.Fatalf("updated version %d, want 2", tr2.Version)
	}
	if !tr2.CreatedAt.Equal(tr.CreatedAt) {
		t.Fatal("update must not rewrite createdAt")
	}
}

func TestMemorySaveStopOverrideMerges(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	tr, _ := m.CreateTrip(ctx, "t1", testTrip())

	acc := true
	tr2, err := m.SaveStopOverride(ctx, "t1", tr.ID, "stop-1", model.StopOverride{Accepted: &acc})
	if err != nil {
		t.Fatalf("save override: %v", err)
	}
	dur := 30.0
	tr3, err := m.SaveStopOverride(ctx, "t1", tr.ID, "stop-1", model.StopOverride{DurationMin: &dur})
	if err != nil {
		t.Fatalf("save override: %v", err)
	}
	ov := tr3.Overrides["stop-1"]
	if ov.Accepted == nil || !*ov.Accepted {
		t.Fatal("earlier accepted decision lost on merge")
	}
	if ov.DurationMin == nil || *ov.DurationMin != 30 {
		t.Fatalf("duration override missing: %+v", ov)
	}
	if tr3.Version != tr2.Version+1 {
		t.Fatalf("version %d after %d", tr3.Version, tr2.Version)
	}

	if _, err := m.SaveStopOverride(ctx, "t1", "nope", "stop-1", model.StopOverride{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown trip: %v", err)
	}
}

func TestMemoryListTripsPagination(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := m.CreateTrip(ctx, "t1", testTrip()); err != nil {
			t.Fatal(err)
		}
	}
	page1, cursor, err := m.ListTrips(ctx, "t1", "", 3)
	if err != nil || len(page1) != 3 || cursor == "" {
		t.Fatalf("page1: %v %d %q", err, len(page1), cursor)
	}
	page2, cursor2, err := m.ListTrips(ctx, "t1", cursor, 3)
	if err != nil || len(page2) != 2 || cursor2 != "" {
		t.Fatalf("page2: %v %d %q", err, len(page2), cursor2)
	}
	seen := map[string]bool{}
	for _, tr := range append(page1, page2...) {
		if seen[tr.ID] {
			t.Fatalf("trip %s repeated across pages", tr.ID)
		}
		seen[tr.ID] = true
	}
}
