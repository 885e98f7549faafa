package plan

import (
	"reflect"
	"testing"

	"roadtrip/internal/model"
)

func TestFuelStopBeforeCriticalSegment(t *testing.T) {
	// Scenario: 55L tank at 10 L/100km and three 200km segments. The
	// third segment would drop the tank below 15%; a required fuel stop
	// must precede it.
	segs := processed(
		leg("A", "B", 200, 120), leg("B", "C", 200, 120), leg("C", "D", 200, 120),
	)
	stops := GenerateStops(segs, testVehicle(), testSettings())
	var fuel *model.SuggestedStop
	for i := range stops {
		if stops[i].Type == model.StopFuel && stops[i].Priority == model.PriorityRequired {
			fuel = &stops[i]
			break
		}
	}
	if fuel == nil {
		t.Fatal("expected a required fuel suggestion")
	}
	p := fuel.Placement
	if p.Kind != model.PlacementBoundary || p.Side != model.SideBefore || p.SegmentIndex > 2 {
		t.Fatalf("fuel placement %+v, want boundary-before segment <= 2", p)
	}
	if fuel.Details.FillLiters <= 0 {
		t.Fatalf("fill liters %v, want > 0", fuel.Details.FillLiters)
	}
}

func TestFuelSimulationRefillsToFull(t *testing.T) {
	// After any emitted fuel stop the simulated tank is full again, so a
	// route of repeated identical legs triggers fills at a steady rhythm.
	var segs []model.Segment
	for i := 0; i < 6; i++ {
		segs = append(segs, leg("A", "B", 200, 120))
	}
	stops := GenerateStops(processed(segs...), testVehicle(), testSettings())
	fuelSegs := []int{}
	for _, s := range stops {
		if s.Type == model.StopFuel && s.Priority != model.PriorityOptional {
			fuelSegs = append(fuelSegs, s.Placement.SegmentIndex)
		}
	}
	if len(fuelSegs) < 2 {
		t.Fatalf("got %d fuel stops, want >= 2", len(fuelSegs))
	}
	gap := fuelSegs[1] - fuelSegs[0]
	for i := 1; i < len(fuelSegs); i++ {
		if fuelSegs[i]-fuelSegs[i-1] != gap {
			t.Fatalf("irregular fill rhythm %v: tank not reset to full", fuelSegs)
		}
	}
}

func TestRestStopsEveryInterval(t *testing.T) {
	// Balanced style breaks every 2 hours: a 5h segment holds two.
	stops := GenerateStops(processed(leg("A", "B", 300, 300)), testVehicle(), testSettings())
	rests := 0
	for _, s := range stops {
		if s.Type == model.StopRest {
			rests++
			if s.Placement.Kind != model.PlacementMidDrive {
				t.Fatalf("rest placement %+v, want mid-drive", s.Placement)
			}
			if s.Priority != model.PriorityRecommended {
				t.Fatalf("rest priority %q", s.Priority)
			}
		}
	}
	if rests != 2 {
		t.Fatalf("got %d rest stops, want 2", rests)
	}
}

func TestNoRestOnShortSegments(t *testing.T) {
	var segs []model.Segment
	for i := 0; i < 10; i++ {
		segs = append(segs, leg("A", "B", 20, 25))
	}
	stops := GenerateStops(processed(segs...), testVehicle(), testSettings())
	for _, s := range stops {
		if s.Type == model.StopRest {
			t.Fatalf("rest stop emitted for sub-30-minute segments: %+v", s)
		}
	}
}

func TestMealStopAtClockBoundary(t *testing.T) {
	// Departing 09:00, a 6h segment crosses 12:00: one lunch stop.
	st := testSettings()
	st.DepartureHour = 9
	stops := GenerateStops(processed(leg("A", "B", 300, 360)), testVehicle(), st)
	meals := []model.SuggestedStop{}
	for _, s := range stops {
		if s.Type == model.StopMeal {
			meals = append(meals, s)
		}
	}
	if len(meals) != 1 {
		t.Fatalf("got %d meal stops, want 1", len(meals))
	}
	m := meals[0]
	if m.Details.MealLabel != "lunch" {
		t.Fatalf("meal label %q, want lunch", m.Details.MealLabel)
	}
	if m.EstimatedTime.Hour() != 12 || m.EstimatedTime.Minute() != 0 {
		t.Fatalf("meal estimated at %v, want 12:00", m.EstimatedTime)
	}
	if m.DurationMin != 45 || m.Priority != model.PriorityOptional {
		t.Fatalf("meal %v min / %q, want 45 min optional", m.DurationMin, m.Priority)
	}
}

func TestOvernightStopAtDailyMax(t *testing.T) {
	st := testSettings()
	st.MaxDriveHours = 8
	segs := processed(leg("A", "B", 500, 480), leg("B", "C", 300, 240))
	stops := GenerateStops(segs, testVehicle(), st)
	var night *model.SuggestedStop
	for i := range stops {
		if stops[i].Type == model.StopOvernight {
			night = &stops[i]
			break
		}
	}
	if night == nil {
		t.Fatal("expected an overnight suggestion at the daily max")
	}
	p := night.Placement
	if p.Kind != model.PlacementBoundary || p.Side != model.SideAfter || p.SegmentIndex != 0 {
		t.Fatalf("overnight placement %+v, want boundary-after segment 0", p)
	}
	if night.Priority != model.PriorityRequired || night.DurationMin != 480 {
		t.Fatalf("overnight %v min / %q", night.DurationMin, night.Priority)
	}
}

func TestMergeSamePlacementPrefersFuel(t *testing.T) {
	merged := mergeSamePlacement([]model.SuggestedStop{
		{
			ID: "a", Type: model.StopOvernight, Priority: model.PriorityRequired,
			Reason:    "daily limit",
			Placement: model.Placement{Kind: model.PlacementBoundary, SegmentIndex: 2, Side: model.SideAfter},
		},
		{
			ID: "b", Type: model.StopFuel, Priority: model.PriorityRecommended,
			Reason:    "past safe range",
			Placement: model.Placement{Kind: model.PlacementBoundary, SegmentIndex: 2, Side: model.SideAfter},
		},
	})
	if len(merged) != 1 {
		t.Fatalf("got %d stops, want 1", len(merged))
	}
	m := merged[0]
	if m.Type != model.StopFuel {
		t.Fatalf("merged type %q, want fuel", m.Type)
	}
	if m.Priority != model.PriorityRequired {
		t.Fatalf("merged priority %q, want required (highest wins)", m.Priority)
	}
	if m.Reason != "past safe range; daily limit" {
		t.Fatalf("merged reason %q", m.Reason)
	}
	if !reflect.DeepEqual(m.Details.MergedFrom, []model.StopType{model.StopOvernight}) {
		t.Fatalf("mergedFrom %v", m.Details.MergedFrom)
	}
}

func TestStopIDsStableAcrossRuns(t *testing.T) {
	segs := processed(leg("A", "B", 200, 120), leg("B", "C", 200, 240), leg("C", "D", 200, 120))
	a := GenerateStops(segs, testVehicle(), testSettings())
	b := GenerateStops(segs, testVehicle(), testSettings())
	if !reflect.DeepEqual(a, b) {
		t.Fatal("regeneration must reproduce identical suggestions")
	}
	for _, s := range a {
		if s.Accepted || s.Dismissed {
			t.Fatal("generator must never set user flags")
		}
	}
}

func TestGenerateStopsEmptyInput(t *testing.T) {
	if got := GenerateStops(nil, testVehicle(), testSettings()); len(got) != 0 {
		t.Fatalf("got %d stops for empty input", len(got))
	}
}
