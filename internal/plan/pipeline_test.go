package plan

import (
	"reflect"
	"testing"

	"roadtrip/internal/model"
)

func TestBuildPlanEmptyRequest(t *testing.T) {
	res := BuildPlan(model.PlanRequest{Settings: testSettings()})
	if res.Days == nil || res.Events == nil || res.Suggestions == nil {
		t.Fatal("empty request must produce empty slices, not nils")
	}
	if len(res.Days) != 0 || len(res.Events) != 0 {
		t.Fatalf("empty request produced %d days / %d events", len(res.Days), len(res.Events))
	}
}

func TestBuildPlanEndToEnd(t *testing.T) {
	req := model.PlanRequest{
		Segments: []model.Segment{
			leg("Seattle", "Boise", 820, 480),
			leg("Boise", "Salt Lake City", 550, 330),
		},
		Vehicle:  testVehicle(),
		Settings: testSettings(),
	}
	res := BuildPlan(req)

	if len(res.Days) < 2 {
		t.Fatalf("got %d days, want >= 2 for 13.5h of driving", len(res.Days))
	}
	if len(res.Events) == 0 {
		t.Fatal("no timeline events")
	}
	if res.Events[0].Type != model.EventDeparture {
		t.Fatalf("first event %q, want departure", res.Events[0].Type)
	}
	if last := res.Events[len(res.Events)-1]; last.Type != model.EventArrival || last.Location != "Salt Lake City" {
		t.Fatalf("last event %q at %q", last.Type, last.Location)
	}
	hasFuel := false
	for _, s := range res.Suggestions {
		if s.Type == model.StopFuel {
			hasFuel = true
		}
	}
	if !hasFuel {
		t.Fatal("1370 km on a 55L tank must suggest fuel")
	}
	if len(res.Assignments) == 0 {
		t.Fatal("no driver assignments")
	}
	for _, a := range res.Assignments {
		if a.Driver != 1 {
			t.Fatalf("single-driver trip assigned driver %d", a.Driver)
		}
	}
}

func TestBuildPlanDeterministic(t *testing.T) {
	req := model.PlanRequest{
		Segments: []model.Segment{
			leg("A", "B", 600, 400),
			leg("B", "C", 500, 350),
			leg("C", "D", 400, 300),
		},
		Vehicle:  testVehicle(),
		Settings: testSettings(),
	}
	a := BuildPlan(req)
	b := BuildPlan(req)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical requests must reproduce identical plans")
	}
}

func TestBuildPlanDismissalRemovesEventNotSuggestion(t *testing.T) {
	req := model.PlanRequest{
		Segments: []model.Segment{leg("A", "B", 300, 300)},
		Vehicle:  testVehicle(),
		Settings: testSettings(),
	}
	base := BuildPlan(req)
	if len(base.Suggestions) == 0 {
		t.Fatal("expected suggestions on a 5h drive")
	}
	target := base.Suggestions[0].ID

	dismissed := true
	req.Overrides = map[string]model.StopOverride{target: {Dismissed: &dismissed}}
	res := BuildPlan(req)

	found := false
	for _, s := range res.Suggestions {
		if s.ID == target {
			found = true
			if !s.Dismissed {
				t.Fatal("dismissal flag lost on regeneration")
			}
		}
	}
	if !found {
		t.Fatal("dismissed suggestion dropped from the suggestion list")
	}
	for _, e := range res.Events {
		for _, s := range e.Stops {
			if s.ID == target {
				t.Fatal("dismissed stop still scheduled on the timeline")
			}
		}
	}
}

func TestBuildPlanDriverRotation(t *testing.T) {
	req := model.PlanRequest{
		Segments: []model.Segment{
			leg("A", "B", 300, 180), leg("B", "C", 300, 180),
			leg("C", "D", 300, 180), leg("D", "E", 300, 180),
		},
		Vehicle:  testVehicle(),
		Settings: testSettings(),
	}
	req.Settings.Drivers = 2
	res := BuildPlan(req)

	seen := map[int]bool{}
	for _, a := range res.Assignments {
		seen[a.Driver] = true
	}
	if len(seen) != 2 {
		t.Fatalf("expected both drivers to take a turn: %+v", res.Assignments)
	}
	var total float64
	for _, st := range res.DriverStats {
		total += st.TotalMinutes
	}
	if total != 720 {
		t.Fatalf("driver minutes sum %.0f, want 720", total)
	}
}
