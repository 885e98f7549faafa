package plan

import (
	"reflect"
	"testing"
	"time"

	"roadtrip/internal/model"
)

func timed(typ model.EventType, label string, arrive time.Time, durMin float64, stops ...model.SuggestedStop) model.TimedEvent {
	return model.TimedEvent{
		Type:        typ,
		Label:       label,
		Arrive:      arrive,
		Depart:      arrive.Add(minutes(durMin)),
		DurationMin: durMin,
		Stops:       stops,
	}
}

func TestConsolidateFuelAbsorbsNearbyMeal(t *testing.T) {
	// Scenario: fuel at 13:00 and lunch 30 minutes later collapse into a
	// single 45-minute "Fuel + Lunch", saving half an hour.
	fuelStop := model.SuggestedStop{ID: "f1", Type: model.StopFuel}
	mealStop := model.SuggestedStop{ID: "m1", Type: model.StopMeal}
	events := []model.TimedEvent{
		timed(model.EventDeparture, "Depart A", at(testStart, 8, 0), 0),
		timed(model.EventDrive, "Drive: A → B", at(testStart, 8, 0), 300),
		timed(model.EventFuel, "Fuel stop", at(testStart, 13, 0), 15, fuelStop),
		timed(model.EventDrive, "Drive: A → B", at(testStart, 13, 15), 15),
		timed(model.EventMeal, "Meal stop (lunch)", at(testStart, 13, 30), 45, mealStop),
		timed(model.EventDrive, "Drive: B → C", at(testStart, 14, 15), 120),
		timed(model.EventArrival, "Arrive C", at(testStart, 16, 15), 0),
	}
	out := ConsolidateStops(events)

	var combo *model.TimedEvent
	for i := range out {
		if out[i].Type == model.EventCombo {
			combo = &out[i]
		}
		if out[i].Type == model.EventFuel || out[i].Type == model.EventMeal {
			t.Fatalf("unmerged %s event survived", out[i].Type)
		}
	}
	if combo == nil {
		t.Fatal("expected a combo event")
	}
	if combo.Label != "Fuel + Lunch" {
		t.Fatalf("combo label %q", combo.Label)
	}
	if combo.TimeSavedMin != 30 {
		t.Fatalf("time saved %.0f min, want 30", combo.TimeSavedMin)
	}
	if !combo.Arrive.Equal(at(testStart, 13, 0)) || combo.DurationMin != 45 {
		t.Fatalf("combo at %v for %.0f min", combo.Arrive, combo.DurationMin)
	}
	if len(combo.Stops) != 2 {
		t.Fatalf("combo carries %d stops, want 2", len(combo.Stops))
	}
	arrival := out[len(out)-1]
	if !arrival.Arrive.Equal(at(testStart, 15, 45)) {
		t.Fatalf("arrival retimed to %v, want 15:45", arrival.Arrive)
	}
}

func TestConsolidateMealAbsorbsForwardFuel(t *testing.T) {
	// The wide pass lets a meal claim a fuel stop up to five hours ahead:
	// the driver fills up where they eat.
	fuelStop := model.SuggestedStop{ID: "f1", Type: model.StopFuel}
	mealStop := model.SuggestedStop{ID: "m1", Type: model.StopMeal}
	events := []model.TimedEvent{
		timed(model.EventDrive, "Drive: A → B", at(testStart, 8, 0), 240),
		timed(model.EventMeal, "Meal stop (lunch)", at(testStart, 12, 0), 45, mealStop),
		timed(model.EventDrive, "Drive: B → C", at(testStart, 12, 45), 195),
		timed(model.EventFuel, "Fuel stop", at(testStart, 16, 0), 15, fuelStop),
		timed(model.EventDrive, "Drive: C → D", at(testStart, 16, 15), 60),
	}
	out := ConsolidateStops(events)

	var combo *model.TimedEvent
	for i := range out {
		if out[i].Type == model.EventCombo {
			combo = &out[i]
		}
	}
	if combo == nil {
		t.Fatal("expected a combo event")
	}
	if combo.Label != "Fuel + Lunch" {
		t.Fatalf("combo label %q", combo.Label)
	}
	if combo.DurationMin != 45 {
		t.Fatalf("combo keeps the meal's %.0f min", combo.DurationMin)
	}
	// Span 12:00–16:15 collapses into 45 minutes.
	if combo.TimeSavedMin != 210 {
		t.Fatalf("time saved %.0f min, want 210", combo.TimeSavedMin)
	}
}

func TestConsolidateComboLabelsByClockHour(t *testing.T) {
	mk := func(hour, min int, absorbed model.EventType) string {
		stop := model.SuggestedStop{ID: "x", Type: model.StopMeal}
		typ := model.EventMeal
		if absorbed == model.EventRest {
			stop.Type = model.StopRest
			typ = model.EventRest
		}
		events := []model.TimedEvent{
			timed(model.EventFuel, "Fuel stop", at(testStart, hour, min), 15, model.SuggestedStop{ID: "f", Type: model.StopFuel}),
			timed(typ, "", at(testStart, hour, min+20), 15, stop),
		}
		out := ConsolidateStops(events)
		for _, e := range out {
			if e.Type == model.EventCombo {
				return e.Label
			}
		}
		t.Fatalf("no combo for %02d:%02d", hour, min)
		return ""
	}
	if got := mk(9, 0, model.EventMeal); got != "Fuel + Breakfast" {
		t.Fatalf("09:00 label %q", got)
	}
	if got := mk(12, 30, model.EventMeal); got != "Fuel + Lunch" {
		t.Fatalf("12:30 label %q", got)
	}
	if got := mk(18, 0, model.EventMeal); got != "Fuel + Dinner" {
		t.Fatalf("18:00 label %q", got)
	}
	if got := mk(12, 30, model.EventRest); got != "Fuel + Rest Break" {
		t.Fatalf("rest label %q", got)
	}
}

func TestConsolidateSkipsPairWithStopBetween(t *testing.T) {
	// A rest break sits between a meal and a fuel stop further down the
	// road. Merging meal+fuel would strand the rest after the combo at a
	// smaller cumulative distance, so no merge may happen here.
	mealStop := model.SuggestedStop{ID: "m1", Type: model.StopMeal}
	restStop := model.SuggestedStop{ID: "r1", Type: model.StopRest}
	fuelStop := model.SuggestedStop{ID: "f1", Type: model.StopFuel}
	km := func(e model.TimedEvent, d float64) model.TimedEvent {
		e.DistanceFromOriginKm = d
		return e
	}
	events := []model.TimedEvent{
		km(timed(model.EventDeparture, "Depart A", at(testStart, 8, 0), 0), 0),
		km(timed(model.EventDrive, "Drive: A → B", at(testStart, 8, 0), 240), 315),
		km(timed(model.EventMeal, "Meal stop (lunch)", at(testStart, 12, 0), 45, mealStop), 315),
		km(timed(model.EventDrive, "Drive: B → C", at(testStart, 12, 45), 30), 336),
		km(timed(model.EventRest, "Rest break", at(testStart, 13, 15), 15, restStop), 336),
		km(timed(model.EventDrive, "Drive: C → D", at(testStart, 13, 30), 60), 420),
		km(timed(model.EventFuel, "Fuel stop", at(testStart, 14, 30), 15, fuelStop), 420),
		km(timed(model.EventDrive, "Drive: D → E", at(testStart, 14, 45), 60), 500),
		km(timed(model.EventArrival, "Arrive E", at(testStart, 15, 45), 0), 500),
	}
	out := ConsolidateStops(events)

	seen := map[model.EventType]int{}
	for _, e := range out {
		seen[e.Type]++
	}
	if seen[model.EventCombo] != 0 {
		t.Fatal("meal must not absorb a fuel stop past an intervening rest")
	}
	if seen[model.EventMeal] != 1 || seen[model.EventRest] != 1 || seen[model.EventFuel] != 1 {
		t.Fatalf("stop events changed: %v", seen)
	}
	prev := -1.0
	for i, e := range out {
		if e.DistanceFromOriginKm < prev {
			t.Fatalf("distance decreases at event %d: %.0f after %.0f", i, e.DistanceFromOriginKm, prev)
		}
		prev = e.DistanceFromOriginKm
	}
}

func TestConsolidateNeverSpansOvernight(t *testing.T) {
	fuelStop := model.SuggestedStop{ID: "f1", Type: model.StopFuel}
	mealStop := model.SuggestedStop{ID: "m1", Type: model.StopMeal}
	events := []model.TimedEvent{
		timed(model.EventDrive, "Drive: A → B", at(testStart, 8, 0), 240),
		timed(model.EventFuel, "Fuel stop", at(testStart, 12, 0), 15, fuelStop),
		{
			Type: model.EventOvernight, Label: "Overnight stay",
			Arrive: at(testStart, 12, 15), Depart: at(testStart.AddDate(0, 0, 1), 8, 0),
			DurationMin: at(testStart.AddDate(0, 0, 1), 8, 0).Sub(at(testStart, 12, 15)).Minutes(),
		},
		timed(model.EventMeal, "Meal stop", at(testStart.AddDate(0, 0, 1), 8, 0), 45, mealStop),
	}
	in := make([]model.TimedEvent, len(events))
	copy(in, events)
	out := ConsolidateStops(events)
	if !reflect.DeepEqual(out, in) {
		t.Fatal("consolidation across an overnight must be a no-op")
	}
}

func TestConsolidatePreservesEveryStop(t *testing.T) {
	segs := processed(leg("A", "B", 300, 300), leg("B", "C", 300, 300))
	stops := GenerateStops(segs, testVehicle(), testSettings())
	out := ConsolidateStops(AssembleTimeline(segs, stops, testSettings()))

	counts := map[string]int{}
	for _, e := range out {
		if e.TimeSavedMin < 0 {
			t.Fatalf("negative time saved on %+v", e)
		}
		for _, s := range e.Stops {
			counts[s.ID]++
		}
	}
	for _, s := range stops {
		if counts[s.ID] != 1 {
			t.Fatalf("stop %s appears %d times after consolidation, want 1", s.ID, counts[s.ID])
		}
	}
}
