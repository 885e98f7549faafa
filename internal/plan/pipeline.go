package plan

import "roadtrip/internal/model"

// BuildPlan runs the whole pipeline on one request: split, schedule,
// generate stops, re-apply user overrides, assemble the timeline,
// consolidate nearby stops, and derive the driver rotation overlay.
// Deterministic: identical inputs reproduce identical output.
func BuildPlan(req model.PlanRequest) model.PlanResult {
	st := normalizeSettings(req.Settings)
	if len(req.Segments) == 0 {
		return model.PlanResult{
			Days:        []model.TripDay{},
			Suggestions: []model.SuggestedStop{},
			Events:      []model.TimedEvent{},
			Assignments: []model.DriverAssignment{},
			DriverStats: []model.DriverStats{},
		}
	}

	segments := SplitSegments(req.Segments, st.MaxDriveHours*60, req.Geometry)
	sched := ScheduleDays(segments, req.Vehicle, st)
	suggestions := ApplyOverrides(GenerateStops(segments, req.Vehicle, st), req.Overrides)

	active := make([]model.SuggestedStop, 0, len(suggestions))
	for _, s := range suggestions {
		if !s.Dismissed {
			active = append(active, s)
		}
	}
	events := ConsolidateStops(AssembleTimeline(segments, active, st))

	assignments, stats := RotateDrivers(segments, st.Drivers, fuelStopSegments(active))

	warnings := append(sched.Warnings, CheckFeasibility(sched.Days, st)...)

	return model.PlanResult{
		Days:        sched.Days,
		Suggestions: suggestions,
		Events:      events,
		Assignments: assignments,
		DriverStats: stats,
		Warnings:    warnings,
	}
}

// fuelStopSegments extracts the segment indices preceded by a fuel stop,
// the preferred rotation points for the driver overlay.
func fuelStopSegments(stops []model.SuggestedStop) []int {
	var out []int
	for _, s := range stops {
		if s.Type != model.StopFuel {
			continue
		}
		switch {
		case s.Placement.Kind == model.PlacementBoundary && s.Placement.Side == model.SideBefore:
			out = append(out, s.Placement.SegmentIndex)
		case s.Placement.Kind == model.PlacementBoundary && s.Placement.Side == model.SideAfter:
			out = append(out, s.Placement.SegmentIndex+1)
		case s.Placement.Kind == model.PlacementMidDrive:
			// A mid-drive fill hands the wheel over for the rest of the leg.
			out = append(out, s.Placement.SegmentIndex+1)
		}
	}
	return out
}
