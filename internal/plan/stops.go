package plan

import (
	"fmt"
	"sort"
	"time"

	"roadtrip/internal/model"
)

// GenerateStops simulates fuel and clock state across the processed
// segments and emits candidate fuel/rest/meal/overnight stops. The fold
// carries explicit state only; identical inputs always reproduce the
// same suggestions with the same IDs.
func GenerateStops(segments []model.ProcessedSegment, vehicle model.Vehicle, settings model.TripSettings) []model.SuggestedStop {
	st := normalizeSettings(settings)
	if len(segments) == 0 {
		return []model.SuggestedStop{}
	}
	g := &stopGenerator{
		st:          st,
		style:       styleFor(st.Style),
		vehicle:     vehicle,
		maxDriveMin: st.MaxDriveHours * 60,
		fuelLiters:  vehicle.TankLiters,
		clock:       atHour(st.StartDate, st.DepartureHour),
		seq:         map[model.StopType]int{},
	}
	for i, seg := range segments {
		g.step(i, seg, i == len(segments)-1)
	}
	return mergeSamePlacement(g.stops)
}

type stopGenerator struct {
	st          model.TripSettings
	style       styleParams
	vehicle     model.Vehicle
	maxDriveMin float64

	fuelLiters      float64
	kmSinceFill     float64
	hoursSinceFill  float64
	hoursSinceBreak float64
	driveMinToday   float64
	clock           time.Time

	stops []model.SuggestedStop
	seq   map[model.StopType]int
}

func (g *stopGenerator) step(i int, seg model.ProcessedSegment, last bool) {
	g.fuelCheck(i, seg)

	segStart := g.clock
	segHours := seg.DurationMin / 60
	g.restCheck(i, seg, segStart, segHours)
	g.mealCheck(i, seg, segStart)

	g.fuelLiters -= segmentFuelLiters(seg.Segment, g.vehicle)
	if g.fuelLiters < 0 {
		g.fuelLiters = 0
	}
	g.kmSinceFill += seg.DistanceKm
	g.hoursSinceFill += segHours
	g.driveMinToday += seg.DurationMin
	g.clock = g.clock.Add(minutes(seg.DurationMin))

	// No overnight after the last segment: the trip ends there.
	if !last {
		g.overnightCheck(i)
	}
}

// fuelCheck runs before driving the segment so a fuel stop always
// precedes the segment that would drop the tank below critical.
func (g *stopGenerator) fuelCheck(i int, seg model.ProcessedSegment) {
	tank := g.vehicle.TankLiters
	if tank <= 0 || g.vehicle.LitersPer100Km <= 0 {
		return
	}
	rangeKm := tank / g.vehicle.LitersPer100Km * 100
	safeRange := rangeKm * (1 - g.style.fuelBuffer)

	projected := g.fuelLiters - segmentFuelLiters(seg.Segment, g.vehicle)
	critical := projected < criticalFuelFrac*tank
	rangeHit := g.kmSinceFill+seg.DistanceKm >= safeRange
	comfort := g.hoursSinceFill >= g.style.comfortRefuelH
	if !critical && !rangeHit && !comfort {
		return
	}

	priority := model.PriorityRecommended
	reason := fmt.Sprintf("%.0f km since the last fill-up is past the safe range of %.0f km", g.kmSinceFill+seg.DistanceKm, safeRange)
	switch {
	case critical:
		priority = model.PriorityRequired
		reason = fmt.Sprintf("Tank would drop below %.0f%% before %s", criticalFuelFrac*100, seg.To.Name)
	case !rangeHit && comfort:
		priority = model.PriorityOptional
		reason = fmt.Sprintf("Comfort refuel after %.1f hours of driving", g.hoursSinceFill)
	}

	fill := tank - g.fuelLiters
	p := model.Placement{Kind: model.PlacementBoundary, SegmentIndex: i, Side: model.SideBefore}
	g.emit(model.SuggestedStop{
		Type:          model.StopFuel,
		Placement:     p,
		EstimatedTime: g.clock,
		DurationMin:   fuelStopMin,
		Priority:      priority,
		Reason:        reason,
		Details: model.StopDetails{
			FillLiters: fill,
			FillCost:   fill * g.st.GasPricePerLiter,
		},
	})
	g.fuelLiters = tank
	g.kmSinceFill = 0
	g.hoursSinceFill = 0
	g.clock = g.clock.Add(minutes(fuelStopMin))
}

// restCheck emits a mid-drive break every rest interval on segments
// longer than half an hour.
func (g *stopGenerator) restCheck(i int, seg model.ProcessedSegment, segStart time.Time, segHours float64) {
	if seg.DurationMin <= minSegForRestMin {
		g.hoursSinceBreak += segHours
		return
	}
	interval := g.style.restIntervalH
	elapsed := interval - g.hoursSinceBreak
	emitted := false
	for elapsed < segHours {
		p := model.Placement{Kind: model.PlacementMidDrive, SegmentIndex: i}
		g.emit(model.SuggestedStop{
			Type:          model.StopRest,
			Placement:     p,
			EstimatedTime: segStart.Add(minutes(elapsed * 60)),
			DurationMin:   restStopMin,
			Priority:      model.PriorityRecommended,
			Reason:        fmt.Sprintf("Stretch your legs after %.1f hours at the wheel", interval),
		})
		g.hoursSinceBreak = 0
		emitted = true
		elapsed += interval
	}
	if emitted {
		g.hoursSinceBreak = segHours - (elapsed - interval)
	} else {
		g.hoursSinceBreak += segHours
	}
}

// mealCheck emits a lunch or dinner stop when the pure drive window
// crosses the 12:00 or 18:00 clock boundary.
func (g *stopGenerator) mealCheck(i int, seg model.ProcessedSegment, segStart time.Time) {
	segEnd := segStart.Add(minutes(seg.DurationMin))
	for _, meal := range []struct {
		hour  int
		label string
	}{{12, "lunch"}, {18, "dinner"}} {
		boundary := atHour(segStart, meal.hour)
		if !segStart.Before(boundary) || !segEnd.After(boundary) {
			continue
		}
		p := model.Placement{Kind: model.PlacementMidDrive, SegmentIndex: i}
		g.emit(model.SuggestedStop{
			Type:          model.StopMeal,
			Placement:     p,
			EstimatedTime: boundary,
			DurationMin:   mealStopMin,
			Priority:      model.PriorityOptional,
			Reason:        fmt.Sprintf("Drive crosses the %s hour", meal.label),
			Details:       model.StopDetails{MealLabel: meal.label},
		})
	}
}

// overnightCheck closes the simulated day once accumulated drive time
// reaches the daily cap, advancing the clock to the next morning.
func (g *stopGenerator) overnightCheck(i int) {
	if g.st.IgnoreDailyCap || g.driveMinToday < g.maxDriveMin {
		return
	}
	p := model.Placement{Kind: model.PlacementBoundary, SegmentIndex: i, Side: model.SideAfter}
	g.emit(model.SuggestedStop{
		Type:          model.StopOvernight,
		Placement:     p,
		EstimatedTime: g.clock,
		DurationMin:   overnightStopMin,
		Priority:      model.PriorityRequired,
		Reason:        fmt.Sprintf("Daily drive limit of %.0f hours reached", g.maxDriveMin/60),
	})
	g.driveMinToday = 0
	g.hoursSinceBreak = 0
	g.clock = atHour(g.clock.AddDate(0, 0, 1), g.st.DepartureHour)
}

func (g *stopGenerator) emit(s model.SuggestedStop) {
	seq := g.seq[s.Type]
	g.seq[s.Type] = seq + 1
	s.ID = stopID(s.Type, s.Placement, seq)
	g.stops = append(g.stops, s)
}

// mergeSamePlacement collapses suggestions sharing an identical
// placement into one, preferring fuel over overnight as the surviving
// type, keeping the highest priority, and concatenating reasons.
func mergeSamePlacement(stops []model.SuggestedStop) []model.SuggestedStop {
	if len(stops) == 0 {
		return []model.SuggestedStop{}
	}
	type key struct {
		kind model.PlacementKind
		seg  int
		side model.BoundarySide
	}
	order := []key{}
	groups := map[key][]model.SuggestedStop{}
	for _, s := range stops {
		k := key{s.Placement.Kind, s.Placement.SegmentIndex, s.Placement.Side}
		if s.Placement.Kind == model.PlacementMidDrive {
			// Mid-drive stops at distinct instants stay distinct.
			k.side = model.BoundarySide(s.EstimatedTime.Format(time.RFC3339))
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], s)
	}
	out := make([]model.SuggestedStop, 0, len(stops))
	for _, k := range order {
		group := groups[k]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		sort.SliceStable(group, func(a, b int) bool {
			return mergePreference(group[a].Type) < mergePreference(group[b].Type)
		})
		merged := group[0]
		for _, other := range group[1:] {
			merged.Reason = merged.Reason + "; " + other.Reason
			if priorityRank(other.Priority) > priorityRank(merged.Priority) {
				merged.Priority = other.Priority
			}
			merged.Details.MergedFrom = append(merged.Details.MergedFrom, other.Type)
			if other.Details.MealLabel != "" && merged.Details.MealLabel == "" {
				merged.Details.MealLabel = other.Details.MealLabel
			}
			if other.DurationMin > merged.DurationMin {
				merged.DurationMin = other.DurationMin
			}
		}
		out = append(out, merged)
	}
	return out
}
