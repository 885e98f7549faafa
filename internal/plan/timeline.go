package plan

import (
	"fmt"
	"sort"
	"time"

	"roadtrip/internal/model"
)

// AssembleTimeline merges segments and suggested stops into one
// clock-stamped, strictly ordered event sequence, splitting drives
// around mid-route stops. Dismissed suggestions are skipped; every other
// stop ID is emitted exactly once.
func AssembleTimeline(segments []model.ProcessedSegment, stops []model.SuggestedStop, settings model.TripSettings) []model.TimedEvent {
	st := normalizeSettings(settings)
	if len(segments) == 0 {
		return []model.TimedEvent{}
	}
	a := &assembler{
		st:    st,
		segs:  segments,
		stops: stops,
		clock: atHour(st.StartDate, st.DepartureHour),
		seen:  map[string]bool{},
	}
	return a.run()
}

type assembler struct {
	st    model.TripSettings
	segs  []model.ProcessedSegment
	stops []model.SuggestedStop

	clock  time.Time
	cumKm  float64
	seen   map[string]bool
	events []model.TimedEvent
}

func (a *assembler) run() []model.TimedEvent {
	a.push(model.TimedEvent{
		Type:     model.EventDeparture,
		Label:    fmt.Sprintf("Depart %s", a.segs[0].From.Name),
		Location: a.segs[0].From.Name,
		Arrive:   a.clock,
		Depart:   a.clock,
	})

	dwellAt := a.firstReturnIndex()
	for i, seg := range a.segs {
		if i == dwellAt {
			a.emitDestinationDwell(seg.From.Name)
		}
		a.emitSegment(i, seg)
	}
	return a.events
}

// firstReturnIndex locates the first return-leg segment of a round trip
// with a configured destination dwell, or -1.
func (a *assembler) firstReturnIndex() int {
	if !a.st.RoundTrip || a.st.DestinationStayMin <= 0 {
		return -1
	}
	for i, seg := range a.segs {
		if seg.OriginalIndex > a.st.RoundTripMidpoint {
			return i
		}
	}
	return -1
}

func (a *assembler) emitDestinationDwell(city string) {
	end := a.clock.Add(minutes(a.st.DestinationStayMin))
	a.push(model.TimedEvent{
		Type:                 model.EventDestination,
		Label:                fmt.Sprintf("Stay in %s", city),
		Location:             city,
		Arrive:               a.clock,
		Depart:               end,
		DurationMin:          a.st.DestinationStayMin,
		DistanceFromOriginKm: a.cumKm,
	})
	a.clock = end
}

func (a *assembler) emitSegment(i int, seg model.ProcessedSegment) {
	windowStart := a.clock
	windowEnd := windowStart.Add(minutes(seg.DurationMin))
	mid, before, after := a.classify(i, windowStart, windowEnd)

	for _, s := range before {
		a.emitStop(s, seg.From.Name)
	}

	if len(mid) > 0 {
		a.emitSplitDrive(seg, mid)
	} else {
		a.emitDrive(seg, seg.DurationMin, seg.DistanceKm, seg.To.Name)
	}

	last := i == len(a.segs)-1
	if last {
		a.push(model.TimedEvent{
			Type:                 model.EventArrival,
			Label:                fmt.Sprintf("Arrive %s", seg.To.Name),
			Location:             seg.To.Name,
			Arrive:               a.clock,
			Depart:               a.clock,
			DistanceFromOriginKm: a.cumKm,
		})
	} else if a.segs[i+1].From.Name != seg.To.Name {
		// Geometry discontinuity between legs.
		a.push(model.TimedEvent{
			Type:                 model.EventWaypoint,
			Label:                fmt.Sprintf("Waypoint: %s", seg.To.Name),
			Location:             seg.To.Name,
			Arrive:               a.clock,
			Depart:               a.clock,
			DistanceFromOriginKm: a.cumKm,
		})
	}

	for _, s := range after {
		a.emitStop(s, seg.To.Name)
	}
}

// classify buckets every not-yet-emitted suggestion touching segment i,
// in priority order: mid-drive (estimated time strictly inside the pure
// drive window, one-minute guard on each edge — this wins even when the
// placement nominally marks a boundary), then boundary-before, then
// boundary-after. The final segment also sweeps up any leftovers so no
// accepted stop is silently dropped.
func (a *assembler) classify(i int, windowStart, windowEnd time.Time) (mid, before, after []model.SuggestedStop) {
	last := i == len(a.segs)-1
	guard := time.Minute
	for _, s := range a.stops {
		if a.seen[s.ID] || s.Dismissed {
			continue
		}
		inside := s.EstimatedTime.After(windowStart.Add(guard)) && s.EstimatedTime.Before(windowEnd.Add(-guard))
		switch {
		case inside:
			mid = append(mid, s)
		case s.Placement.Kind == model.PlacementMidDrive && s.Placement.SegmentIndex == i:
			mid = append(mid, s)
		case s.Placement.Kind == model.PlacementBoundary && s.Placement.SegmentIndex == i && s.Placement.Side == model.SideBefore:
			before = append(before, s)
		case s.Placement.Kind == model.PlacementBoundary && s.Placement.SegmentIndex == i && s.Placement.Side == model.SideAfter:
			after = append(after, s)
		case last:
			after = append(after, s)
		}
	}
	for _, bucket := range [][]model.SuggestedStop{before, after} {
		sort.SliceStable(bucket, func(x, y int) bool {
			return boundaryEmitOrder(bucket[x].Type) < boundaryEmitOrder(bucket[y].Type)
		})
	}
	sort.SliceStable(mid, func(x, y int) bool {
		return mid[x].EstimatedTime.Before(mid[y].EstimatedTime)
	})
	for _, s := range mid {
		a.seen[s.ID] = true
	}
	for _, s := range before {
		a.seen[s.ID] = true
	}
	for _, s := range after {
		a.seen[s.ID] = true
	}
	return mid, before, after
}

// emitSplitDrive walks the segment, emitting a drive slice up to each
// mid-drive stop's proportional position, then the stop itself, then the
// final remaining slice.
func (a *assembler) emitSplitDrive(seg model.ProcessedSegment, mid []model.SuggestedStop) {
	windowStart := a.clock
	fracs := a.fractions(windowStart, seg.DurationMin, mid)
	prev := 0.0
	for k, s := range mid {
		frac := fracs[k]
		if frac < prev {
			frac = prev
		}
		slice := frac - prev
		if slice > 0 {
			a.emitDrive(seg, slice*seg.DurationMin, slice*seg.DistanceKm, fmt.Sprintf("En route to %s", seg.To.Name))
		}
		a.emitStop(s, fmt.Sprintf("En route to %s", seg.To.Name))
		prev = frac
	}
	if rem := 1 - prev; rem > 0 {
		a.emitDrive(seg, rem*seg.DurationMin, rem*seg.DistanceKm, seg.To.Name)
	}
}

// fractions derives each stop's elapsed-time fraction of the drive
// window, clamped to [0,1]. Failsafe: if every stop collapses to the
// same out-of-range position, distribute them evenly across the segment
// instead of stacking them at one instant.
func (a *assembler) fractions(windowStart time.Time, durationMin float64, mid []model.SuggestedStop) []float64 {
	n := len(mid)
	raw := make([]float64, n)
	allSameInvalid := n > 0
	for k, s := range mid {
		f := 0.0
		if durationMin > 0 {
			f = s.EstimatedTime.Sub(windowStart).Minutes() / durationMin
		}
		raw[k] = f
		if f > 0 && f < 1 {
			allSameInvalid = false
		}
		if k > 0 && raw[k] != raw[k-1] {
			allSameInvalid = false
		}
	}
	if allSameInvalid {
		for k := range raw {
			raw[k] = float64(k+1) / float64(n+1)
		}
		return raw
	}
	for k := range raw {
		if raw[k] < 0 {
			raw[k] = 0
		}
		if raw[k] > 1 {
			raw[k] = 1
		}
	}
	return raw
}

func (a *assembler) emitDrive(seg model.ProcessedSegment, durMin, distKm float64, location string) {
	start := a.clock
	a.clock = a.clock.Add(minutes(durMin))
	a.cumKm += distKm
	label := fmt.Sprintf("Drive: %s → %s", seg.From.Name, seg.To.Name)
	if t := seg.Transit; t != nil {
		label = fmt.Sprintf("Drive: %s → %s (leg %d/%d)", seg.From.Name, seg.To.Name, t.Index, t.Total)
	}
	a.push(model.TimedEvent{
		Type:                 model.EventDrive,
		Label:                label,
		Location:             location,
		Arrive:               start,
		Depart:               a.clock,
		DurationMin:          durMin,
		DistanceFromOriginKm: a.cumKm,
	})
}

func (a *assembler) emitStop(s model.SuggestedStop, location string) {
	start := a.clock
	var end time.Time
	if s.Type == model.StopOvernight {
		// Overnight advances to the next calendar day at the trip's
		// nominal departure time, not a fixed offset.
		end = atHour(start.AddDate(0, 0, 1), a.st.DepartureHour)
	} else {
		end = start.Add(minutes(s.DurationMin))
	}
	a.clock = end
	a.push(model.TimedEvent{
		Type:                 eventTypeFor(s.Type),
		Label:                stopLabel(s),
		Location:             location,
		Arrive:               start,
		Depart:               end,
		DurationMin:          end.Sub(start).Minutes(),
		DistanceFromOriginKm: a.cumKm,
		Stops:                []model.SuggestedStop{s},
	})
}

func eventTypeFor(t model.StopType) model.EventType {
	switch t {
	case model.StopFuel:
		return model.EventFuel
	case model.StopMeal:
		return model.EventMeal
	case model.StopRest:
		return model.EventRest
	default:
		return model.EventOvernight
	}
}

func stopLabel(s model.SuggestedStop) string {
	switch s.Type {
	case model.StopFuel:
		return "Fuel stop"
	case model.StopRest:
		return "Rest break"
	case model.StopMeal:
		if s.Details.MealLabel != "" {
			return "Meal stop (" + s.Details.MealLabel + ")"
		}
		return "Meal stop"
	default:
		return "Overnight stay"
	}
}

func (a *assembler) push(e model.TimedEvent) {
	a.events = append(a.events, e)
}
