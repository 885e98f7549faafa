package plan

import (
	"time"

	"roadtrip/internal/model"
)

// ConsolidateStops merges temporally-close stops into combo events and
// recomputes downstream times. Two ordered passes run over the event
// list, each tracking consumed indices so no event merges twice:
//
//  1. A meal absorbs a later fuel stop within a five-hour window —
//     fueling happens while already parked eating, so the fuel stop's
//     own duration and the drive separating the two are reclaimed.
//  2. A remaining fuel stop absorbs a later meal or rest within ninety
//     minutes into a fixed-duration combo at the fuel stop's location.
//
// Every stop present in the input appears in exactly one output event's
// stop list.
func ConsolidateStops(events []model.TimedEvent) []model.TimedEvent {
	if len(events) == 0 {
		return []model.TimedEvent{}
	}
	out := make([]model.TimedEvent, len(events))
	copy(out, events)
	consumed := map[int]bool{}

	// Pass 1: meal absorbs forward fuel (wide window).
	for mi := range out {
		if consumed[mi] || out[mi].Type != model.EventMeal {
			continue
		}
		fi := findForward(out, consumed, mi, mealWindowHours*60, model.EventFuel)
		if fi < 0 {
			continue
		}
		combo := mergePair(out[mi], out[fi], out[mi].Arrive, out[mi].Location, out[mi].DurationMin)
		combo.Label = comboLabel(combo.Arrive, model.StopMeal, out[mi])
		replacePair(out, consumed, mi, fi, combo)
	}

	// Pass 2: fuel absorbs forward meal/rest (narrow window).
	for fi := range out {
		if consumed[fi] || out[fi].Type != model.EventFuel {
			continue
		}
		si := findForward(out, consumed, fi, fuelWindowMin, model.EventMeal, model.EventRest)
		if si < 0 {
			continue
		}
		dur := comboRestMin
		other := model.StopRest
		if out[si].Type == model.EventMeal {
			dur = mealStopMin
			other = model.StopMeal
		}
		combo := mergePair(out[fi], out[si], out[fi].Arrive, out[fi].Location, dur)
		combo.Label = comboLabel(combo.Arrive, other, out[si])
		replacePair(out, consumed, fi, si, combo)
	}

	result := make([]model.TimedEvent, 0, len(out))
	for i, e := range out {
		if consumed[i] {
			continue
		}
		result = append(result, e)
	}
	return retime(result)
}

// findForward returns the index of the first unconsumed event of one of
// the wanted types after idx whose arrival falls within windowMin, or -1.
// Only drive events may sit between a merge pair: any other surviving
// stop (or an overnight) ends the search, since a combo past it would
// strand that stop behind a larger cumulative distance and reclaim
// drive minutes still needed to reach it.
func findForward(events []model.TimedEvent, consumed map[int]bool, idx int, windowMin float64, wanted ...model.EventType) int {
	limit := events[idx].Arrive.Add(minutes(windowMin))
	for j := idx + 1; j < len(events); j++ {
		if consumed[j] {
			continue
		}
		if events[j].Arrive.After(limit) {
			return -1
		}
		for _, w := range wanted {
			if events[j].Type == w {
				return j
			}
		}
		if events[j].Type != model.EventDrive {
			return -1
		}
	}
	return -1
}

// mergePair builds the combo event for events at first < second. Time
// saved is the original span of the pair minus the combo's duration —
// i.e. the absorbed stop's parallel time plus the drive that would have
// separated them.
func mergePair(first, second model.TimedEvent, at time.Time, location string, durationMin float64) model.TimedEvent {
	span := second.Depart.Sub(first.Arrive).Minutes()
	saved := span - durationMin
	if saved < 0 {
		saved = 0
	}
	dist := first.DistanceFromOriginKm
	if second.DistanceFromOriginKm > dist {
		dist = second.DistanceFromOriginKm
	}
	stops := append(append([]model.SuggestedStop{}, first.Stops...), second.Stops...)
	return model.TimedEvent{
		Type:                 model.EventCombo,
		Location:             location,
		Arrive:               at,
		Depart:               at.Add(minutes(durationMin)),
		DurationMin:          durationMin,
		DistanceFromOriginKm: dist,
		Stops:                stops,
		TimeSavedMin:         saved,
	}
}

// replacePair swaps the earlier event for the combo and consumes the
// later one plus any drive events between them (the reclaimed drive is
// folded into the combo).
func replacePair(events []model.TimedEvent, consumed map[int]bool, earlier, later int, combo model.TimedEvent) {
	events[earlier] = combo
	consumed[later] = true
	for j := earlier + 1; j < later; j++ {
		if events[j].Type == model.EventDrive {
			consumed[j] = true
		}
	}
}

// comboLabel derives the label from the actual clock hour at the merged
// stop, falling back to the absorbed stop's own text when no meal bucket
// applies.
func comboLabel(at time.Time, other model.StopType, absorbed model.TimedEvent) string {
	if other == model.StopRest {
		return "Fuel + Rest Break"
	}
	h, m := at.Hour(), at.Minute()
	switch {
	case at.IsZero() && absorbed.Label != "":
		return "Fuel + " + absorbed.Label
	case h < 10 || (h == 10 && m < 30):
		return "Fuel + Breakfast"
	case h >= 17:
		return "Fuel + Dinner"
	default:
		return "Fuel + Lunch"
	}
}

// retime re-anchors the sequence after merges: the first event keeps its
// instant and every later event starts when its predecessor ends,
// preserving each event's own span. Idempotent on an unmerged timeline.
func retime(events []model.TimedEvent) []model.TimedEvent {
	for i := 1; i < len(events); i++ {
		span := events[i].Depart.Sub(events[i].Arrive)
		events[i].Arrive = events[i-1].Depart
		events[i].Depart = events[i].Arrive.Add(span)
	}
	return events
}
