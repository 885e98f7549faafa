// Package plan implements the trip planning pipeline: segment splitting,
// day scheduling, stop generation, timeline assembly, stop consolidation,
// and the driver rotation overlay. Every stage is a deterministic pure
// function or a fold over a local state struct; the package does no I/O.
package plan

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"roadtrip/internal/model"
)

const (
	toleranceMin     = 60.0 // grace past the daily drive cap before forcing a split
	fuelStopMin      = 15.0
	restStopMin      = 15.0
	mealStopMin      = 45.0
	overnightStopMin = 480.0
	comboRestMin     = 20.0
	criticalFuelFrac = 0.15
	minRestGapHours  = 7.0
	fullDayFrac      = 0.75
	mealWindowHours  = 5.0  // meal absorbs a later fuel stop within this window
	fuelWindowMin    = 90.0 // fuel absorbs a later meal/rest within this window
	minSegForRestMin = 30.0
	moneyIncrement   = 5.0
)

// Default budget split for the flexible allocation mode.
const (
	defaultGasWeight   = 0.40
	defaultHotelWeight = 0.35
	defaultFoodWeight  = 0.25
)

type styleParams struct {
	fuelBuffer     float64 // fraction of range held in reserve
	restIntervalH  float64 // hours between rest breaks
	comfortRefuelH float64 // hours of driving before an optional top-up
}

func styleFor(s model.StopStyle) styleParams {
	switch s {
	case model.StyleConservative:
		return styleParams{fuelBuffer: 0.30, restIntervalH: 1.5, comfortRefuelH: 4}
	case model.StyleAggressive:
		return styleParams{fuelBuffer: 0.20, restIntervalH: 2.5, comfortRefuelH: 6}
	default:
		return styleParams{fuelBuffer: 0.25, restIntervalH: 2.0, comfortRefuelH: 5}
	}
}

// normalizeSettings fills unset fields with working defaults so the
// pipeline never divides by zero or schedules a 0-hour day.
func normalizeSettings(st model.TripSettings) model.TripSettings {
	if st.MaxDriveHours <= 0 {
		st.MaxDriveHours = 10
	}
	if st.DepartureHour <= 0 {
		st.DepartureHour = 8
	}
	if st.TargetArrivalHour <= 0 {
		st.TargetArrivalHour = 18
	}
	if st.Travelers < 0 {
		st.Travelers = 0
	}
	if st.Drivers <= 0 {
		st.Drivers = 1
	}
	if st.Style == "" {
		st.Style = model.StyleBalanced
	}
	if st.BudgetMode == "" {
		st.BudgetMode = model.BudgetFlexible
	}
	if st.StartDate.IsZero() {
		st.StartDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return st
}

// ceilToIncrement rounds money up to the nearest increment for
// deterministic, user-legible totals.
func ceilToIncrement(v, inc float64) float64 {
	if inc <= 0 || v <= 0 {
		return math.Max(v, 0)
	}
	return math.Ceil(v/inc) * inc
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

func atHour(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stopIDNamespace anchors deterministic suggestion IDs: the same trip
// inputs always regenerate the same IDs, so user accept/dismiss
// decisions survive regeneration.
var stopIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("roadtrip/suggested-stop"))

func stopID(t model.StopType, p model.Placement, seq int) string {
	key := fmt.Sprintf("%s|%s|%d|%s|%d", t, p.Kind, p.SegmentIndex, p.Side, seq)
	return uuid.NewSHA1(stopIDNamespace, []byte(key)).String()
}

// segmentFuelLiters prefers the route collaborator's figure and falls
// back to the canonical distance-based model.
func segmentFuelLiters(seg model.Segment, v model.Vehicle) float64 {
	if seg.FuelLiters > 0 {
		return seg.FuelLiters
	}
	return seg.DistanceKm * v.LitersPer100Km / 100
}

// segmentFuelCost is the canonical per-segment fuel cost model:
// km x L/100km x price per litre. Stop-card fill costs are derived from
// the same constants so the two figures cannot diverge.
func segmentFuelCost(seg model.Segment, v model.Vehicle, pricePerLiter float64) float64 {
	if seg.FuelCost > 0 {
		return seg.FuelCost
	}
	return segmentFuelLiters(seg, v) * pricePerLiter
}

func priorityRank(p model.Priority) int {
	switch p {
	case model.PriorityRequired:
		return 3
	case model.PriorityRecommended:
		return 2
	default:
		return 1
	}
}

// mergePreference ranks same-placement suggestions for the generator's
// merge pass: fuel wins over overnight, then meal, then rest.
func mergePreference(t model.StopType) int {
	switch t {
	case model.StopFuel:
		return 0
	case model.StopOvernight:
		return 1
	case model.StopMeal:
		return 2
	default:
		return 3
	}
}

// boundaryEmitOrder fixes the order stops are emitted at a segment
// boundary: fuel, meal, rest, overnight.
func boundaryEmitOrder(t model.StopType) int {
	switch t {
	case model.StopFuel:
		return 0
	case model.StopMeal:
		return 1
	case model.StopRest:
		return 2
	default:
		return 3
	}
}
