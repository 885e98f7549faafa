package plan

import (
	"fmt"
	"math"
	"time"

	"roadtrip/internal/model"
)

// ScheduleResult is the day scheduler's output: finalized calendar days
// plus any feasibility findings discovered while building them.
type ScheduleResult struct {
	Days     []model.TripDay
	Warnings []model.Warning
}

// ScheduleDays groups processed segments into calendar days. A day closes
// when appending the next segment would push drive time past the daily
// cap plus the one-hour tolerance, or when a segment is flagged as an
// overnight stay. Round trips get destination free days inserted at the
// midpoint; one-way trips with a return-date gap get them at the end.
func ScheduleDays(segments []model.ProcessedSegment, vehicle model.Vehicle, settings model.TripSettings) ScheduleResult {
	st := normalizeSettings(settings)
	if len(segments) == 0 {
		return ScheduleResult{Days: []model.TripDay{}}
	}
	s := &scheduler{
		segs:        segments,
		st:          st,
		vehicle:     vehicle,
		style:       styleFor(st.Style),
		maxDriveMin: st.MaxDriveHours * 60,
		ledger:      newLedger(st),
		clock:       atHour(st.StartDate, st.DepartureHour),
		lastDate:    atHour(st.StartDate, 0).AddDate(0, 0, -1),
	}
	s.run()
	return ScheduleResult{Days: s.days, Warnings: s.warnings}
}

type budgetLedger struct {
	gas, hotel, food float64
}

// newLedger seeds per-category remaining budgets: explicit fields in
// manual mode, weighted shares of the total in flexible mode.
func newLedger(st model.TripSettings) budgetLedger {
	if st.BudgetMode == model.BudgetManual {
		return budgetLedger{gas: st.GasBudget, hotel: st.HotelBudget, food: st.FoodBudget}
	}
	return budgetLedger{
		gas:   st.TotalBudget * defaultGasWeight,
		hotel: st.TotalBudget * defaultHotelWeight,
		food:  st.TotalBudget * defaultFoodWeight,
	}
}

type scheduler struct {
	segs        []model.ProcessedSegment
	st          model.TripSettings
	vehicle     model.Vehicle
	style       styleParams
	maxDriveMin float64

	days     []model.TripDay
	warnings []model.Warning
	ledger   budgetLedger

	// current day accumulator
	cur      *model.TripDay
	driveMin float64
	stopMin  float64
	distKm   float64
	gasCost  float64

	clock       time.Time // current day's departure instant
	lastArrival time.Time
	lastDate    time.Time // date of the most recently pushed day

	prevTZ     string
	prevOffset *float64
}

func (s *scheduler) run() {
	for idx := 0; idx < len(s.segs); idx++ {
		seg := s.segs[idx]
		if s.cur != nil && !s.st.IgnoreDailyCap && s.driveMin+seg.DurationMin > s.maxDriveMin+toleranceMin {
			s.closeDay(true)
			s.startDay(idx)
		}
		s.appendSegment(idx, seg)

		closedHere := false
		if seg.StopType == model.StopOvernight {
			s.closeDay(true)
			closedHere = true
		}
		if s.st.RoundTrip && seg.OriginalIndex == s.st.RoundTripMidpoint && lastPart(seg) {
			if !closedHere {
				s.closeDay(true)
				closedHere = true
			}
			s.insertMidpointFreeDays(seg.To.Name)
		}
		if closedHere && idx+1 < len(s.segs) {
			s.startDay(idx + 1)
		}
	}
	if s.cur != nil {
		// The trip's final day books no overnight.
		s.closeDay(false)
	}
	if !s.st.RoundTrip && s.st.ReturnDate != nil {
		s.insertTrailingFreeDays()
	}
}

func lastPart(seg model.ProcessedSegment) bool {
	return seg.Transit == nil || seg.Transit.Index == seg.Transit.Total
}

func (s *scheduler) appendSegment(idx int, seg model.ProcessedSegment) {
	if s.cur == nil {
		s.startDay(idx)
	}
	s.trackTimezone(idx, seg)
	s.cur.Segments = append(s.cur.Segments, seg)
	if !containsInt(s.cur.SegmentIndices, seg.OriginalIndex) {
		s.cur.SegmentIndices = append(s.cur.SegmentIndices, seg.OriginalIndex)
	}
	s.driveMin += seg.DurationMin
	s.distKm += seg.DistanceKm
	s.gasCost += segmentFuelCost(seg.Segment, s.vehicle, s.st.GasPricePerLiter)
	// Rest-break allowance folded into the day's arrival estimate.
	s.stopMin = math.Floor(s.driveMin/60/s.style.restIntervalH) * restStopMin
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func (s *scheduler) trackTimezone(idx int, seg model.ProcessedSegment) {
	tz := seg.Timezone
	if tz == "" {
		return
	}
	if s.prevTZ != "" && tz != s.prevTZ {
		s.cur.TimezoneChanges = append(s.cur.TimezoneChanges, model.TimezoneChange{
			SegmentIndex: seg.OriginalIndex,
			From:         s.prevTZ,
			To:           tz,
			Message:      timezoneMessage(s.prevTZ, tz, s.prevOffset, seg.UTCOffsetHours),
		})
	}
	s.prevTZ = tz
	s.prevOffset = seg.UTCOffsetHours
}

func timezoneMessage(from, to string, fromOff, toOff *float64) string {
	if fromOff != nil && toOff != nil {
		diff := *toOff - *fromOff
		switch {
		case diff > 0:
			return fmt.Sprintf("Crossing from %s into %s — you lose %s", from, to, hourWord(diff))
		case diff < 0:
			return fmt.Sprintf("Crossing from %s into %s — you gain %s", from, to, hourWord(-diff))
		}
	}
	return fmt.Sprintf("Crossing from %s into %s — adjust your clocks", from, to)
}

func hourWord(h float64) string {
	if h == 1 {
		return "an hour"
	}
	return fmt.Sprintf("%g hours", h)
}

// startDay opens a new day whose departure follows the smart-departure
// rule for the remaining drive starting at segment nextIdx.
func (s *scheduler) startDay(nextIdx int) {
	if len(s.days) > 0 || s.cur != nil {
		s.clock = s.smartDeparture(nextIdx)
	}
	day := &model.TripDay{
		Day:            len(s.days) + 1,
		Date:           atHour(s.clock, 0),
		Type:           model.DayPlanned,
		Segments:       []model.ProcessedSegment{},
		SegmentIndices: []int{},
	}
	s.cur = day
	s.driveMin, s.stopMin, s.distKm, s.gasCost = 0, 0, 0, 0
}

// smartDeparture estimates tomorrow's drive and works backwards from the
// target arrival hour. Full days (>=75% of the cap) depart between 5 and
// 10; lighter days may depart as late as 18. A second guard enforces at
// least seven hours between the prior day's estimated arrival and the
// departure, pushing to the following calendar day when violated.
func (s *scheduler) smartDeparture(nextIdx int) time.Time {
	nextMin := s.lookaheadDriveMin(nextIdx)
	hour := s.st.TargetArrivalHour - int(math.Round(nextMin/60))
	if nextMin >= fullDayFrac*s.maxDriveMin {
		hour = clampInt(hour, 5, 10)
	} else {
		hour = clampInt(hour, 5, 18)
	}
	dep := atHour(s.lastDate.AddDate(0, 0, 1), hour)
	if !s.lastArrival.IsZero() && dep.Sub(s.lastArrival) < minutes(minRestGapHours*60) {
		dep = dep.AddDate(0, 0, 1)
	}
	return dep
}

// lookaheadDriveMin estimates how much driving the day starting at idx
// will hold, using the same accumulation rule as the main loop.
func (s *scheduler) lookaheadDriveMin(idx int) float64 {
	total := 0.0
	for i := idx; i < len(s.segs); i++ {
		seg := s.segs[i]
		if total > 0 && !s.st.IgnoreDailyCap && total+seg.DurationMin > s.maxDriveMin+toleranceMin {
			break
		}
		total += seg.DurationMin
		if seg.StopType == model.StopOvernight {
			break
		}
	}
	return total
}

func (s *scheduler) closeDay(assignOvernight bool) {
	if s.cur == nil {
		return
	}
	day := s.cur
	day.Totals = model.DayTotals{
		DistanceKm: s.distKm,
		DriveMin:   s.driveMin,
		StopMin:    s.stopMin,
		Depart:     s.clock,
		Arrive:     s.clock.Add(minutes(s.driveMin + s.stopMin)),
	}
	if assignOvernight && day.Overnight == nil && len(day.Segments) > 0 {
		last := day.Segments[len(day.Segments)-1]
		rooms := roomsNeeded(s.st.Travelers)
		day.Overnight = &model.OvernightStay{
			Location: last.To.Name,
			Rooms:    rooms,
			Cost:     ceilToIncrement(float64(rooms)*s.st.HotelNightly, moneyIncrement),
		}
	}
	day.Budget = s.spend(dayCosts{
		gas:   ceilToIncrement(s.gasCost, moneyIncrement),
		hotel: overnightCost(day.Overnight),
		food:  s.foodCost(),
	})
	if s.st.IgnoreDailyCap && s.driveMin > s.maxDriveMin+toleranceMin {
		s.warnings = append(s.warnings, model.Warning{
			Severity:   model.SeverityInfo,
			Code:       "day_over_cap",
			Message:    fmt.Sprintf("Day %d holds %.0f minutes of driving, past the %.0f-minute daily limit", day.Day, s.driveMin, s.maxDriveMin),
			Suggestion: "Disable the no-daily-cap mode to split this day",
		})
	}
	s.days = append(s.days, *day)
	s.lastArrival = day.Totals.Arrive
	s.lastDate = day.Date
	s.cur = nil
}

type dayCosts struct {
	gas, hotel, food float64
}

func (s *scheduler) spend(c dayCosts) model.BudgetSnapshot {
	s.ledger.gas -= c.gas
	s.ledger.hotel -= c.hotel
	s.ledger.food -= c.food
	return model.BudgetSnapshot{
		GasCost:        c.gas,
		HotelCost:      c.hotel,
		FoodCost:       c.food,
		RemainingGas:   s.ledger.gas,
		RemainingHotel: s.ledger.hotel,
		RemainingFood:  s.ledger.food,
	}
}

// roomsNeeded assumes double occupancy.
func roomsNeeded(travelers int) int {
	if travelers <= 0 {
		return 0
	}
	return (travelers + 1) / 2
}

func overnightCost(o *model.OvernightStay) float64 {
	if o == nil {
		return 0
	}
	return o.Cost
}

func (s *scheduler) foodCost() float64 {
	if s.st.Travelers <= 0 {
		return 0
	}
	return ceilToIncrement(float64(s.st.Travelers)*3*s.st.MealPrice, moneyIncrement)
}

// insertMidpointFreeDays fills the destination dwell of a round trip.
// Return driving days are approximated as equal to the outbound count, a
// known simplification that can misallocate a day on asymmetric routes.
func (s *scheduler) insertMidpointFreeDays(location string) {
	if s.st.ReturnDate == nil {
		return
	}
	total := calendarDaysBetween(s.st.StartDate, *s.st.ReturnDate)
	outbound := len(s.days)
	free := total - outbound - outbound
	if free < 0 {
		s.warnings = append(s.warnings, model.Warning{
			Severity:   model.SeverityCritical,
			Code:       "window_too_short",
			Message:    fmt.Sprintf("Driving both legs needs about %d days but the date window allows %d", 2*outbound, total),
			Suggestion: "Extend the return date or raise the daily drive limit",
		})
		return
	}
	s.insertFreeDays(free, location)
}

func (s *scheduler) insertTrailingFreeDays() {
	total := calendarDaysBetween(s.st.StartDate, *s.st.ReturnDate)
	free := total - len(s.days)
	if free <= 0 {
		if free < 0 {
			s.warnings = append(s.warnings, model.Warning{
				Severity:   model.SeverityWarning,
				Code:       "window_too_short",
				Message:    fmt.Sprintf("The trip needs %d driving days but the date window allows %d", len(s.days), total),
				Suggestion: "Extend the return date or raise the daily drive limit",
			})
		}
		return
	}
	location := ""
	if n := len(s.segs); n > 0 {
		location = s.segs[n-1].To.Name
	}
	s.insertFreeDays(free, location)
}

func (s *scheduler) insertFreeDays(count int, location string) {
	for i := 0; i < count; i++ {
		date := s.lastDate.AddDate(0, 0, 1)
		at := atHour(date, s.st.DepartureHour)
		rooms := roomsNeeded(s.st.Travelers)
		stay := &model.OvernightStay{
			Location: location,
			Rooms:    rooms,
			Cost:     ceilToIncrement(float64(rooms)*s.st.HotelNightly, moneyIncrement),
		}
		day := model.TripDay{
			Day:            len(s.days) + 1,
			Date:           date,
			Type:           model.DayFree,
			Segments:       []model.ProcessedSegment{},
			SegmentIndices: []int{},
			Totals:         model.DayTotals{Depart: at, Arrive: at},
			Overnight:      stay,
		}
		day.Budget = s.spend(dayCosts{hotel: stay.Cost, food: s.foodCost()})
		s.days = append(s.days, day)
		s.lastDate = date
		s.lastArrival = at
	}
}

func calendarDaysBetween(start, end time.Time) int {
	a := atHour(start, 0)
	b := atHour(end, 0)
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours()/24) + 1
}
