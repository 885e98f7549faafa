package plan

import (
	"testing"
	"time"

	"roadtrip/internal/model"
)

func day(n int, typ model.DayType, driveMin float64) model.TripDay {
	return model.TripDay{
		Day:    n,
		Date:   testStart.AddDate(0, 0, n-1),
		Type:   typ,
		Totals: model.DayTotals{DriveMin: driveMin},
	}
}

func hasWarning(ws []model.Warning, code string, sev model.Severity) bool {
	for _, w := range ws {
		if w.Code == code && w.Severity == sev {
			return true
		}
	}
	return false
}

func TestFeasibilityPlanExceedsWindow(t *testing.T) {
	st := testSettings()
	ret := testStart.AddDate(0, 0, 1) // two-day window
	st.ReturnDate = &ret
	days := []model.TripDay{
		day(1, model.DayPlanned, 500), day(2, model.DayPlanned, 500), day(3, model.DayPlanned, 400),
	}
	ws := CheckFeasibility(days, st)
	if !hasWarning(ws, "plan_exceeds_window", model.SeverityCritical) {
		t.Fatalf("warnings %+v", ws)
	}
}

func TestFeasibilityNoSlackDays(t *testing.T) {
	st := testSettings()
	ret := testStart.AddDate(0, 0, 2) // three-day window
	st.ReturnDate = &ret
	days := []model.TripDay{
		day(1, model.DayPlanned, 400), day(2, model.DayPlanned, 400), day(3, model.DayPlanned, 300),
	}
	ws := CheckFeasibility(days, st)
	if !hasWarning(ws, "no_slack_days", model.SeverityInfo) {
		t.Fatalf("warnings %+v", ws)
	}
}

func TestFeasibilityLongDrivingDay(t *testing.T) {
	days := []model.TripDay{day(1, model.DayPlanned, 800)} // > 10h + 1h tolerance
	ws := CheckFeasibility(days, testSettings())
	if !hasWarning(ws, "long_driving_day", model.SeverityWarning) {
		t.Fatalf("warnings %+v", ws)
	}
}

func TestFeasibilityOverBudget(t *testing.T) {
	days := []model.TripDay{day(1, model.DayPlanned, 400)}
	days[0].Budget = model.BudgetSnapshot{RemainingGas: -40}
	ws := CheckFeasibility(days, testSettings())
	if !hasWarning(ws, "over_budget", model.SeverityWarning) {
		t.Fatalf("warnings %+v", ws)
	}
}

func TestFeasibilityCleanPlanIsQuiet(t *testing.T) {
	st := testSettings()
	ret := testStart.AddDate(0, 0, 6)
	st.ReturnDate = &ret
	days := []model.TripDay{
		day(1, model.DayPlanned, 500),
		day(2, model.DayFree, 0),
		day(3, model.DayPlanned, 450),
	}
	if ws := CheckFeasibility(days, st); len(ws) != 0 {
		t.Fatalf("unexpected warnings %+v", ws)
	}
}

func TestFeasibilityUsesReturnDateInclusive(t *testing.T) {
	if got := calendarDaysBetween(testStart, testStart.Add(48*time.Hour)); got != 3 {
		t.Fatalf("calendarDaysBetween = %d, want 3", got)
	}
}
