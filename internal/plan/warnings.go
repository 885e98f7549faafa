package plan

import (
	"fmt"

	"roadtrip/internal/model"
)

// CheckFeasibility inspects a finished schedule for problems the user
// should see. Infeasibility is never an error: the plan is returned
// best-effort and these findings ride alongside, severity-ranked with a
// suggested remediation.
func CheckFeasibility(days []model.TripDay, settings model.TripSettings) []model.Warning {
	st := normalizeSettings(settings)
	var out []model.Warning

	drivingDays := 0
	for _, d := range days {
		if d.Type == model.DayPlanned {
			drivingDays++
		}
	}
	if st.ReturnDate != nil {
		window := calendarDaysBetween(st.StartDate, *st.ReturnDate)
		if len(days) > window {
			out = append(out, model.Warning{
				Severity:   model.SeverityCritical,
				Code:       "plan_exceeds_window",
				Message:    fmt.Sprintf("The plan spans %d days but the date window allows %d", len(days), window),
				Suggestion: "Extend the return date, raise the daily drive limit, or drop a waypoint",
			})
		} else if drivingDays == window && window > 2 {
			out = append(out, model.Warning{
				Severity:   model.SeverityInfo,
				Code:       "no_slack_days",
				Message:    "Every day of the window is a driving day; there is no slack for delays",
				Suggestion: "Add a buffer day if the schedule allows",
			})
		}
	}

	capMin := st.MaxDriveHours*60 + toleranceMin
	for _, d := range days {
		if d.Totals.DriveMin > capMin {
			out = append(out, model.Warning{
				Severity:   model.SeverityWarning,
				Code:       "long_driving_day",
				Message:    fmt.Sprintf("Day %d holds %.1f hours of driving", d.Day, d.Totals.DriveMin/60),
				Suggestion: "Consider splitting this day or adding a driver",
			})
		}
	}

	if n := len(days); n > 0 {
		b := days[n-1].Budget
		if b.RemainingGas < 0 || b.RemainingHotel < 0 || b.RemainingFood < 0 {
			out = append(out, model.Warning{
				Severity:   model.SeverityWarning,
				Code:       "over_budget",
				Message:    fmt.Sprintf("Projected costs exceed the budget (gas %+.0f, hotel %+.0f, food %+.0f)", b.RemainingGas, b.RemainingHotel, b.RemainingFood),
				Suggestion: "Raise the budget or shorten the trip",
			})
		}
	}
	return out
}
