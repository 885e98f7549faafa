package api

import (
	"fmt"

	"roadtrip/internal/model"
)

func validatePlanRequest(req *model.PlanRequest) error {
	if len(req.Segments) == 0 {
		return fmt.Errorf("segments must not be empty")
	}
	for i, seg := range req.Segments {
		if seg.DistanceKm < 0 {
			return fmt.Errorf("segment %d: distanceKm must be >= 0", i)
		}
		if seg.DurationMin <= 0 {
			return fmt.Errorf("segment %d: durationMin must be > 0", i)
		}
		if seg.From.Name == "" || seg.To.Name == "" {
			return fmt.Errorf("segment %d: from/to names are required", i)
		}
	}
	if req.Vehicle.TankLiters < 0 || req.Vehicle.LitersPer100Km < 0 {
		return fmt.Errorf("vehicle figures must be >= 0")
	}
	return validateSettings(&req.Settings, len(req.Segments))
}

func validateSettings(st *model.TripSettings, segCount int) error {
	if st.StartDate.IsZero() {
		return fmt.Errorf("settings.startDate is required")
	}
	if st.ReturnDate != nil && st.ReturnDate.Before(st.StartDate) {
		return fmt.Errorf("settings.returnDate precedes startDate")
	}
	if st.DepartureHour < 0 || st.DepartureHour > 23 {
		return fmt.Errorf("settings.departureHour must be in 0..23")
	}
	if st.TargetArrivalHour < 0 || st.TargetArrivalHour > 23 {
		return fmt.Errorf("settings.targetArrivalHour must be in 0..23")
	}
	if st.MaxDriveHours < 0 || st.MaxDriveHours > 24 {
		return fmt.Errorf("settings.maxDriveHours must be in 0..24")
	}
	if st.Travelers < 0 {
		return fmt.Errorf("settings.travelers must be >= 0")
	}
	if st.Drivers < 0 {
		return fmt.Errorf("settings.drivers must be >= 0")
	}
	switch st.Style {
	case "", model.StyleConservative, model.StyleBalanced, model.StyleAggressive:
	default:
		return fmt.Errorf("invalid style: %s", st.Style)
	}
	switch st.BudgetMode {
	case "", model.BudgetFlexible, model.BudgetManual:
	default:
		return fmt.Errorf("invalid budgetMode: %s", st.BudgetMode)
	}
	if st.RoundTrip && (st.RoundTripMidpoint < 0 || st.RoundTripMidpoint >= segCount) {
		return fmt.Errorf("settings.roundTripMidpoint out of range")
	}
	if st.TotalBudget < 0 || st.GasBudget < 0 || st.HotelBudget < 0 || st.FoodBudget < 0 {
		return fmt.Errorf("budget figures must be >= 0")
	}
	return nil
}
