package plan

import (
	"time"

	"roadtrip/internal/model"
)

var testStart = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func testSettings() model.TripSettings {
	return model.TripSettings{
		StartDate:         testStart,
		DepartureHour:     8,
		TargetArrivalHour: 18,
		MaxDriveHours:     10,
		Travelers:         2,
		Drivers:           1,
		Style:             model.StyleBalanced,
		BudgetMode:        model.BudgetManual,
		GasBudget:         500,
		HotelBudget:       600,
		FoodBudget:        400,
		GasPricePerLiter:  1.80,
		HotelNightly:      120,
		MealPrice:         15,
	}
}

func testVehicle() model.Vehicle {
	return model.Vehicle{TankLiters: 55, LitersPer100Km: 10}
}

func leg(from, to string, km, min float64) model.Segment {
	return model.Segment{
		From:        model.Place{Name: from, Location: &model.GeoPoint{Lat: 1, Lng: 1}},
		To:          model.Place{Name: to, Location: &model.GeoPoint{Lat: 2, Lng: 2}},
		DistanceKm:  km,
		DurationMin: min,
	}
}

func processed(segs ...model.Segment) []model.ProcessedSegment {
	out := make([]model.ProcessedSegment, len(segs))
	for i, s := range segs {
		out[i] = model.ProcessedSegment{Segment: s, OriginalIndex: i}
	}
	return out
}

func at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, day.Location())
}
