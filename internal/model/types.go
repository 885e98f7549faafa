package model

import "time"

// Core domain types for the trip planning engine and API.

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a named point on the route.
type Place struct {
	Name     string    `json:"name"`
	Location *GeoPoint `json:"location,omitempty"`
}

// StopType classifies suggested stops and segment overrides.
type StopType string

const (
	StopFuel      StopType = "fuel"
	StopRest      StopType = "rest"
	StopMeal      StopType = "meal"
	StopOvernight StopType = "overnight"
)

// Priority ranks a suggested stop.
type Priority string

const (
	PriorityRequired    Priority = "required"
	PriorityRecommended Priority = "recommended"
	PriorityOptional    Priority = "optional"
)

// DayType distinguishes driving days from destination dwell days.
type DayType string

const (
	DayPlanned DayType = "planned"
	DayFree    DayType = "free"
)

// EventType identifies entries in the assembled timeline.
type EventType string

const (
	EventDeparture   EventType = "departure"
	EventDrive       EventType = "drive"
	EventFuel        EventType = "fuel"
	EventMeal        EventType = "meal"
	EventRest        EventType = "rest"
	EventOvernight   EventType = "overnight"
	EventWaypoint    EventType = "waypoint"
	EventArrival     EventType = "arrival"
	EventCombo       EventType = "combo"
	EventDestination EventType = "destination"
)

// StopStyle is the stop-frequency preset.
type StopStyle string

const (
	StyleConservative StopStyle = "conservative"
	StyleBalanced     StopStyle = "balanced"
	StyleAggressive   StopStyle = "aggressive"
)

// BudgetMode selects how per-category budgets are derived.
type BudgetMode string

const (
	BudgetFlexible BudgetMode = "flexible"
	BudgetManual   BudgetMode = "manual"
)

// Severity ranks feasibility warnings.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Segment is an atomic drive leg produced by the external route collaborator.
type Segment struct {
	From           Place      `json:"from"`
	To             Place      `json:"to"`
	DistanceKm     float64    `json:"distanceKm"`
	DurationMin    float64    `json:"durationMin"`
	FuelLiters     float64    `json:"fuelLiters,omitempty"`
	FuelCost       float64    `json:"fuelCost,omitempty"`
	StopType       StopType   `json:"stopType,omitempty"`
	DepartAt       *time.Time `json:"departAt,omitempty"`
	ArriveAt       *time.Time `json:"arriveAt,omitempty"`
	Timezone       string     `json:"timezone,omitempty"`       // abbreviation from weather data
	UTCOffsetHours *float64   `json:"utcOffsetHours,omitempty"` // offset backing the abbreviation
}

// TransitPart marks a sub-segment of a split leg ("In Transit, Day 2/3").
type TransitPart struct {
	Index int `json:"index"`
	Total int `json:"total"`
}

// ProcessedSegment is a Segment annotated by the splitter.
type ProcessedSegment struct {
	Segment
	OriginalIndex int          `json:"originalIndex"`
	Transit       *TransitPart `json:"transitPart,omitempty"`
}

// RouteGeometry carries the real route polyline with cumulative km offsets.
type RouteGeometry struct {
	Points         []GeoPoint `json:"points"`
	CumulativeKm   []float64  `json:"cumulativeKm"`   // per point, from route start
	SegmentStartKm []float64  `json:"segmentStartKm"` // per input segment
	TotalKm        float64    `json:"totalKm"`
}

// DayTotals summarizes one trip day.
type DayTotals struct {
	DistanceKm float64   `json:"distanceKm"`
	DriveMin   float64   `json:"driveMin"`
	StopMin    float64   `json:"stopMin"`
	Depart     time.Time `json:"depart"`
	Arrive     time.Time `json:"arrive"`
}

// BudgetSnapshot is a day's category costs plus the running remainder.
type BudgetSnapshot struct {
	GasCost        float64 `json:"gasCost"`
	HotelCost      float64 `json:"hotelCost"`
	FoodCost       float64 `json:"foodCost"`
	RemainingGas   float64 `json:"remainingGas"`
	RemainingHotel float64 `json:"remainingHotel"`
	RemainingFood  float64 `json:"remainingFood"`
}

type OvernightStay struct {
	Location string  `json:"location"`
	Rooms    int     `json:"rooms"`
	Cost     float64 `json:"cost"`
}

// TimezoneChange records a clock change while crossing between segments.
type TimezoneChange struct {
	SegmentIndex int    `json:"segmentIndex"`
	From         string `json:"from"`
	To           string `json:"to"`
	Message      string `json:"message"`
}

// TripDay is one calendar day of the plan. Created and finalized by the
// day scheduler; never mutated afterward.
type TripDay struct {
	Day             int                `json:"day"`
	Date            time.Time          `json:"date"`
	Type            DayType            `json:"dayType"`
	Segments        []ProcessedSegment `json:"segments"`
	SegmentIndices  []int              `json:"segmentIndices"`
	Budget          BudgetSnapshot     `json:"budget"`
	Totals          DayTotals          `json:"totals"`
	Overnight       *OvernightStay     `json:"overnight,omitempty"`
	TimezoneChanges []TimezoneChange   `json:"timezoneChanges,omitempty"`
}

// PlacementKind tags the Placement variant.
type PlacementKind string

const (
	PlacementBoundary PlacementKind = "boundary"
	PlacementMidDrive PlacementKind = "midDrive"
)

type BoundarySide string

const (
	SideBefore BoundarySide = "before"
	SideAfter  BoundarySide = "after"
)

// Placement anchors a suggested stop: either at a segment boundary
// (before/after) or mid-drive inside a segment. The mid-drive instant
// lives in SuggestedStop.EstimatedTime.
type Placement struct {
	Kind         PlacementKind `json:"kind"`
	SegmentIndex int           `json:"segmentIndex"`
	Side         BoundarySide  `json:"side,omitempty"`
}

// StopDetails carries type-specific extras for a suggestion.
type StopDetails struct {
	FillLiters float64    `json:"fillLiters,omitempty"`
	FillCost   float64    `json:"fillCost,omitempty"`
	MealLabel  string     `json:"mealLabel,omitempty"`
	MergedFrom []StopType `json:"mergedFrom,omitempty"`
}

// SuggestedStop is a candidate stop. Regenerated whenever inputs change;
// the ID is stable so user decisions can be re-applied afterwards.
type SuggestedStop struct {
	ID            string      `json:"id"`
	Type          StopType    `json:"type"`
	Placement     Placement   `json:"placement"`
	EstimatedTime time.Time   `json:"estimatedTime"`
	DurationMin   float64     `json:"durationMin"`
	Priority      Priority    `json:"priority"`
	Reason        string      `json:"reason,omitempty"`
	Details       StopDetails `json:"details"`
	Accepted      bool        `json:"accepted,omitempty"`
	Dismissed     bool        `json:"dismissed,omitempty"`
}

// StopOverride is a user decision keyed by stop ID, re-applied after
// every regeneration.
type StopOverride struct {
	Accepted    *bool    `json:"accepted,omitempty"`
	Dismissed   *bool    `json:"dismissed,omitempty"`
	DurationMin *float64 `json:"durationMin,omitempty"`
}

// TimedEvent is one entry of the assembled itinerary. Ephemeral; rebuilt
// on every plan pass, never persisted.
type TimedEvent struct {
	Type                 EventType       `json:"type"`
	Label                string          `json:"label"`
	Location             string          `json:"location"`
	Arrive               time.Time       `json:"arrive"`
	Depart               time.Time       `json:"depart"`
	DurationMin          float64         `json:"durationMin"`
	DistanceFromOriginKm float64         `json:"distanceFromOriginKm"`
	Stops                []SuggestedStop `json:"stops,omitempty"`
	TimeSavedMin         float64         `json:"timeSavedMin,omitempty"`
}

// DriverAssignment maps a segment to a driver number (1-based).
type DriverAssignment struct {
	SegmentIndex int `json:"segmentIndex"`
	Driver       int `json:"driver"`
}

type DriverStats struct {
	Driver       int     `json:"driver"`
	TotalMinutes float64 `json:"totalMinutes"`
	TotalKm      float64 `json:"totalKm"`
	Segments     int     `json:"segments"`
}

// Vehicle is a garage record; the engine only reads tank and economy.
type Vehicle struct {
	ID             string    `json:"id,omitempty"`
	TenantID       string    `json:"tenantId,omitempty"`
	Name           string    `json:"name,omitempty"`
	TankLiters     float64   `json:"tankLiters"`
	LitersPer100Km float64   `json:"litersPer100Km"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

// TripSettings is the budget/pace configuration for one trip.
type TripSettings struct {
	StartDate          time.Time  `json:"startDate"`
	ReturnDate         *time.Time `json:"returnDate,omitempty"`
	DepartureHour      int        `json:"departureHour,omitempty"`
	TargetArrivalHour  int        `json:"targetArrivalHour,omitempty"`
	MaxDriveHours      float64    `json:"maxDriveHours,omitempty"`
	IgnoreDailyCap     bool       `json:"ignoreDailyCap,omitempty"`
	Travelers          int        `json:"travelers,omitempty"`
	Drivers            int        `json:"drivers,omitempty"`
	Style              StopStyle  `json:"style,omitempty"`
	BudgetMode         BudgetMode `json:"budgetMode,omitempty"`
	TotalBudget        float64    `json:"totalBudget,omitempty"`
	GasBudget          float64    `json:"gasBudget,omitempty"`
	HotelBudget        float64    `json:"hotelBudget,omitempty"`
	FoodBudget         float64    `json:"foodBudget,omitempty"`
	GasPricePerLiter   float64    `json:"gasPricePerLiter,omitempty"`
	HotelNightly       float64    `json:"hotelNightly,omitempty"`
	MealPrice          float64    `json:"mealPrice,omitempty"`
	RoundTrip          bool       `json:"roundTrip,omitempty"`
	RoundTripMidpoint  int        `json:"roundTripMidpoint,omitempty"`
	DestinationStayMin float64    `json:"destinationStayMin,omitempty"`
}

// Warning is a severity-ranked feasibility finding. The plan is always
// returned best-effort alongside.
type Warning struct {
	Severity   Severity `json:"severity"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// PlanRequest is the full input of one pipeline run.
type PlanRequest struct {
	Segments  []Segment               `json:"segments"`
	Vehicle   Vehicle                 `json:"vehicle"`
	Settings  TripSettings            `json:"settings"`
	Geometry  *RouteGeometry          `json:"geometry,omitempty"`
	Overrides map[string]StopOverride `json:"overrides,omitempty"`
}

// PlanResult is everything one pipeline run produces.
type PlanResult struct {
	Days        []TripDay          `json:"days"`
	Suggestions []SuggestedStop    `json:"suggestions"`
	Events      []TimedEvent       `json:"events"`
	Assignments []DriverAssignment `json:"driverAssignments"`
	DriverStats []DriverStats      `json:"driverStats"`
	Warnings    []Warning          `json:"warnings,omitempty"`
}

// Trip is a saved draft: inputs plus user stop decisions. Computed plans
// are never persisted.
type Trip struct {
	ID        string                  `json:"id"`
	TenantID  string                  `json:"tenantId"`
	Name      string                  `json:"name,omitempty"`
	Segments  []Segment               `json:"segments"`
	VehicleID string                  `json:"vehicleId,omitempty"`
	Vehicle   Vehicle                 `json:"vehicle"`
	Settings  TripSettings            `json:"settings"`
	Geometry  *RouteGeometry          `json:"geometry,omitempty"`
	Overrides map[string]StopOverride `json:"overrides,omitempty"`
	Version   int                     `json:"version"`
	CreatedAt time.Time               `json:"createdAt,omitempty"`
	UpdatedAt time.Time               `json:"updatedAt,omitempty"`
}
