package plan

import (
	"sort"

	"roadtrip/internal/model"
)

// RotateDrivers assigns a driver number to every segment and aggregates
// per-driver stats. Rotation happens at fuel stops when enough exist;
// fuel-sparse routes get synthetic, evenly time-spaced rotation points so
// every driver takes a turn. Strictly read-only over its inputs.
//
// fuelStopSegments holds the indices of segments preceded by a fuel stop.
func RotateDrivers(segments []model.ProcessedSegment, driverCount int, fuelStopSegments []int) ([]model.DriverAssignment, []model.DriverStats) {
	if len(segments) == 0 {
		return []model.DriverAssignment{}, []model.DriverStats{}
	}
	if driverCount < 1 {
		driverCount = 1
	}

	rotate := rotationPoints(segments, driverCount, fuelStopSegments)

	assignments := make([]model.DriverAssignment, 0, len(segments))
	stats := make([]model.DriverStats, driverCount)
	for d := range stats {
		stats[d].Driver = d + 1
	}
	driver := 1
	for i, seg := range segments {
		if i > 0 && rotate[i] {
			driver = driver%driverCount + 1
		}
		assignments = append(assignments, model.DriverAssignment{SegmentIndex: i, Driver: driver})
		st := &stats[driver-1]
		st.TotalMinutes += seg.DurationMin
		st.TotalKm += seg.DistanceKm
		st.Segments++
	}
	return assignments, stats
}

// rotationPoints picks the segment indices where the wheel changes
// hands. Fuel stops are preferred; when fewer than driverCount-1 exist,
// synthetic points split total drive time into equal shares.
func rotationPoints(segments []model.ProcessedSegment, driverCount int, fuelStopSegments []int) map[int]bool {
	points := map[int]bool{}
	for _, idx := range fuelStopSegments {
		if idx > 0 && idx < len(segments) {
			points[idx] = true
		}
	}
	if driverCount <= 1 || len(points) >= driverCount-1 {
		return points
	}

	totalMin := 0.0
	for _, seg := range segments {
		totalMin += seg.DurationMin
	}
	share := totalMin / float64(driverCount)
	cum := 0.0
	synthetic := []int{}
	next := 1
	for i, seg := range segments {
		cum += seg.DurationMin
		for next < driverCount && cum >= share*float64(next) {
			if i+1 < len(segments) {
				synthetic = append(synthetic, i+1)
			}
			next++
		}
	}
	sort.Ints(synthetic)
	for _, idx := range synthetic {
		if len(points) >= driverCount-1 {
			break
		}
		points[idx] = true
	}
	return points
}
