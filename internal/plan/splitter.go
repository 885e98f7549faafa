package plan

import (
	"fmt"
	"math"
	"sort"

	"roadtrip/internal/model"
)

// SplitSegments breaks any segment longer than maxDriveMin into evenly
// sized sub-segments. Even parts (rather than fill-to-max plus a short
// remainder) let the scheduler recombine short tails with the next leg,
// which reduces the total day count.
//
// Split-point coordinates walk the real route polyline when geometry is
// available, falling back to straight-line interpolation between the
// segment endpoints. Only the first part keeps the original departure
// timestamp and only the last keeps the arrival; intermediate parts
// carry neither and are re-timed downstream.
func SplitSegments(segments []model.Segment, maxDriveMin float64, geom *model.RouteGeometry) []model.ProcessedSegment {
	out := make([]model.ProcessedSegment, 0, len(segments))
	for i, seg := range segments {
		if maxDriveMin <= 0 || seg.DurationMin <= maxDriveMin {
			out = append(out, model.ProcessedSegment{Segment: seg, OriginalIndex: i})
			continue
		}
		numParts := int(math.Ceil(seg.DurationMin / maxDriveMin))
		out = append(out, splitSegment(seg, i, numParts, geom)...)
	}
	return out
}

func splitSegment(seg model.Segment, origIdx, numParts int, geom *model.RouteGeometry) []model.ProcessedSegment {
	partDur := seg.DurationMin / float64(numParts)
	partDist := seg.DistanceKm / float64(numParts)
	partFuel := seg.FuelLiters / float64(numParts)
	partCost := seg.FuelCost / float64(numParts)

	parts := make([]model.ProcessedSegment, 0, numParts)
	prev := seg.From
	for k := 0; k < numParts; k++ {
		var to model.Place
		if k == numParts-1 {
			to = seg.To
		} else {
			frac := float64(k+1) / float64(numParts)
			to = model.Place{
				Name:     fmt.Sprintf("In transit: %s → %s", seg.From.Name, seg.To.Name),
				Location: splitPoint(seg, origIdx, frac, geom),
			}
		}
		sub := seg
		sub.From = prev
		sub.To = to
		sub.DurationMin = partDur
		sub.DistanceKm = partDist
		sub.FuelLiters = partFuel
		sub.FuelCost = partCost
		sub.DepartAt = nil
		sub.ArriveAt = nil
		if k == 0 {
			sub.DepartAt = seg.DepartAt
		}
		if k == numParts-1 {
			sub.ArriveAt = seg.ArriveAt
		}
		// The per-day overnight flag belongs to the leg's true end.
		if k != numParts-1 {
			sub.StopType = ""
		}
		parts = append(parts, model.ProcessedSegment{
			Segment:       sub,
			OriginalIndex: origIdx,
			Transit:       &model.TransitPart{Index: k + 1, Total: numParts},
		})
		prev = to
	}
	return parts
}

// splitPoint resolves the coordinate at the given fraction of a segment.
// With geometry present it walks the polyline; return-leg positions past
// the outbound end are mirrored back onto the outbound geometry by their
// distance from the destination.
func splitPoint(seg model.Segment, origIdx int, frac float64, geom *model.RouteGeometry) *model.GeoPoint {
	if geom != nil && len(geom.Points) >= 2 && origIdx < len(geom.SegmentStartKm) {
		km := geom.SegmentStartKm[origIdx] + frac*seg.DistanceKm
		if p := pointAtKm(geom, km); p != nil {
			return p
		}
	}
	return lerpPoint(seg.From.Location, seg.To.Location, frac)
}

func pointAtKm(geom *model.RouteGeometry, km float64) *model.GeoPoint {
	if len(geom.CumulativeKm) != len(geom.Points) || geom.TotalKm <= 0 {
		return nil
	}
	// Mirror return-leg positions: a point x km into the trip beyond the
	// outbound end sits (x - total) km from the destination, i.e. at
	// outbound km 2*total - x.
	if km > geom.TotalKm {
		km = 2*geom.TotalKm - km
	}
	if km < 0 {
		km = 0
	}
	if km > geom.TotalKm {
		km = geom.TotalKm
	}
	cum := geom.CumulativeKm
	idx := sort.SearchFloat64s(cum, km)
	if idx == 0 {
		p := geom.Points[0]
		return &p
	}
	if idx >= len(cum) {
		p := geom.Points[len(geom.Points)-1]
		return &p
	}
	span := cum[idx] - cum[idx-1]
	t := 0.0
	if span > 0 {
		t = (km - cum[idx-1]) / span
	}
	return lerpPoint(&geom.Points[idx-1], &geom.Points[idx], t)
}

func lerpPoint(a, b *model.GeoPoint, t float64) *model.GeoPoint {
	if a == nil || b == nil {
		return nil
	}
	return &model.GeoPoint{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}
