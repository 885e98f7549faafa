package plan

import "roadtrip/internal/model"

// ApplyOverrides layers user accept/dismiss/duration decisions onto
// freshly generated suggestions. The generator never sets these flags
// itself, so regeneration cannot discard a user decision.
func ApplyOverrides(base []model.SuggestedStop, overrides map[string]model.StopOverride) []model.SuggestedStop {
	out := make([]model.SuggestedStop, len(base))
	copy(out, base)
	if len(overrides) == 0 {
		return out
	}
	for i := range out {
		ov, ok := overrides[out[i].ID]
		if !ok {
			continue
		}
		if ov.Accepted != nil {
			out[i].Accepted = *ov.Accepted
		}
		if ov.Dismissed != nil {
			out[i].Dismissed = *ov.Dismissed
		}
		if ov.DurationMin != nil && *ov.DurationMin > 0 {
			out[i].DurationMin = *ov.DurationMin
		}
	}
	return out
}
