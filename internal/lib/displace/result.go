package displace

// Result is the outcome of a displacement run: the combined feature set in
// partition order (fixed first, then moveable) and the collected metrics.
// It is returned to the caller instead of being cached process-wide; detail
// lookup by id belongs to whoever holds the result.
type Result struct {
	Features []*Feature
	Metrics  Metrics
}

// FeatureByID builds a keyed lookup over the result's features.
func (r *Result) FeatureByID() map[string]*Feature {
	byID := make(map[string]*Feature, len(r.Features))
	for _, f := range r.Features {
		byID[f.ID] = f
	}
	return byID
}

// DisplacedCount returns the number of distinct features that were moved at
// least once during the run.
func (r *Result) DisplacedCount() int {
	count := 0
	for _, f := range r.Features {
		if f.Displaced {
			count++
		}
	}
	return count
}
