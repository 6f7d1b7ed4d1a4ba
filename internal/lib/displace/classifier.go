package displace

import "sort"

// Classify partitions features into fixed and moveable sets at the given
// priority threshold. The input is stably sorted by priority ascending
// first, so ties keep their original order and the combined output
// (fixed followed by moveable) is deterministic. No feature is dropped.
func Classify(features []*Feature, threshold Priority) (fixed, moveable []*Feature) {
	sorted := make([]*Feature, len(features))
	copy(sorted, features)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	for _, f := range sorted {
		if f.Priority.Fixed(threshold) {
			fixed = append(fixed, f)
		} else {
			moveable = append(moveable, f)
		}
	}

	return fixed, moveable
}
