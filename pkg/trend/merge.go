package trend

// Merge concatenates the groups in order and deduplicates by ID. A later
// record with an ID already seen replaces the earlier one in place.
func Merge(groups ...[]Trend) []Trend {
	index := make(map[string]int)
	var merged []Trend
	for _, group := range groups {
		for _, t := range group {
			if i, ok := index[t.ID]; ok {
				merged[i] = t
				continue
			}
			index[t.ID] = len(merged)
			merged = append(merged, t)
		}
	}
	if merged == nil {
		merged = []Trend{}
	}
	return merged
}
