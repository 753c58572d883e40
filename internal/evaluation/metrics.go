package evaluation

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func topK(retrieved []string, k int) []string {
	if k < len(retrieved) {
		return retrieved[:k]
	}
	return retrieved
}

// RecallAtK computes Recall@K: the fraction of relevant items found in the top-K retrieved results.
// Returns 0.0 if relevant is empty.
func RecallAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 {
		return 0.0
	}

	relevantSet := toSet(relevant)
	found := 0
	for _, r := range topK(retrieved, k) {
		if _, ok := relevantSet[r]; ok {
			found++
		}
	}

	return float64(found) / float64(len(relevant))
}

// PrecisionAtK computes the fraction of the top-K retrieved results that are relevant.
// Returns 0.0 if nothing was retrieved.
func PrecisionAtK(relevant, retrieved []string, k int) float64 {
	top := topK(retrieved, k)
	if len(top) == 0 {
		return 0.0
	}

	relevantSet := toSet(relevant)
	found := 0
	for _, r := range top {
		if _, ok := relevantSet[r]; ok {
			found++
		}
	}

	return float64(found) / float64(len(top))
}

// MRRAtK computes Mean Reciprocal Rank at K: the reciprocal of the rank of the first relevant item
// in the top-K retrieved results. Returns 0.0 if no relevant item is found in top-K.
func MRRAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 || len(retrieved) == 0 {
		return 0.0
	}

	relevantSet := toSet(relevant)
	for i, r := range topK(retrieved, k) {
		if _, ok := relevantSet[r]; ok {
			return 1.0 / float64(i+1)
		}
	}

	return 0.0
}

// ExactMatch reports whether retrieved equals expected element for element
func ExactMatch(expected, retrieved []string) bool {
	if len(expected) != len(retrieved) {
		return false
	}
	for i := range expected {
		if expected[i] != retrieved[i] {
			return false
		}
	}
	return true
}
