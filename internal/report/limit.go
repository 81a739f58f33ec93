// Package report trims itemized tool output to sizes an assistant can consume.
package report

// Limits bounds an itemized list. Zero disables the corresponding bound.
type Limits struct {
	MaxItems    int
	TokenBudget int
}

// Cap returns the leading items that fit both bounds and whether anything
// was dropped. Items are kept in order; the first item is always kept so a
// non-empty input never renders as empty.
func Cap[T any](items []T, limits Limits) ([]T, bool) {
	kept := items
	truncated := false
	if limits.MaxItems > 0 && len(kept) > limits.MaxItems {
		kept = kept[:limits.MaxItems]
		truncated = true
	}
	if limits.TokenBudget <= 0 || len(kept) == 0 {
		return kept, truncated
	}

	used := 0
	for i, item := range kept {
		n, err := EstimateJSON(item)
		if err != nil {
			continue
		}
		used += n + 1
		if used > limits.TokenBudget && i > 0 {
			return kept[:i], true
		}
	}
	return kept, truncated
}
