// ABOUTME: Free-text filtering over cached collections

package panel

// Matcher is implemented by entities that support free-text search.
type Matcher interface {
	Matches(query string) bool
}

// Filter returns the items matching query, preserving order.
func Filter[T Matcher](items []T, query string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.Matches(query) {
			out = append(out, it)
		}
	}
	return out
}
