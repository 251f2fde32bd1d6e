package common

// TruncateEllipsis shortens s when it runs over max characters, keeping
// the first max-2 runes and appending "...". max must be at least 2.
func TruncateEllipsis(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-2]) + "..."
}
