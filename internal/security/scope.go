package security

// MissingScopes returns the required scopes absent from granted, in required order.
// Comparison is exact and case-sensitive.
func MissingScopes(required, granted []string) []string {
	have := make(map[string]struct{}, len(granted))
	for _, s := range granted {
		have[s] = struct{}{}
	}
	var missing []string
	for _, s := range required {
		if _, ok := have[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}
