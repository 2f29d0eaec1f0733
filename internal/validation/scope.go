package validation

import (
	"fmt"
	"regexp"
)

// Permission (scope) name rules, covering Facebook permissions such as
// email, public_profile, user_birthday and pages_read_engagement:
// - Lowercase only.
// - Start and end with [a-z0-9].
// - Middle chars may include [a-z0-9:_.-].
// - Length 1..64.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

// ValidScopeName returns true if the provided scope name matches the allowed pattern.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// ValidateScopeNames returns an error naming the first invalid scope.
func ValidateScopeNames(names []string) error {
	for _, n := range names {
		if !ValidScopeName(n) {
			return fmt.Errorf("invalid scope name %q", n)
		}
	}
	return nil
}
