package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
)

// Profile field names understood by ProfileRules.Required.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
)

// Pragmatic email shape: local@domain.tld, no spaces, one '@'.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return len(s) <= 254 && emailRe.MatchString(s)
}

// ProfileRules are the locally configured constraints a provisioned profile must satisfy.
type ProfileRules struct {
	Required []string
	// MaxNameLength limits each name part; 0 disables the check.
	MaxNameLength int
}

// Validate returns every violation found, joined; nil when p satisfies the rules.
func (r ProfileRules) Validate(p *repository.Profile) error {
	var errs []error
	for _, f := range r.Required {
		switch f {
		case FieldFirstName:
			if strings.TrimSpace(p.Name.FirstName) == "" {
				errs = append(errs, errors.New("first name is required"))
			}
		case FieldLastName:
			if strings.TrimSpace(p.Name.LastName) == "" {
				errs = append(errs, errors.New("last name is required"))
			}
		case FieldEmail:
			if primary := p.Primary(); primary == nil || primary.Identifier == "" {
				errs = append(errs, errors.New("primary email address is required"))
			}
		}
	}
	for i, a := range p.ElectronicAddresses {
		if a.Type == repository.ElectronicAddressTypeEmail && a.Identifier != "" && !ValidEmail(a.Identifier) {
			errs = append(errs, fmt.Errorf("electronic address %d is not a valid email", i))
		}
	}
	if r.MaxNameLength > 0 {
		for _, part := range []string{p.Name.FirstName, p.Name.MiddleName, p.Name.LastName} {
			if len(part) > r.MaxNameLength {
				errs = append(errs, fmt.Errorf("name part exceeds %d characters", r.MaxNameLength))
				break
			}
		}
	}
	return errors.Join(errs...)
}
