package validation

import (
	"strings"
	"testing"

	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
)

func newProfile(first, last, email string) *repository.Profile {
	p := &repository.Profile{PrimaryElectronicAddress: -1, Name: repository.PersonName{FirstName: first, LastName: last}}
	if email != "" {
		p.PrimaryElectronicAddress = p.AddElectronicAddress(repository.ElectronicAddress{
			Type:       repository.ElectronicAddressTypeEmail,
			Identifier: email,
			Approved:   true,
		})
	}
	return p
}

func TestProfileRules_Valid(t *testing.T) {
	rules := ProfileRules{Required: []string{FieldFirstName, FieldLastName, FieldEmail}, MaxNameLength: 80}
	if err := rules.Validate(newProfile("Ada", "Lovelace", "ada@example.com")); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestProfileRules_MissingEmail(t *testing.T) {
	rules := ProfileRules{Required: []string{FieldEmail}}
	err := rules.Validate(newProfile("Ada", "Lovelace", ""))
	if err == nil || !strings.Contains(err.Error(), "email") {
		t.Fatalf("expected email violation, got %v", err)
	}
}

func TestProfileRules_BadEmailAlwaysChecked(t *testing.T) {
	rules := ProfileRules{}
	if err := rules.Validate(newProfile("Ada", "Lovelace", "not-an-email")); err == nil {
		t.Fatalf("expected invalid email to fail")
	}
}

func TestProfileRules_NameLength(t *testing.T) {
	rules := ProfileRules{MaxNameLength: 3}
	if err := rules.Validate(newProfile("Adaline", "L", "")); err == nil {
		t.Fatalf("expected name length violation")
	}
}

func TestValidEmail(t *testing.T) {
	for _, v := range []string{"a@b.co", "first.last+tag@example.org"} {
		if !ValidEmail(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
	for _, v := range []string{"", "a@b", "a b@c.d", "@c.d", "a@@c.d"} {
		if ValidEmail(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}
