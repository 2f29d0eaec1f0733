package repository

import (
	"context"
	"time"
)

// ElectronicAddressTypeEmail is the type of email contact addresses.
const ElectronicAddressTypeEmail = "Email"

// PersonName is the structured name of a profile.
type PersonName struct {
	Title      string
	FirstName  string
	MiddleName string
	LastName   string
}

// FullName joins the non-empty name parts.
func (n PersonName) FullName() string {
	out := ""
	for _, p := range []string{n.Title, n.FirstName, n.MiddleName, n.LastName} {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}

// ElectronicAddress is a contact address (email, phone, ...).
type ElectronicAddress struct {
	Type       string
	Identifier string
	Approved   bool
}

// Profile is the local user record provisioned from identity provider user data.
type Profile struct {
	ID                  string
	Name                PersonName
	ElectronicAddresses []ElectronicAddress
	// PrimaryElectronicAddress indexes ElectronicAddresses; -1 when unset.
	PrimaryElectronicAddress int
	CreatedAt                time.Time
}

// AddElectronicAddress appends an address and returns its index.
func (p *Profile) AddElectronicAddress(a ElectronicAddress) int {
	p.ElectronicAddresses = append(p.ElectronicAddresses, a)
	return len(p.ElectronicAddresses) - 1
}

// Primary returns the primary electronic address, or nil.
func (p *Profile) Primary() *ElectronicAddress {
	if p.PrimaryElectronicAddress < 0 || p.PrimaryElectronicAddress >= len(p.ElectronicAddresses) {
		return nil
	}
	return &p.ElectronicAddresses[p.PrimaryElectronicAddress]
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	c := *p
	c.ElectronicAddresses = append([]ElectronicAddress(nil), p.ElectronicAddresses...)
	return &c
}

// ProfileRepository reads profiles.
type ProfileRepository interface {
	Get(ctx context.Context, id string) (*Profile, error)
}
