// Package normalize canonicalizes user-entered identity fields before they
// are stored or compared.
package normalize

import (
	"strings"

	"github.com/dalemusser/clinicdash/internal/domain/models"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses internal runs of spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role maps a case-insensitive role name to its stored form ("doctor" ->
// "Doctor"). Unknown input is returned trimmed but otherwise unchanged.
func Role(s string) string {
	s = strings.TrimSpace(s)
	for _, r := range models.AssignableRoles {
		if strings.EqualFold(s, r) {
			return r
		}
	}
	return s
}

// Status maps a case-insensitive appointment status to its stored form.
// Blank input becomes Pending.
func Status(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.StatusPending
	}
	for _, st := range models.AppointmentStatuses {
		if strings.EqualFold(s, st) {
			return st
		}
	}
	return s
}
