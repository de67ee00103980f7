package tables

import (
	"strings"

	"github.com/dalemusser/clinicdash/internal/domain/models"
)

// FilterUsers returns the users whose name or email contains q,
// case-insensitively. A blank q returns the input unchanged. The input slice
// is never modified.
func FilterUsers(users []models.User, q string) []models.User {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return users
	}
	out := make([]models.User, 0)
	for _, u := range users {
		if contains(u.Name, q) || contains(u.Email, q) {
			out = append(out, u)
		}
	}
	return out
}

// FilterPatients matches q against patient name and contact.
func FilterPatients(patients []models.Patient, q string) []models.Patient {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return patients
	}
	out := make([]models.Patient, 0)
	for _, p := range patients {
		if contains(p.Name, q) || contains(p.Contact.String(), q) {
			out = append(out, p)
		}
	}
	return out
}

func contains(field, lowerQ string) bool {
	return strings.Contains(strings.ToLower(field), lowerQ)
}
