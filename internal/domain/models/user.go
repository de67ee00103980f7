// internal/domain/models/user.go
package models

// Role tags stored on user records. Comparison is by exact equality.
const (
	RoleAdmin        = "Admin"
	RoleDoctor       = "Doctor"
	RoleReceptionist = "Receptionist"
	RolePatient      = "Patient"
)

// DefaultSubscriptionPlan is written on role changes.
const DefaultSubscriptionPlan = "Free"

// StaffRoles are the roles an administrator can create accounts for.
var StaffRoles = []string{RoleDoctor, RoleReceptionist}

// AssignableRoles are the roles offered by the change-role form.
var AssignableRoles = []string{RolePatient, RoleDoctor, RoleReceptionist, RoleAdmin}

// User represents admins, doctors, receptionists, and patients with an
// account record.
//
// ID is the account identifier and doubles as the document _id; UID repeats
// it so records written by other clients (which key on uid) stay readable.
type User struct {
	ID               string    `bson:"_id" json:"id"`
	UID              string    `bson:"uid,omitempty" json:"uid,omitempty"`
	Name             string    `bson:"name" json:"name"`
	Email            string    `bson:"email" json:"email"`
	Role             string    `bson:"role" json:"role"`
	SubscriptionPlan string    `bson:"subscriptionPlan,omitempty" json:"subscriptionPlan,omitempty"`
	PasswordHash     string    `bson:"passwordHash,omitempty" json:"-"`
	CreatedAt        Timestamp `bson:"createdAt" json:"createdAt"`
}

// IsValidRole reports whether role is one of the known role tags.
func IsValidRole(role string) bool {
	for _, r := range AssignableRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStaffRole reports whether role can be provisioned from the admin dashboard.
func IsStaffRole(role string) bool {
	for _, r := range StaffRoles {
		if r == role {
			return true
		}
	}
	return false
}
