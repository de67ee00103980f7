// Package accounts provisions staff accounts from the admin dashboard.
//
// Account creation is two-phase from the caller's point of view: Create
// returns an Outcome, and when Outcome.ReauthRequired is set the caller must
// end the operator's session and send them back through sign-in. This is
// the default, because provisioning through a shared identity provider
// signs in as the new account. Deployments with a separate account system
// may turn it off.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userstore "github.com/dalemusser/clinicdash/internal/app/store/users"
	"github.com/dalemusser/clinicdash/internal/app/system/auth"
	"github.com/dalemusser/clinicdash/internal/app/system/normalize"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultReauth is the account_create_reauth default: after creating an
// account the operator signs in again.
const DefaultReauth = true

// ErrDuplicateEmail is returned when the email already belongs to an account.
var ErrDuplicateEmail = userstore.ErrDuplicateEmail

// ErrInvalidRole is returned for roles that cannot be provisioned here.
var ErrInvalidRole = errors.New("role must be Doctor or Receptionist")

// ErrMissingField is returned when name, email, or password is blank.
var ErrMissingField = errors.New("name, email and password are required")

// UserCreator persists a new user record.
type UserCreator interface {
	Create(ctx context.Context, u models.User) (models.User, error)
}

// Request is the input to Create.
type Request struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Outcome reports the created user and whether the operator must sign in
// again before continuing.
type Outcome struct {
	User           models.User
	ReauthRequired bool
}

// Provisioner creates accounts.
type Provisioner struct {
	users  UserCreator
	reauth bool
	log    *zap.Logger
}

// New returns a Provisioner. reauth controls Outcome.ReauthRequired.
func New(users UserCreator, reauth bool, logger *zap.Logger) *Provisioner {
	return &Provisioner{users: users, reauth: reauth, log: logger}
}

// Create hashes the password and stores a new user with the given role.
func (p *Provisioner) Create(ctx context.Context, req Request) (Outcome, error) {
	name := normalize.Name(req.Name)
	email := normalize.Email(req.Email)
	role := normalize.Role(req.Role)

	if name == "" || email == "" || strings.TrimSpace(req.Password) == "" {
		return Outcome{}, ErrMissingField
	}
	if !models.IsStaffRole(role) {
		return Outcome{}, ErrInvalidRole
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return Outcome{}, err
	}

	u, err := p.users.Create(ctx, models.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return Outcome{}, ErrDuplicateEmail
		}
		return Outcome{}, fmt.Errorf("create account: %w", err)
	}

	p.log.Info("account created",
		zap.String("user_id", u.ID),
		zap.String("role", u.Role),
		zap.Bool("reauth_required", p.reauth))

	return Outcome{User: u, ReauthRequired: p.reauth}, nil
}
