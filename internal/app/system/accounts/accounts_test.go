package accounts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/clinicdash/internal/app/system/accounts"
	"github.com/dalemusser/clinicdash/internal/app/system/auth"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"go.uber.org/zap"
)

type fakeUsers struct {
	created []models.User
	err     error
}

func (f *fakeUsers) Create(ctx context.Context, u models.User) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	u.ID = "new-id"
	f.created = append(f.created, u)
	return u, nil
}

func TestCreate_Success(t *testing.T) {
	users := &fakeUsers{}
	p := accounts.New(users, false, zap.NewNop())

	out, err := p.Create(context.Background(), accounts.Request{
		Name: "  Dr. Asha  Rao ", Email: "Asha@Example.com", Password: "secret1", Role: "doctor",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if out.ReauthRequired {
		t.Error("ReauthRequired should be false when disabled")
	}
	if out.User.Name != "Dr. Asha Rao" || out.User.Email != "asha@example.com" || out.User.Role != models.RoleDoctor {
		t.Errorf("user: got %+v", out.User)
	}
	if len(users.created) != 1 {
		t.Fatalf("created: got %d, want 1", len(users.created))
	}
	if !auth.CheckPassword(users.created[0].PasswordHash, "secret1") {
		t.Error("password should be stored as a matching bcrypt hash")
	}
}

func TestCreate_ReauthRequired(t *testing.T) {
	p := accounts.New(&fakeUsers{}, true, zap.NewNop())
	out, err := p.Create(context.Background(), accounts.Request{Name: "R", Email: "r@example.com", Password: "pw", Role: "Receptionist"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !out.ReauthRequired {
		t.Error("expected ReauthRequired")
	}
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     accounts.Request
		storeEr error
		want    error
	}{
		{"missing name", accounts.Request{Email: "a@b.co", Password: "pw", Role: "Doctor"}, nil, accounts.ErrMissingField},
		{"blank password", accounts.Request{Name: "A", Email: "a@b.co", Password: "  ", Role: "Doctor"}, nil, accounts.ErrMissingField},
		{"admin role", accounts.Request{Name: "A", Email: "a@b.co", Password: "pw", Role: "Admin"}, nil, accounts.ErrInvalidRole},
		{"duplicate", accounts.Request{Name: "A", Email: "a@b.co", Password: "pw", Role: "Doctor"}, accounts.ErrDuplicateEmail, accounts.ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{err: tt.storeEr}
			_, err := accounts.New(users, true, zap.NewNop()).Create(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("error: got %v, want %v", err, tt.want)
			}
			if tt.storeEr == nil && len(users.created) != 0 {
				t.Error("store must not be called on validation failure")
			}
		})
	}
}
