// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/clinicdash/internal/app/resources"
	userstore "github.com/dalemusser/clinicdash/internal/app/store/users"
	"github.com/dalemusser/clinicdash/internal/app/system/auth"
	"github.com/dalemusser/clinicdash/internal/app/system/ratelimit"
	"github.com/dalemusser/clinicdash/internal/app/system/timeouts"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It loads
// shared templates, applies timeout overrides from the environment, and makes
// sure the configured administrator can sign in.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("timeouts configured from environment",
			zap.Int("overrides", n),
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium),
			zap.Duration("long", cur.Long))
	}

	if err := ratelimit.SetTrustedProxies(appCfg.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	if len(appCfg.TrustedProxies) > 0 {
		logger.Info("honoring forwarding headers from trusted proxies", zap.Strings("proxies", appCfg.TrustedProxies))
	}

	if appCfg.AdminEmail != "" {
		ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
		defer cancel()
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, appCfg.AdminName, appCfg.AdminPassword, logger); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
	}

	if deps.AuditRetention != nil {
		deps.AuditRetention.Start()
	}
	return nil
}

// ensureAdmin makes email an Admin account. An existing record is promoted
// in place and keeps its password; a missing one is created, which needs a
// password.
func ensureAdmin(ctx context.Context, deps DBDeps, email, name, password string, logger *zap.Logger) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	users := userstore.New(deps.ClinicDashMongoDatabase)

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role == models.RoleAdmin {
			logger.Debug("admin account already present", zap.String("email", u.Email))
			return nil
		}
		if err := users.UpsertRole(ctx, userstore.RoleChange{ID: u.ID, Role: models.RoleAdmin}); err != nil {
			return err
		}
		logger.Info("promoted existing account to admin",
			zap.String("email", u.Email),
			zap.String("previous_role", u.Role))
		return nil

	case errors.Is(err, userstore.ErrNotFound):
		if password == "" {
			logger.Warn("admin account missing and no admin_password configured; skipping creation",
				zap.String("email", email))
			return nil
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		if strings.TrimSpace(name) == "" {
			name = "Administrator"
		}
		created, err := users.Create(ctx, models.User{
			Name:         name,
			Email:        email,
			Role:         models.RoleAdmin,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		logger.Info("created admin account", zap.String("email", created.Email), zap.String("id", created.ID))
		return nil

	default:
		return err
	}
}
