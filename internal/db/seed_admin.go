package db

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/hbnb/internal/config"
	"github.com/geocoder89/hbnb/internal/domain/user"
	"github.com/geocoder89/hbnb/internal/security"
)

type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	Update(ctx context.Context, id string, patch user.Patch) (user.User, error)
}

// EnsureAdminUser creates the configured admin account if it does not exist yet,
// and promotes an existing account with that email. Nothing happens when no
// admin credentials are configured.
func EnsureAdminUser(ctx context.Context, users AdminStore, hasher security.Hasher, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	existing, err := users.GetByEmail(ctx, email)

	if err == nil {
		if existing.IsAdmin {
			return nil
		}
		promote := true
		_, err = users.Update(ctx, existing.ID, user.Patch{IsAdmin: &promote})
		return err
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := hasher.Hash(cfg.AdminPassword)

	if err != nil {
		return err
	}

	u := user.New(email, hash, cfg.AdminFirstName, cfg.AdminLastName)
	u.IsAdmin = true

	_, err = users.Create(ctx, u)
	if errors.Is(err, user.ErrEmailTaken) {
		// another instance seeded it first
		return nil
	}

	return err
}
