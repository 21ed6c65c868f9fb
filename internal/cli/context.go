// Package cli holds the commands of the hatirlat binary.
package cli

import (
	"context"
	"errors"
	"fmt"

	"hatirlat/internal/config"
	"hatirlat/internal/database"
	"hatirlat/internal/logger"
	"hatirlat/internal/store"

	"github.com/jmhodges/clock"
)

// demoPassword is the password of the demo account seeded in dummy mode when no admin is configured
const demoPassword = "hatirlat-demo"

// Context is shared by every command
type Context struct {
	Config config.Config
	Clock  clock.Clock
}

// OpenStore returns the store selected by the config. The returned func releases it.
func (c *Context) OpenStore(ctx context.Context) (store.Store, func(), error) {
	if c.Config.DummyMode {
		s := store.NewMemoryStore(c.Clock.Now)
		admin := c.Config.Admin
		if admin.Username == "" {
			admin = config.AdminConfig{Username: store.DemoOwner, Password: demoPassword}
			logger.Warn("Dummy mode without ADMIN_USERNAME, using demo account", "username", admin.Username, "password", demoPassword)
		}
		if err := store.SeedAdmin(ctx, s, admin); err != nil {
			return nil, nil, err
		}
		if err := store.SeedDummy(ctx, s, admin.Username, c.Clock.Now()); err != nil {
			return nil, nil, err
		}
		logger.Info("Running in dummy mode, data is kept in memory")
		return s, func() {}, nil
	}

	if err := database.InitDB(c.Config.Database, c.Config.LogDebug); err != nil {
		return nil, nil, err
	}
	s := store.NewGormStore(database.GetDB())
	if err := store.SeedAdmin(ctx, s, c.Config.Admin); err != nil {
		database.Close()
		return nil, nil, err
	}
	return s, database.Close, nil
}

// premiumChecker looks accounts up in s; unknown accounts are not premium
func premiumChecker(s store.Store) func(ctx context.Context, username string) (bool, error) {
	return func(ctx context.Context, username string) (bool, error) {
		account, err := s.GetAccount(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("premium lookup: %w", err)
		}
		return account.Premium, nil
	}
}
