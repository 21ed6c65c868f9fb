package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"hatirlat/internal/database"
	"hatirlat/internal/logger"
	"hatirlat/internal/models"
	"hatirlat/internal/services"
	"hatirlat/internal/store"
)

var errNeedsDatabase = errors.New("no database configured, set DATABASE_URL, DB_HOST or DB_DRIVER=sqlite")

// MigrateCmd creates or updates the schema
type MigrateCmd struct{}

func (m *MigrateCmd) Run(app *Context) error {
	if app.Config.DummyMode {
		return errNeedsDatabase
	}
	if err := database.InitDB(app.Config.Database, app.Config.LogDebug); err != nil {
		return err
	}
	defer database.Close()
	logger.Info("Migrations completed")
	return nil
}

// DispatchCmd runs a single dispatcher pass and prints its summary
type DispatchCmd struct{}

func (d *DispatchCmd) Run(app *Context) error {
	ctx := context.Background()
	st, closeStore, err := app.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	cfg := app.Config
	dispatcher := services.NewDispatcher(st, services.NewNotifiers(cfg), app.Clock, cfg.Timezone, cfg.DispatchTimeout)
	result, err := dispatcher.DispatchDue(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// CreateAccountCmd registers an account from the command line
type CreateAccountCmd struct {
	Username string `arg:"" help:"Account username."`
	Email    string `required:"" help:"Account email."`
	Password string `required:"" help:"Account password." env:"HATIRLAT_PASSWORD"`
	Premium  bool   `help:"Exempt the account from the free tier limit."`
}

func (c *CreateAccountCmd) Run(app *Context) error {
	if app.Config.DummyMode {
		return errNeedsDatabase
	}
	ctx := context.Background()
	st, closeStore, err := app.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	account := &models.Account{Username: c.Username, Email: c.Email, Premium: c.Premium}
	if err := account.SetPassword(c.Password); err != nil {
		return err
	}
	if err := st.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("account %q or email %q is already taken", c.Username, c.Email)
		}
		return err
	}
	fmt.Printf("Created account %s\n", account.Username)
	return nil
}
