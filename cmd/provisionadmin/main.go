// provisionadmin creates the initial admin account of a task tracker store.
// Running it again for an existing admin is a no-op.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/everyio/tasktracker/internal/app"
	"github.com/everyio/tasktracker/internal/infra/clock"
	"github.com/everyio/tasktracker/internal/infra/logging"
)

// passwordEnv is read when --password is not given, keeping the
// password out of the process list.
const passwordEnv = "TASKSVC_ADMIN_PASSWORD"

var errNoPassword = errors.New("no password: pass --password or set " + passwordEnv)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var (
		username string
		password string
		envFiles []string
	)

	flagSet := pflag.NewFlagSet("provisionadmin", pflag.ContinueOnError)
	flagSet.StringVar(&username, "username", "admin", "username of the admin account")
	flagSet.StringVar(&password, "password", "", "password of the admin account (default $"+passwordEnv+")")
	flagSet.StringSliceVar(&envFiles, "env-file", nil, "load environment from these .env files (default .env)")

	if err := flagSet.Parse(args); err != nil {
		return err //nolint:wrapcheck
	}

	cfg, err := app.LoadConfig(ctx, envFiles...)
	if err != nil {
		return err
	}

	logging.Configure(ctx, cfg.Log, "tasktracker.provisionadmin")

	if password == "" {
		password = os.Getenv(passwordEnv)
	}

	if password == "" {
		return errNoPassword
	}

	a, err := app.New(ctx, cfg, clock.Real())
	if err != nil {
		return fmt.Errorf("new app: %w", err)
	}
	defer a.Close()

	admin, created, err := a.AuthSvc.ProvisionAdmin(ctx, username, password)
	if err != nil {
		return fmt.Errorf("provision admin: %w", err)
	}

	if created {
		fmt.Fprintf(stdout, "created admin %s (%s)\n", admin.Username, admin.ID)
	} else {
		fmt.Fprintf(stdout, "admin %s already exists (%s)\n", admin.Username, admin.ID)
	}

	return nil
}
