package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/everyio/tasktracker/internal/app"
	"github.com/everyio/tasktracker/internal/infra/clock"
	"github.com/everyio/tasktracker/internal/infra/logging"
)

const (
	appName = "tasktracker"
	svcName = "tasksvc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loggerName := strings.ToLower(strings.Join([]string{appName, svcName}, "."))

	cfg, err := app.LoadConfig(ctx)
	if err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg app.Config) (err error) {
	log := logging.GetLogger("cmd.tasksvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	a, err := app.New(ctx, cfg, clock.Real())
	if err != nil {
		return fmt.Errorf("new app: %w", err)
	}

	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return a.Run(ctx)
}
