// Package app wires the store, services and HTTP transports of the task tracker.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/everyio/tasktracker/internal/infra/clock"
	"github.com/everyio/tasktracker/internal/infra/config"
	"github.com/everyio/tasktracker/internal/infra/logging"
	http_ "github.com/everyio/tasktracker/internal/infra/transport/http"
	"github.com/everyio/tasktracker/internal/repo/database"
	"github.com/everyio/tasktracker/internal/repo/task"
	"github.com/everyio/tasktracker/internal/repo/user"
	"github.com/everyio/tasktracker/internal/svc/authsvc"
	"github.com/everyio/tasktracker/internal/svc/tasksvc"
)

// Namespace prefixes every environment variable read into Config.
const Namespace = "TASKSVC"

// Config is the complete configuration of the task tracker.
type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig      `envPrefix:"LOG_"`
	Auth authsvc.AuthConfig        `envPrefix:""`
	HTTP http_.HTTPTransportConfig `envPrefix:"HTTP_"`
	DB   database.Config           `envPrefix:"DB_"`
}

// LoadConfig reads Config from the environment after loading the given .env files.
func LoadConfig(ctx context.Context, envFiles ...string) (Config, error) {
	var cfg Config

	if err := config.LoadDotEnv(envFiles...); err != nil {
		return cfg, fmt.Errorf("load dotenv: %w", err)
	}

	if err := config.Parse(ctx, &cfg, Namespace); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// App holds the wired components. It owns the store handle and must be closed.
type App struct {
	Config  Config
	DB      *database.DB
	AuthSvc *authsvc.AuthService
	TaskSvc *tasksvc.TaskService

	log     logging.Logger
	handler http.Handler
}

// New opens the store described by cfg and builds the services on top of it.
func New(ctx context.Context, cfg Config, clk clock.Clock) (*App, error) {
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	authSvc, err := authsvc.NewAuthService(user.NewSQLUserRepository(db), clk, cfg.Auth)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("new auth service: %w", err)
	}

	taskSvc := tasksvc.NewTaskService(task.NewSQLTaskRepository(db), clk)

	app := &App{
		Config:  cfg,
		DB:      db,
		AuthSvc: authSvc,
		TaskSvc: taskSvc,
		log:     logging.GetLogger("app"),
	}

	mux := http.NewServeMux()
	authsvc.NewHTTPTransport(authSvc).Routes(mux)
	tasksvc.NewHTTPTransport(taskSvc).Routes(mux)
	mux.HandleFunc("GET /healthz", app.handleHealthz)

	app.handler = http_.AuthenticatingMiddleware(mux, authSvc, app.log)

	return app, nil
}

// ServeHTTP implements http.Handler. It resolves the bearer token of each request
// before dispatching it to the operation.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*App)(nil)

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := a.DB.PingContext(r.Context()); err != nil {
		a.log.ErrorContext(r.Context(), "health check failed", "error", err)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)

		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// Run serves the API until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := http_.ListenAndServe(ctx, a, a.Config.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Close releases the store handle.
func (a *App) Close() error {
	return a.DB.Close()
}
