package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jivetime/jivetime/internal/config"
	"github.com/jivetime/jivetime/internal/database"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	db     *pgxpool.Pool
	deps   *Dependencies
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context) (*Application, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded")
	}

	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	deps, err := BuildDependencies(db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, db: db, deps: deps, router: r, srv: srv}, nil
}

// Run starts the HTTP server and the Google sync schedule, and blocks until
// SIGINT or SIGTERM.
func (a *Application) Run() error {
	defer a.db.Close()

	if err := a.deps.GoogleSyncer.Start(a.cfg.Google.SyncSchedule); err != nil {
		return err
	}
	defer a.deps.GoogleSyncer.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Infof("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.srv.Shutdown(ctx)
}
