package test_utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jivetime/jivetime/internal/config"
	"github.com/jivetime/jivetime/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	testDbName     = "jivetime"
	testDbUser     = "test_jivetime"
	testDbPassword = "test_jivetime"
	snapshotName   = "jivetime-test-snapshot"
)

func preparePostgresContainer(ctx context.Context) (*postgres.PostgresContainer, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}

	pgContainer, err := postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithInitScripts(filepath.Join(projectRoot, "dev", "init.sql")),
		postgres.WithDatabase(testDbName),
		postgres.WithUsername(testDbUser),
		postgres.WithPassword(testDbPassword),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Errorf("failed to start container: %s", err)
		return nil, err
	}
	return pgContainer, nil
}

// TestWithDB starts Postgres, applies all migrations and snapshots the result so that
// tests can call Restore on the container to get a clean schema back. The returned
// function opens a new pool; callers close it before restoring.
func TestWithDB() (*postgres.PostgresContainer, func() *pgxpool.Pool) {
	ctx := context.Background()

	container, err := preparePostgresContainer(ctx)
	if err != nil {
		log.Errorf("Failed to start postgres container: %v", err)
		os.Exit(1)
	}

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5432/tcp")

	log.Infof("Postgres container started at %s:%d", host, port.Int())

	cfg := config.Database{
		Host:     host,
		Port:     port.Int(),
		User:     testDbUser,
		Pass:     testDbPassword,
		Name:     testDbName,
		Schema:   "jivetime",
		MaxConns: 4,
	}

	if err := database.Migrate(cfg); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	if err := container.Snapshot(ctx, postgres.WithSnapshotName(snapshotName)); err != nil {
		log.Fatalf("Failed to snapshot postgres container: %v", err)
	}

	return container, func() *pgxpool.Pool {
		pool, err := database.Open(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to open database connection: %v", err)
		}
		return pool
	}
}

// findProjectRoot walks up until it finds a directory holding go.mod or .git.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if fileExists(filepath.Join(dir, ".git")) || fileExists(filepath.Join(dir, "go.mod")) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root")
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
