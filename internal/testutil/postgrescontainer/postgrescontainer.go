// Package postgrescontainer runs a throwaway PostgreSQL for integration tests.
package postgrescontainer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	image    = "postgres:16-alpine"
	user     = "tierkv"
	password = "secret"
	dbName   = "tierkv_test"
)

var (
	once      sync.Once
	setupErr  error
	container *tcpostgres.PostgresContainer
	dsn       string

	// ready blocks until the database at dsn accepts connections.
	ready = waitForPostgres
)

// DSN returns a lib/pq formatted connection string.
func DSN() string { return dsn }

// Setup starts the Postgres container if it isn't already running.
func Setup() error {
	once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				setupErr = fmt.Errorf("docker unavailable: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		c, err := tcpostgres.Run(ctx, image,
			tcpostgres.WithDatabase(dbName),
			tcpostgres.WithUsername(user),
			tcpostgres.WithPassword(password),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		if err != nil {
			setupErr = fmt.Errorf("start postgres container: %w", err)
			return
		}
		container = c

		connStr, err := c.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			setupErr = fmt.Errorf("postgres connection string: %w", err)
			terminate()
			return
		}
		dsn = connStr

		if err := ready(dsn, 10*time.Second); err != nil {
			setupErr = err
			terminate()
		}
	})
	return setupErr
}

// terminate stops a container whose setup failed; setupErr is kept.
func terminate() {
	if container != nil {
		_ = container.Terminate(context.Background())
	}
	container, dsn = nil, ""
}

// Teardown stops the container launched by Setup and resets Setup.
func Teardown() error {
	var err error
	if container != nil {
		err = container.Terminate(context.Background())
	}
	container, dsn, setupErr = nil, "", nil
	once = sync.Once{}
	return err
}

func waitForPostgres(dsn string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		err := func() error {
			db, err := sql.Open("postgres", dsn)
			if err != nil {
				return err
			}
			defer db.Close()
			return db.PingContext(ctx)
		}()
		cancel()
		if err == nil {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return errors.New("postgres container did not become ready in time")
}
