// Package dbcheck answers whether a named database exists on a server by
// enumerating its catalog.
package dbcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// catalog is the slice of pgx.Conn used by the checker.
type catalog interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close(ctx context.Context) error
}

// Checker enumerates a server's database catalog.
type Checker struct {
	// connect is swapped out in tests.
	connect func(ctx context.Context, connString string) (catalog, error)
}

// NewChecker returns a checker that dials the server with pgx.
func NewChecker() *Checker {
	return &Checker{
		connect: func(ctx context.Context, connString string) (catalog, error) {
			conn, err := pgx.Connect(ctx, connString)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
	}
}

// Exists reports whether dbName exists on the server. A connection or query
// failure comes back as an error, never as a false result: callers must be
// able to tell "absent" from "could not check".
func (c *Checker) Exists(ctx context.Context, serverAddr, dbName string) (bool, error) {
	conn, err := c.connect(ctx, connString(serverAddr))
	if err != nil {
		return false, fmt.Errorf("connect to %s: %w", serverAddr, err)
	}
	defer conn.Close(ctx)

	var one int
	err = conn.QueryRow(ctx, `SELECT 1 FROM pg_database WHERE datname = $1`, dbName).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query catalog on %s: %w", serverAddr, err)
	}
	return true, nil
}

// connString accepts a bare host[:port] or a full connection URL. Bare
// addresses connect to the maintenance database to read the catalog.
func connString(serverAddr string) string {
	if strings.Contains(serverAddr, "://") {
		return serverAddr
	}
	return "postgres://" + serverAddr + "/postgres"
}
