package storage

import (
	"errors"
	"fmt"
	"net/url"
)

// Package storage owns durable persistence: the Postgres repository holding
// tracked products and their append-only price history, plus a small
// bbolt-backed throttle cache used by the refresh loop.

// ErrDuplicateURL reports that the product URL is already tracked. It is an
// expected outcome, raised by the store's unique constraint rather than any
// read-then-write check, so two concurrent trackers of the same URL cannot
// both insert.
var ErrDuplicateURL = errors.New("product url already tracked")

// Config carries the explicit Postgres connection settings. It is built once
// at startup and passed to Open; the resulting pool lives for the process
// lifetime and is released at shutdown.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	PoolSize int32
}

// DSN renders a URL-encoded postgres connection string.
func (c Config) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	q := u.Query()
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	if c.PoolSize > 0 {
		q.Set("pool_max_conns", fmt.Sprintf("%d", c.PoolSize))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
