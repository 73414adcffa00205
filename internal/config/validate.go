package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration invariants that tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.Database.MaxConns < 1 {
		errs = append(errs, fmt.Errorf("database.max_conns %d must be >= 1", c.Database.MaxConns))
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, fmt.Errorf("database.min_conns %d must be within [0, max_conns]", c.Database.MinConns))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		errs = append(errs, fmt.Errorf("log.level %q unknown", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "":
	default:
		errs = append(errs, fmt.Errorf("log.format %q unknown", c.Log.Format))
	}

	return errors.Join(errs...)
}

// UsingFallbackSecret reports whether the snapshot cache will run on the
// fixed development key.
func (c *Config) UsingFallbackSecret() bool {
	return c.Binder.SnapshotCache && c.Binder.SecretKey == ""
}
