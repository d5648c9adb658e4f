package sqlstash

import (
	"github.com/sqlstash/sqlstash/internal/database"
)

// Config exposes a stable wrapper for connection configuration in package
// mode. Fields map directly to the internal database config.
type Config struct {
	Driver         string
	DSN            string
	ConnsFile      string
	MaxOpenConns   int
	MaxIdleConns   int
	ConnMaxIdleSec int
	ConnMaxLifeSec int
}

func (c *Config) toInternal() (*database.Config, error) {
	cfg := &database.Config{
		Driver:         c.Driver,
		DSN:            c.DSN,
		MaxOpenConns:   c.MaxOpenConns,
		MaxIdleConns:   c.MaxIdleConns,
		ConnMaxIdleSec: c.ConnMaxIdleSec,
		ConnMaxLifeSec: c.ConnMaxLifeSec,
	}
	if cfg.Driver == "" {
		cfg.Driver = "libsql"
	}
	if c.ConnsFile != "" {
		if err := cfg.LoadConnsFile(c.ConnsFile); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
