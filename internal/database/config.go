package database

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConnConfig names the SQL driver and data source for one connection.
type ConnConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Config holds the connection configuration.
type Config struct {
	Driver         string
	DSN            string
	MaxOpenConns   int
	MaxIdleConns   int
	ConnMaxIdleSec int
	ConnMaxLifeSec int
	// Conns maps connection names to their configuration for multi-
	// connection mode. The "default" name falls back to Driver/DSN.
	Conns map[string]ConnConfig
}

// NewConfig creates a new Config from environment variables.
func NewConfig() *Config {
	cfg := &Config{
		Driver: os.Getenv("SQLSTASH_DRIVER"),
		DSN:    os.Getenv("SQLSTASH_DSN"),
	}
	if cfg.Driver == "" {
		cfg.Driver = "libsql"
	}
	if cfg.DSN == "" {
		cfg.DSN = "file:./sqlstash.db"
	}
	cfg.MaxOpenConns = envInt("SQLSTASH_MAX_OPEN_CONNS")
	cfg.MaxIdleConns = envInt("SQLSTASH_MAX_IDLE_CONNS")
	cfg.ConnMaxIdleSec = envInt("SQLSTASH_CONN_MAX_IDLE_SEC")
	cfg.ConnMaxLifeSec = envInt("SQLSTASH_CONN_MAX_LIFE_SEC")

	if path := os.Getenv("SQLSTASH_CONNS_FILE"); path != "" {
		if err := cfg.LoadConnsFile(path); err != nil {
			// Keep the env-derived config usable; callers relying on the
			// file will fail on lookup with a clear error.
			fmt.Fprintf(os.Stderr, "sqlstash: %v\n", err)
		}
	}
	return cfg
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

type connsFile struct {
	Connections map[string]ConnConfig `yaml:"connections"`
}

// LoadConnsFile reads named connection definitions from a YAML file:
//
//	connections:
//	  default: {driver: libsql, dsn: "file:./app.db"}
//	  audit:   {driver: sqlite3, dsn: "./audit.db"}
func (c *Config) LoadConnsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read connections file: %w", err)
	}
	return c.LoadConns(data)
}

// LoadConns parses YAML connection definitions from memory.
func (c *Config) LoadConns(data []byte) error {
	var f connsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse connections file: %w", err)
	}
	if c.Conns == nil {
		c.Conns = make(map[string]ConnConfig, len(f.Connections))
	}
	for name, cc := range f.Connections {
		if cc.Driver == "" || cc.DSN == "" {
			return fmt.Errorf("connection %q: driver and dsn are required", name)
		}
		c.Conns[name] = cc
	}
	return nil
}

// resolve returns the driver name and DSN for a named connection.
func (c *Config) resolve(name string) (ConnConfig, error) {
	if cc, ok := c.Conns[name]; ok {
		return cc, nil
	}
	if name == DefaultConn {
		return ConnConfig{Driver: c.Driver, DSN: c.DSN}, nil
	}
	return ConnConfig{}, fmt.Errorf("unknown connection %q", name)
}
