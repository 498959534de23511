package types

import (
	"errors"
	"time"
)

// Config holds the backend connection and snapshot store parameters.
type Config struct {
	Endpoint  string        `json:"endpoint" yaml:"endpoint"`
	Workspace string        `json:"workspace" yaml:"workspace"`
	Token     string        `json:"-" yaml:"token,omitempty"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
	Store     StoreConfig   `json:"store" yaml:"store"`
}

// StoreConfig selects the snapshot store driver.
type StoreConfig struct {
	Driver  string `json:"driver" yaml:"driver"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
	DSN     string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// Supported snapshot store drivers.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config validation errors.
var (
	ErrEndpointEmpty  = errors.New("backend endpoint must not be empty")
	ErrWorkspaceEmpty = errors.New("workspace must not be empty")
	ErrTimeoutInvalid = errors.New("timeout must not be negative")
	ErrDriverEmpty    = errors.New("store driver must not be empty")
	ErrDriverUnknown  = errors.New("unknown store driver")
	ErrDSNEmpty       = errors.New("postgres store requires a dsn")
)

// knownDrivers lists the drivers that Validate accepts.
var knownDrivers = map[string]bool{
	StoreSQLite:   true,
	StorePostgres: true,
}

// Validate checks that the StoreConfig is well-formed.
func (c StoreConfig) Validate() error {
	if c.Driver == "" {
		return ErrDriverEmpty
	}
	if !knownDrivers[c.Driver] {
		return ErrDriverUnknown
	}
	if c.Driver == StorePostgres && c.DSN == "" {
		return ErrDSNEmpty
	}
	return nil
}

// Validate checks that the Config is well-formed. The store section is
// validated separately because commands that only talk to the backend do not
// need one.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return ErrEndpointEmpty
	}
	if c.Workspace == "" {
		return ErrWorkspaceEmpty
	}
	if c.Timeout < 0 {
		return ErrTimeoutInvalid
	}
	return nil
}
