package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty endpoint returns ErrEndpointEmpty",
			config:  Config{Workspace: "ws1"},
			wantErr: ErrEndpointEmpty,
		},
		{
			name:    "empty workspace returns ErrWorkspaceEmpty",
			config:  Config{Endpoint: "https://secure.example.com"},
			wantErr: ErrWorkspaceEmpty,
		},
		{
			name:    "negative timeout returns ErrTimeoutInvalid",
			config:  Config{Endpoint: "https://secure.example.com", Workspace: "ws1", Timeout: -time.Second},
			wantErr: ErrTimeoutInvalid,
		},
		{
			name:    "zero timeout is valid",
			config:  Config{Endpoint: "https://secure.example.com", Workspace: "ws1"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStoreConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  StoreConfig
		wantErr error
	}{
		{
			name:    "empty driver returns ErrDriverEmpty",
			config:  StoreConfig{DataDir: "/tmp/data"},
			wantErr: ErrDriverEmpty,
		},
		{
			name:    "unknown driver returns ErrDriverUnknown",
			config:  StoreConfig{Driver: "mysql"},
			wantErr: ErrDriverUnknown,
		},
		{
			name:    "postgres without dsn returns ErrDSNEmpty",
			config:  StoreConfig{Driver: StorePostgres},
			wantErr: ErrDSNEmpty,
		},
		{
			name:   "valid postgres config",
			config: StoreConfig{Driver: StorePostgres, DSN: "postgres://localhost/catalogue"},
		},
		{
			name:   "sqlite with empty DataDir is valid at config level",
			config: StoreConfig{Driver: StoreSQLite},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
