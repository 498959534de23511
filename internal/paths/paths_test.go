package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withPlatform overrides the platform lookups for the duration of t.
func withPlatform(t *testing.T, goos, home, configDir string) {
	t.Helper()
	prev := platformDir
	platformDir.goos = goos
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return configDir, nil }
	t.Cleanup(func() { platformDir = prev })
}

func TestDefaultConfigDir(t *testing.T) {
	tests := []struct {
		name string
		goos string
		xdg  string
		want string
	}{
		{name: "linux xdg", goos: "linux", xdg: "/xdg", want: "/xdg/catalogue"},
		{name: "linux home", goos: "linux", want: "/home/u/.config/catalogue"},
		{name: "darwin", goos: "darwin", xdg: "/ignored", want: "/Users/u/Library/Application Support/catalogue"},
		{name: "windows", goos: "windows", want: "/Users/u/Library/Application Support/catalogue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withPlatform(t, tt.goos, "/home/u", "/Users/u/Library/Application Support")
			t.Setenv("XDG_CONFIG_HOME", tt.xdg)

			got, err := DefaultConfigDir()
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestDefaultConfigDirHomeError(t *testing.T) {
	prev := platformDir
	t.Cleanup(func() { platformDir = prev })
	platformDir.goos = "linux"
	platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
	t.Setenv("XDG_CONFIG_HOME", "")

	_, err := DefaultConfigDir()
	assert.EqualError(t, err, "no home")
}

func TestResolveConfigDir(t *testing.T) {
	withPlatform(t, "linux", "/home/u", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	tmp := t.TempDir()
	flagDir := filepath.Join(tmp, "flag")
	envDir := filepath.Join(tmp, "env")

	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(EnvConfigDir, envDir)
		got, err := ResolveConfigDir(flagDir)
		require.NoError(t, err)
		assert.Equal(t, flagDir, got)
	})
	t.Run("env over default", func(t *testing.T) {
		t.Setenv(EnvConfigDir, envDir)
		got, err := ResolveConfigDir("")
		require.NoError(t, err)
		assert.Equal(t, envDir, got)
	})
	t.Run("platform default", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "")
		got, err := ResolveConfigDir("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/home/u", ".config", AppName), got)
	})
}

func TestResolveDataDir(t *testing.T) {
	tmp := t.TempDir()
	flagDir := filepath.Join(tmp, "flag")
	cfgDir := filepath.Join(tmp, "cfg")
	envDir := filepath.Join(tmp, "env")
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name   string
		flag   string
		config string
		env    string
		want   string
	}{
		{name: "flag wins", flag: flagDir, config: cfgDir, env: envDir, want: flagDir},
		{name: "config over env", config: cfgDir, env: envDir, want: cfgDir},
		{name: "env over default", env: envDir, want: envDir},
		{name: "cwd default", want: filepath.Join(cwd, DefaultDataDirName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.env)
			got, err := ResolveDataDir(tt.flag, tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDirRelative(t *testing.T) {
	t.Setenv(EnvDataDir, "")
	got, err := ResolveDataDir("rel/dir", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "dir", filepath.Base(got))
}
