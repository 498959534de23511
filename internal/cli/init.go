package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configFile is the structure init writes to config.yaml.
type configFile struct {
	Backend backendSection `yaml:"backend"`
	Store   storeSection   `yaml:"store"`
	DataDir string         `yaml:"data_dir,omitempty"`
	Log     logSection     `yaml:"log"`
}

type backendSection struct {
	Endpoint  string `yaml:"endpoint,omitempty"`
	Workspace string `yaml:"workspace,omitempty"`
	Timeout   string `yaml:"timeout,omitempty"`
}

type storeSection struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"`
}

type logSection struct {
	Level string `yaml:"level"`
}

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and snapshot storage",
		Long: `Write config.yaml from the current settings (flags, environment and
defaults) and initialize the snapshot store. An edited config.yaml is kept
unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(a.configDir, configFileExt)
			written, err := a.writeConfig(path, force)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			s, err := a.openStore(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize storage: %w", err)
			}
			if err := s.Close(); err != nil {
				return fmt.Errorf("finalize storage: %w", err)
			}

			dataDir, err := a.dataDir()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Catalogue initialized successfully")
			fmt.Fprintln(out, "  config:", path)
			if !written {
				fmt.Fprintln(out, "          (kept existing file)")
			}
			fmt.Fprintln(out, "  data:  ", dataDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an edited config.yaml")
	return cmd
}

// writeConfig writes the effective settings to path when the file is missing,
// still holds the generated default, or force is set. Reports whether it wrote.
func (a *app) writeConfig(path string, force bool) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	if err == nil && !force && !bytes.Equal(existing, []byte(defaultConfigYAML)) {
		return false, nil
	}

	cfg := configFile{
		Backend: backendSection{
			Endpoint:  a.v.GetString(cfgKeyEndpoint),
			Workspace: a.v.GetString(cfgKeyWorkspace),
			Timeout:   a.v.GetDuration(cfgKeyTimeout).String(),
		},
		Store: storeSection{
			Driver: a.v.GetString(cfgKeyStoreDriver),
			DSN:    a.v.GetString(cfgKeyStoreDSN),
		},
		DataDir: a.flags.dataDir,
		Log:     logSection{Level: a.v.GetString(cfgKeyLogLevel)},
	}
	if cfg.DataDir == "" {
		cfg.DataDir = a.v.GetString(cfgKeyDataDir)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	return true, os.WriteFile(path, data, 0o644)
}
