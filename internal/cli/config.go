package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	s3export "github.com/mesh-intelligence/catalogue/internal/export/s3"
	"github.com/mesh-intelligence/catalogue/internal/logging"
	"github.com/mesh-intelligence/catalogue/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "CATALOGUE"

	cfgKeyEndpoint        = "backend.endpoint"
	cfgKeyWorkspace       = "backend.workspace"
	cfgKeyToken           = "backend.token"
	cfgKeyTimeout         = "backend.timeout"
	cfgKeyStoreDriver     = "store.driver"
	cfgKeyStoreDSN        = "store.dsn"
	cfgKeyDataDir         = "data_dir"
	cfgKeyLogLevel        = "log.level"
	cfgKeyMetricsTextfile = "metrics.textfile"
	cfgKeyS3Bucket        = "export.s3.bucket"
	cfgKeyS3Region        = "export.s3.region"
	cfgKeyS3Endpoint      = "export.s3.endpoint"
	cfgKeyS3Prefix        = "export.s3.prefix"
	cfgKeyS3PathStyle     = "export.s3.path_style"

	defaultTimeout = 60 * time.Second
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# catalogue configuration
# Every key can be overridden by an environment variable, for example
# CATALOGUE_BACKEND_ENDPOINT or CATALOGUE_STORE_DRIVER.

backend:
  # endpoint: https://analytics.example.com
  # workspace: my-workspace
  # token is better supplied as CATALOGUE_BACKEND_TOKEN
  timeout: 60s

store:
  driver: sqlite
  # dsn: postgres://user@localhost/catalogue?sslmode=disable

# data_dir:

log:
  level: info

# metrics:
#   textfile: /var/lib/node_exporter/catalogue.prom

# export:
#   s3:
#     bucket: catalogue-snapshots
#     region: us-east-1
#     prefix: snapshots
`

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. Environment variables override file values.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper) {
	v.SetDefault(cfgKeyEndpoint, "")
	v.SetDefault(cfgKeyWorkspace, "")
	v.SetDefault(cfgKeyToken, "")
	v.SetDefault(cfgKeyTimeout, defaultTimeout)
	v.SetDefault(cfgKeyStoreDriver, types.StoreSQLite)
	v.SetDefault(cfgKeyStoreDSN, "")
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyLogLevel, logging.DefaultLevel)
	v.SetDefault(cfgKeyMetricsTextfile, "")
	v.SetDefault(cfgKeyS3Bucket, "")
	v.SetDefault(cfgKeyS3Region, "")
	v.SetDefault(cfgKeyS3Endpoint, "")
	v.SetDefault(cfgKeyS3Prefix, "")
	v.SetDefault(cfgKeyS3PathStyle, false)
}

// bindFlags lets the global --endpoint and --workspace flags override the
// config when they are set.
func bindFlags(v *viper.Viper, root *cobra.Command) error {
	for key, name := range map[string]string{
		cfgKeyEndpoint:  "endpoint",
		cfgKeyWorkspace: "workspace",
	} {
		if err := v.BindPFlag(key, root.PersistentFlags().Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// ensureDefaultConfigFile writes defaultConfigYAML unless config.yaml exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// backendConfig returns the validated backend and store settings.
func (a *app) backendConfig() (types.Config, error) {
	dataDir, err := a.dataDir()
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg := types.Config{
		Endpoint:  a.v.GetString(cfgKeyEndpoint),
		Workspace: a.v.GetString(cfgKeyWorkspace),
		Token:     a.v.GetString(cfgKeyToken),
		Timeout:   a.v.GetDuration(cfgKeyTimeout),
		Store:     a.storeConfig(dataDir),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("backend config: %w", err)
	}
	return cfg, nil
}

func (a *app) storeConfig(dataDir string) types.StoreConfig {
	return types.StoreConfig{
		Driver:  a.v.GetString(cfgKeyStoreDriver),
		DataDir: dataDir,
		DSN:     a.v.GetString(cfgKeyStoreDSN),
	}
}

// exportConfig returns the S3 export target. Credentials come from the
// standard AWS environment.
func (a *app) exportConfig() s3export.Config {
	return s3export.Config{
		Bucket:    a.v.GetString(cfgKeyS3Bucket),
		Region:    a.v.GetString(cfgKeyS3Region),
		Endpoint:  a.v.GetString(cfgKeyS3Endpoint),
		Prefix:    a.v.GetString(cfgKeyS3Prefix),
		PathStyle: a.v.GetBool(cfgKeyS3PathStyle),
	}
}
