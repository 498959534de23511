// Package cli implements the catalogue command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/catalogue/internal/bear"
	"github.com/mesh-intelligence/catalogue/internal/logging"
	"github.com/mesh-intelligence/catalogue/internal/paths"
	"github.com/mesh-intelligence/catalogue/pkg/catalogue"
	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
	endpoint  string
	workspace string
}

// app is the state shared by every command of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	v         *viper.Viper
	logger    *zap.Logger
	registry  *prometheus.Registry
	metrics   *bear.Metrics
}

// NewRootCmd creates the top-level "catalogue" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:     "catalogue",
		Short:   "Load workspace catalogs and resolve item availability",
		Long:    "Catalogue loads the metadata catalog of an analytics workspace, keeps it as a\nsnapshot, and answers which catalog items can be combined with a set of\nattributes and measures.",
		Version: catalogue.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "snapshot directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&a.flags.endpoint, "endpoint", "", "backend endpoint (overrides "+cfgKeyEndpoint+")")
	pf.StringVar(&a.flags.workspace, "workspace", "", "workspace id (overrides "+cfgKeyWorkspace+")")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newLoadCmd(a))
	root.AddCommand(newAvailableCmd(a))
	root.AddCommand(newSnapshotsCmd(a))
	root.AddCommand(newExportCmd(a))

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "catalogue:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// exitCode maps input and configuration problems to exitUserError and
// everything else to exitSysError.
func exitCode(err error) int {
	for _, userErr := range []error{
		types.ErrInvalidInput,
		types.ErrSnapshotNotFound,
		types.ErrEndpointEmpty,
		types.ErrWorkspaceEmpty,
		types.ErrTimeoutInvalid,
		types.ErrDriverEmpty,
		types.ErrDriverUnknown,
		types.ErrDSNEmpty,
		errUsage,
	} {
		if errors.Is(err, userErr) {
			return exitUserError
		}
	}
	return exitSysError
}

// errUsage marks invalid flag combinations.
var errUsage = errors.New("usage")

// setup resolves the config directory, loads config.yaml and builds the
// logger and metrics registry.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Root()); err != nil {
		return err
	}

	level := v.GetString(cfgKeyLogLevel)
	if a.flags.verbose {
		level = "debug"
	}
	logger, err := logging.New(level)
	if err != nil {
		return err
	}

	a.configDir = configDir
	a.v = v
	a.logger = logger
	a.registry = prometheus.NewRegistry()
	a.metrics = bear.NewMetrics(a.registry)
	return nil
}

// teardown writes the metrics textfile when configured and flushes the logger.
func (a *app) teardown() error {
	if a.v == nil {
		return nil
	}
	defer func() { _ = a.logger.Sync() }()

	path := a.v.GetString(cfgKeyMetricsTextfile)
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	a.logger.Debug("metrics written", zap.String("path", path))
	return nil
}

// dataDir resolves the snapshot directory: flag > config > env > default.
func (a *app) dataDir() (string, error) {
	return paths.ResolveDataDir(a.flags.dataDir, a.v.GetString(cfgKeyDataDir))
}
