package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/bcnelson/chain-addressbook/internal/config"
	"github.com/bcnelson/chain-addressbook/internal/logging"
	"github.com/bcnelson/chain-addressbook/internal/merger"
	"github.com/bcnelson/chain-addressbook/internal/output"
	"github.com/bcnelson/chain-addressbook/internal/service"
	"github.com/bcnelson/chain-addressbook/internal/storage"
	"github.com/bcnelson/chain-addressbook/internal/storage/sql"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app holds state shared by all subcommands for one invocation.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	// flag overrides
	root     string
	out      string
	networks string
	indent   bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "addressbook",
		Short: "Build the per-chain address book",
		Long: `addressbook merges the address-list files found under
<root>/<chainId>/*Addresses.json into one JSON document with a record per
network, and writes it to the output path.

Settings come from the environment (ADDRESS_ROOT_DIR, OUTPUT_PATH, ...) and
can be overridden with flags. Running without a subcommand performs a build.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.root, "root", "", "Address root directory (overrides ADDRESS_ROOT_DIR)")
	flags.StringVarP(&a.out, "out", "o", "", "Output file (overrides OUTPUT_PATH)")
	flags.StringVar(&a.networks, "networks", "", "Networks file, HuJSON or YAML (overrides NETWORKS_FILE)")
	flags.BoolVar(&a.indent, "indent", false, "Pretty-print the output (overrides OUTPUT_INDENT)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newBuildCmd(a),
		newCheckCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}

// init loads configuration, applies flag overrides and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Paths.AddressRootDir = a.root
	}
	if flags.Changed("out") {
		cfg.Paths.OutputPath = a.out
	}
	if flags.Changed("networks") {
		cfg.Paths.NetworksFile = a.networks
	}
	if flags.Changed("indent") {
		cfg.Paths.OutputIndent = a.indent
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// newService wires the build service. The returned close function releases
// the history store, if any.
func (a *app) newService() (*service.BuildService, func() error, error) {
	var store storage.Storage
	closeFn := func() error { return nil }

	if a.cfg.HistoryEnabled() {
		s, err := sql.New(a.cfg.History.Driver, a.cfg.History.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open build history: %w", err)
		}
		store = s
		closeFn = s.Close
		a.logger.Debug("Build history enabled", zap.String("driver", a.cfg.History.Driver))
	}

	svc := service.NewBuildService(
		merger.NewDir(a.cfg.Paths.AddressRootDir, a.logger.Named("merger")),
		output.NewFileSink(a.cfg.Paths.OutputPath, a.cfg.Paths.OutputIndent, a.logger.Named("output")),
		store,
		a.cfg.Paths.NetworksFile,
		a.cfg.Paths.OutputPath,
		a.logger.Named("service"),
	)
	return svc, closeFn, nil
}

// withService runs fn with a wired service and closes it afterwards.
func (a *app) withService(fn func(*service.BuildService) error) (err error) {
	svc, closeFn, err := a.newService()
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closeFn())
	}()
	return fn(svc)
}
