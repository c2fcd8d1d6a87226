package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edp1096/opspice/internal/config"
	"github.com/edp1096/opspice/internal/logging"
	"github.com/edp1096/opspice/pkg/matrix"
	"github.com/edp1096/opspice/pkg/netlist"
	"github.com/edp1096/opspice/pkg/simulator"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spice",
		Short: "DC operating-point solver for SPICE netlists",
		Long: `spice parses SPICE-style netlists of resistors, capacitors, inductors and
independent sources and computes their DC operating point with modified
nodal analysis: node voltages, voltage drops and branch currents.

Capacitors are open and inductors are shorts at DC. Settings are read from
--config, ./.opspice.yaml or $XDG_CONFIG_HOME/opspice/config.yaml; flags
override them.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("config", "c", "", "Path to the configuration file")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("solver", config.DefaultSolver, "Linear solver backend (dense or sparse)")
	cmd.PersistentFlags().Duration("timeout", config.DefaultTimeout, "Time limit per netlist (0 disables)")
	cmd.PersistentFlags().Float64("gmin", 0, "Conductance added from every node to ground")
	cmd.PersistentFlags().Bool("title-line", false, "Treat the first netlist line as the title")

	cmd.AddCommand(NewOpCmd())
	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildConfig loads the configuration file and applies the flags the user
// set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed("verbose") {
		if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("solver") {
		if cfg.Solver, err = flags.GetString("solver"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("gmin") {
		if cfg.Gmin, err = flags.GetFloat64("gmin"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("title-line") {
		if cfg.FirstLineTitle, err = flags.GetBool("title-line"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("format") != nil && flags.Changed("format") {
		if cfg.Format, err = flags.GetString("format"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("precision") != nil && flags.Changed("precision") {
		if cfg.Precision, err = flags.GetInt("precision"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("concurrency") != nil && flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup returns the configuration, a logger and a simulator for cmd.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, *simulator.Simulator, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return nil, nil, nil, err
	}

	solver, err := matrix.NewSolver(cfg.Solver)
	if err != nil {
		return nil, nil, nil, err
	}

	sim, err := simulator.New(
		simulator.WithLogger(logger),
		simulator.WithSolver(solver),
		simulator.WithGmin(cfg.Gmin),
		simulator.WithTimeout(cfg.Timeout),
		simulator.WithMaxUnknowns(cfg.MaxUnknowns),
		simulator.WithCacheSize(cfg.CacheSize),
		simulator.WithConcurrency(cfg.Concurrency),
		simulator.WithPrecision(cfg.Precision),
		simulator.WithParseOptions(netlist.Options{FirstLineTitle: cfg.FirstLineTitle}),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	logger.Debug("configuration loaded",
		zap.String("solver", cfg.Solver),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("max_unknowns", cfg.MaxUnknowns),
		zap.Int("cache_size", cfg.CacheSize),
		zap.Float64("gmin", cfg.Gmin))

	return cfg, logger, sim, nil
}

// readNetlist reads a file, or stdin for "-".
func readNetlist(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // User-provided netlist path is intentional
	if err != nil {
		return "", fmt.Errorf("reading netlist file: %w", err)
	}
	return string(data), nil
}
