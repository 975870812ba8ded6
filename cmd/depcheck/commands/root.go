package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dephub/dephub-requirements/internal/config"
	"github.com/dephub/dephub-requirements/internal/telemetry"
)

// ErrRequirementsMissing is returned when a checked requirement is not met.
var ErrRequirementsMissing = errors.New("requirements are not satisfied")

// app holds the state shared by every command.
type app struct {
	configPath string
	output     string
	cfg        *config.Config
	logger     zerolog.Logger
	logCloser  io.Closer
}

func newApp() *app {
	return &app{logger: zerolog.Nop()}
}

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	a := newApp()
	defer a.close()

	rootCmd := newRootCommand(a, version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(a *app, version, commit, buildDate string) *cobra.Command {

	rootCmd := &cobra.Command{
		Use:   "depcheck",
		Short: "depcheck - component requirements checker",
		Long: `depcheck checks the requirements declared by components (plugins) against
the host platform version, the runtime version and the other components.

Requirements are read from the 'require' object of plugin.json or composer.json:

  {"require": {"host": ">=3.0.0,<4.0.0", "Goals": "^2.1"}}`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "", "output format (text, json, yaml)")

	// Add subcommands
	rootCmd.AddCommand(newCheckCommand(a))
	rootCmd.AddCommand(newMatchCommand(a))
	rootCmd.AddCommand(newActiveCommand(a))

	return rootCmd
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = a.output
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, closer, err := telemetry.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("unable to create logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.logCloser = closer
	return nil
}

// close releases the log output opened by setup.
func (a *app) close() {
	if a.logCloser == nil {
		return
	}
	if err := a.logCloser.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "unable to close log output: %v\n", err)
	}
	a.logCloser = nil
	a.logger = zerolog.Nop()
}
