// =============================================================================
// PAXML Exporter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (paxml)
//   ├── serveCmd      (paxml serve)
//   ├── exportCmd     (paxml export)
//   ├── importCmd     (paxml import)
//   ├── transitionCmd (paxml transition)
//   ├── validateCmd   (paxml validate)
//   └── versionCmd    (paxml version)
//
// SHARED SETUP:
//   Commands that touch data call loadApp, which loads the configuration,
//   builds the logger and opens the configured store.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/paxml-exporter/internal/config"
	"github.com/ginjaninja78/paxml-exporter/internal/converter"
	"github.com/ginjaninja78/paxml-exporter/internal/logging"
	"github.com/ginjaninja78/paxml-exporter/internal/store"
	"github.com/ginjaninja78/paxml-exporter/internal/store/gormstore"
	"github.com/ginjaninja78/paxml-exporter/internal/store/jsonstore"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "paxml",
	Short: "PAXML Exporter - Export approved time deviations and leave to payroll",
	Long: `PAXML Exporter turns approved time deviations, leave requests and
schedules into PAXML 2.2 documents for the payroll system.

Key Features:
  - Validation with a hard gate: no document is produced while errors remain
  - Time code mapping to the payroll vocabulary
  - CSV and XLSX import into a SQL database or a JSON file
  - HTTP API with bearer-token roles

Example Usage:
  paxml import --deviations ./input/deviations.csv
  paxml export --from 2024-05-01 --to 2024-05-31
  paxml serve --config ./config.yaml`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// app bundles what the data commands need.
type app struct {
	cfg    *config.MainConfig
	logger *logrus.Logger
	store  store.Store

	logCloser io.Closer
}

// loadApp loads configuration, logging and the store. The caller must Close it.
func loadApp() (*app, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg.Database, logger)
	if err != nil {
		closer.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: st, logCloser: closer}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.WithError(err).Warn("Failed to close store")
	}
	a.logCloser.Close()
}

// newExporter builds the exporter from the configured vocabulary and policy.
func (a *app) newExporter() (*converter.Exporter, error) {
	vocabulary, err := a.cfg.ResolveVocabulary()
	if err != nil {
		return nil, err
	}
	return converter.NewExporter(vocabulary,
		converter.WithLogger(a.logger),
		converter.WithPolicy(a.cfg.Schedule),
	)
}

// openStore selects the backend from database.driver.
func openStore(cfg config.DatabaseConfig, logger *logrus.Logger) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverJSON:
		st, err := jsonstore.Open(cfg.JSONPath)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.JSONPath).Info("Using JSON file store")
		return st, nil
	default:
		st, err := gormstore.Open(cfg, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}
