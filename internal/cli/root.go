package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modsync-tools/modsync/internal/config"
	"github.com/modsync-tools/modsync/internal/logging"
	"github.com/modsync-tools/modsync/internal/sync"
	"github.com/modsync-tools/modsync/internal/sync/history"
	"github.com/modsync-tools/modsync/internal/types"
	"github.com/modsync-tools/modsync/internal/utils"
	"github.com/modsync-tools/modsync/pkg/version"
)

var (
	globalFlags types.GlobalFlags
	logger      logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "modsync",
	Short: "Modpack sync - sync CurseForge instance folders into a game directory",
	Long: `modsync diffs a modpack's instance folder against your game directory
and applies the additions, updates, and removals needed to bring them in
sync, with per-file confirmation, optional backups, and persisted history.

All commands support JSON output for automation and scripting.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateGlobalFlags(); err != nil {
			return err
		}

		if globalFlags.Config != "" {
			config.SetPath(globalFlags.Config)
		}
		// A broken configuration falls back to INFO here; the command
		// itself surfaces the load error.
		cfg, _ := config.Load()

		logConfig := logging.LogConfig{
			Level:           resolveLogLevel(cfg, globalFlags),
			OutputFile:      globalFlags.LogFile,
			EnableConsole:   !globalFlags.Quiet,
			EnableColor:     true,
			EnableTimestamp: true,
		}
		if globalFlags.OutputFormat == types.OutputFormatJSON && !globalFlags.Verbose && !globalFlags.Debug {
			logConfig.EnableConsole = false
		}

		var err error
		logger, err = logging.NewLogger(logConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar((*string)(&globalFlags.OutputFormat), "output", "table", "Output format (json, table)")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Config, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.DryRun, "dry-run", false, "Show what would be done without making changes")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Yes, "yes", "y", false, "Answer yes to all prompts")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.JSON, "json", false, "Output in JSON format (alias for --output json)")

	rootCmd.AddCommand(versionCmd)
}

func validateGlobalFlags() error {
	if globalFlags.JSON {
		globalFlags.OutputFormat = types.OutputFormatJSON
	}

	if globalFlags.OutputFormat != types.OutputFormatJSON && globalFlags.OutputFormat != types.OutputFormatTable {
		return fmt.Errorf("invalid output format: %s", globalFlags.OutputFormat)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(utils.ExitUnknown)
	}
	return nil
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() types.GlobalFlags {
	return globalFlags
}

// resolveLogLevel picks the logger level: --verbose and --debug force DEBUG,
// otherwise the configured level applies, falling back to INFO when no
// configuration could be loaded.
func resolveLogLevel(cfg *config.Config, flags types.GlobalFlags) logging.LogLevel {
	if flags.Verbose || flags.Debug {
		return logging.DEBUG
	}
	if cfg != nil {
		return logging.ParseLevel(cfg.LogLevel)
	}
	return logging.INFO
}

// newEngine loads configuration, opens the history store, and wires the
// sync engine. The caller owns the returned engine and must Close it.
func newEngine() (*sync.Engine, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	historyPath, err := cfg.HistoryPath()
	if err != nil {
		return nil, nil, err
	}
	db, err := history.Open(historyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history store: %w", err)
	}

	return sync.NewEngine(cfg, db, logger), cfg, nil
}
