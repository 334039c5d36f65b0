package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/modsync-tools/modsync/internal/config"
	"github.com/modsync-tools/modsync/internal/utils"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Commands for managing modsync configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Use 'config show' to see available keys",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to defaults",
	RunE:  runConfigReset,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	cfg, err := config.Load()
	if err != nil {
		return out.Fail("config.show", utils.NewCLIError(utils.ErrCodeConfigInvalid, err.Error()).Build())
	}

	return out.WriteSuccess("config.show", cfg)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	key := args[0]
	value := args[1]

	cfg, err := config.Load()
	if err != nil {
		return out.Fail("config.set", utils.NewCLIError(utils.ErrCodeConfigInvalid, err.Error()).Build())
	}

	switch strings.ToLower(key) {
	case "instancespath", "instances":
		cfg.InstancesPath = value
	case "gamepath", "game":
		cfg.GamePath = value
	case "backupdir":
		cfg.BackupDir = value
	case "createbackups":
		cfg.CreateBackups = parseBoolArg(value)
	case "autoconfirmupdates":
		cfg.AutoConfirmUpdates = parseBoolArg(value)
	case "autoconfirmremovals":
		cfg.AutoConfirmRemovals = parseBoolArg(value)
	case "loglevel":
		cfg.LogLevel = value
	default:
		return out.Fail("config.set", utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"Unknown configuration key: "+key).Build())
	}

	if err := cfg.Validate(); err != nil {
		return out.Fail("config.set", utils.NewCLIError(utils.ErrCodeConfigInvalid, err.Error()).Build())
	}
	if err := cfg.Save(); err != nil {
		return out.Fail("config.set", utils.NewCLIError(utils.ErrCodeConfigUnwritable, err.Error()).Build())
	}

	return out.WriteSuccess("config.set", cfg)
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	cfg := config.DefaultConfig()
	if err := cfg.Save(); err != nil {
		return out.Fail("config.reset", utils.NewCLIError(utils.ErrCodeConfigUnwritable, err.Error()).Build())
	}

	return out.WriteSuccess("config.reset", cfg)
}

func parseBoolArg(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
