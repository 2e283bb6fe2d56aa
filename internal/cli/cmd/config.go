package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/berrythewa/cliprecall/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cliprecall configuration",
		Long: `Manage cliprecall configuration:
  • Initialize a configuration file with defaults
  • Show the effective configuration
  • Print the platform paths in use
  • Validate a configuration file`,
	}

	cmd.AddCommand(
		newConfigInitCmd(),
		newConfigShowCmd(),
		newConfigPathCmd(),
		newConfigValidateCmd(),
	)
	return cmd
}

// activeConfigPath is the --config flag or the platform default.
func activeConfigPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if cfg != nil && cfg.Paths != nil {
		return cfg.Paths.ConfigFile, nil
	}
	paths, err := config.GetConfigPaths()
	if err != nil {
		return "", fmt.Errorf("failed to get active config path: %w", err)
	}
	return paths.ConfigFile, nil
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := activeConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("configuration already exists at %s\nUse --force to overwrite or 'cliprecall config show' to view it", configPath)
			}

			def := config.DefaultConfig()
			GetZapLogger().Info("Initializing configuration", zap.String("config_path", configPath))
			if err := def.Save(configPath); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration initialized at: %s\n", configPath)
			fmt.Fprintf(out, "✓ Archive database: %s\n", def.DBPath())
			fmt.Fprintln(out, "\nTo start the daemon, run: cliprecall run")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var outFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after defaults, the config file,
CLIPRECALL_* environment variables and flags have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if useJSON {
				outFormat = "json"
			}
			switch outFormat {
			case "json":
				return printJSON(out, cfg)
			case "yaml":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				_, err = out.Write(data)
				return err
			default:
				return fmt.Errorf("unsupported format: %s", outFormat)
			}
		},
	}
	cmd.Flags().StringVarP(&outFormat, "format", "f", "yaml", "output format (yaml or json)")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the files and directories in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := activeConfigPath()
			if err != nil {
				return err
			}
			paths := map[string]string{
				"config":  configPath,
				"socket":  cfg.SocketPath(),
				"archive": cfg.DBPath(),
			}
			if useJSON {
				return printJSON(cmd.OutOrStdout(), paths)
			}
			for _, key := range []string{"config", "socket", "archive"} {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", key+":", paths[key])
			}
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := activeConfigPath()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				configPath = args[0]
			}
			if _, err := os.Stat(configPath); err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}
			if _, err := config.Load(configPath); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: %s\n", configPath)
			return nil
		},
	}
}
