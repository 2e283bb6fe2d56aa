package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/berrythewa/cliprecall/internal/config"
)

// flagBindings maps persistent flags onto config keys.
var flagBindings = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-file":   "log.file",
	"socket":     "ipc.socket_path",
	"backend":    "monitor.backend",
}

// NewRootCmd builds the command tree. Each call gets fresh flag state.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "cliprecall",
		Short: "Clipboard history monitor",
		Long: `cliprecall watches the system clipboard and keeps a bounded,
deduplicated history of text, links and images.

Start the monitor with 'cliprecall run', then query it from another
terminal with 'cliprecall history'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(v)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if zapLogger != nil {
				_ = zapLogger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is the platform config directory)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (auto, console, json)")
	flags.String("log-file", "", "also write logs to this file")
	flags.String("socket", "", "IPC socket path")
	flags.String("backend", "", "clipboard backend (auto, system, text, headless, memory)")
	flags.BoolVar(&useJSON, "json", false, "output in JSON format")

	bindFlags(v, flags)
	root.AddCommand(GetCommands()...)
	return root
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for name, key := range flagBindings {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

func setup(v *viper.Viper) error {
	c, err := config.LoadWithViper(v, cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	SetConfig(c)

	zapLogger = nil
	if _, err := GetLogger(); err != nil {
		return err
	}
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
