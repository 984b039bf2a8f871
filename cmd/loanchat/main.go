package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"loan-assistant/app"
	"loan-assistant/config"
	"loan-assistant/logger"
)

var (
	configPath string
	verbose    bool

	assistant *app.App
)

var rootCmd = &cobra.Command{
	Use:           "loanchat <command>",
	Short:         "Terminal client for the personal-loan assistant",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		log := logger.NewNop()
		if verbose {
			if log, err = logger.New(cfg.Log.Mode); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
		}

		assistant, err = app.New(cfg, log)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if assistant != nil {
			assistant.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv(config.PathEnv), "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write service logs to stderr")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(eligibilityCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
