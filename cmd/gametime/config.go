package main

import (
	"fmt"

	"github.com/aatumaykin/gametime/internal/config"
	"github.com/aatumaykin/gametime/internal/constants"
	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Validate and manage gametime configuration.`,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file and check for errors.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := constants.DefaultConfigPath
		if configPath != "" {
			path = configPath
		}
		if len(args) > 0 {
			path = args[0]
		}

		out := cmd.OutOrStdout()

		cfg, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(out, constants.MsgConfigLoadError, err)
			return err
		}

		if errs := cfg.Validate(); len(errs) > 0 {
			fmt.Fprint(out, constants.MsgConfigValidationError)
			for _, e := range errs {
				fmt.Fprintf(out, constants.MsgConfigValidatePrefix, e)
			}
			return fmt.Errorf("%d validation error(s)", len(errs))
		}

		fmt.Fprintln(out, constants.MsgConfigValid)
		fmt.Fprintf(out, "  storage: %s\n", cfg.Storage.Describe())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
