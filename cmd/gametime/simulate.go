package main

import (
	"fmt"

	"github.com/aatumaykin/gametime/internal/logger"
	"github.com/aatumaykin/gametime/internal/plan"
	"github.com/aatumaykin/gametime/internal/snapshot"
	"github.com/spf13/cobra"
)

var simulateUseStore bool

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate <plan.yaml>",
	Short: "Run a scripted plan and print what fired",
	Long: `Run the steps of a plan file against a fresh clock and print every
fired action, time skip and day change. The snapshot lives in memory unless
--store selects the configured backend.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}

		log := logger.Nop()
		var store snapshot.Store
		if simulateUseStore {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if log, err = newLogger(cfg.Logging); err != nil {
				return err
			}
			if store, err = openStore(cmd.Context(), cfg.Storage, log); err != nil {
				return fmt.Errorf("failed to open snapshot store: %w", err)
			}
			defer store.Close()
		} else if debugMode {
			if log, err = newLogger(loggingToStderr()); err != nil {
				return err
			}
		}

		report, err := plan.Run(cmd.Context(), p, store, log)
		if err != nil {
			return err
		}
		return report.Write(cmd.OutOrStdout())
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simulateUseStore, "store", false, "Use the configured snapshot store instead of memory")
}
