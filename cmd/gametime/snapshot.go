package main

import (
	"fmt"

	"github.com/aatumaykin/gametime/internal/constants"
	"github.com/aatumaykin/gametime/internal/scheduler"
	"github.com/spf13/cobra"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect or clear the stored clock snapshot",
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored clock snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Logging)
		if err != nil {
			return err
		}

		store, err := openStore(cmd.Context(), cfg.Storage, log)
		if err != nil {
			return err
		}
		defer store.Close()

		r, found, err := scheduler.ReadSnapshot(cmd.Context(), store, scheduler.KeysFor(cfg.Scheduler.KeyPrefix))
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintln(cmd.OutOrStdout(), constants.MsgSnapshotNone)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), constants.MsgSnapshotShow, r, r.Hour, r.Minute, int(r.Day))
		return nil
	},
}

var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored clock snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Logging)
		if err != nil {
			return err
		}

		store, err := openStore(cmd.Context(), cfg.Storage, log)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := scheduler.ClearSnapshot(cmd.Context(), store, scheduler.KeysFor(cfg.Scheduler.KeyPrefix)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), constants.MsgSnapshotCleared)
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotClearCmd)
}
