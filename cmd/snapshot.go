package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"framecore/internal/storage"
	"framecore/internal/store"
)

var (
	snapX   float64
	snapY   float64
	snapRaw bool
)

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
	snapshotCmd.AddCommand(snapshotClearCmd)

	snapshotSaveCmd.Flags().Float64Var(&snapX, "x", 0, "last pointer x")
	snapshotSaveCmd.Flags().Float64Var(&snapY, "y", 0, "last pointer y")
	snapshotShowCmd.Flags().BoolVar(&snapRaw, "raw", false, "print the stored encoded blob")
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage the compressed session snapshot",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Snapshot the recent links into the session scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openSessionApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var pos *storage.Point
		if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
			pos = &storage.Point{X: snapX, Y: snapY}
		}

		snap := a.Engine.SnapshotNow(cmd.Context(), pos)
		if err := a.Engine.CompressAndSaveState(cmd.Context(), snap); err != nil {
			return storageFailure(err)
		}
		fmt.Printf("Snapshot saved with %d links\n", len(snap.RecentLinks))
		return nil
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the snapshot stored in the session scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if snapRaw {
			blob, ok, err := a.Store.Get(cmd.Context(), store.ScopeSession, storage.StateKey)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("No snapshot in this session")
				return nil
			}
			fmt.Println(blob)
			return nil
		}

		snap, ok := a.Engine.LoadAndDecompressState(cmd.Context())
		if !ok {
			fmt.Println("No snapshot in this session")
			return nil
		}

		fmt.Printf("Session:  %s\n", a.Store.SessionID())
		fmt.Printf("Taken:    %s\n", time.UnixMilli(snap.Timestamp).Local().Format("2006-01-02 15:04:05"))
		if snap.LastPosition != nil {
			fmt.Printf("Position: %.0f,%.0f\n", snap.LastPosition.X, snap.LastPosition.Y)
		}
		out, err := json.MarshalIndent(snap.RecentLinks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("Links:    %s\n", out)
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Re-save the snapshot's links into the recent list",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Engine.RestoreState(cmd.Context())
		if err != nil {
			return storageFailure(err)
		}
		fmt.Printf("Restored %d links\n", n)
		return nil
	},
}

var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the session snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Engine.ClearState(cmd.Context()); err != nil {
			return storageFailure(err)
		}
		fmt.Println("Snapshot cleared")
		return nil
	},
}
