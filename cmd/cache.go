package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the local event cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how many cached events the remote has not acknowledged",
	RunE: func(cmd *cobra.Command, args []string) error {
		events := cache.Load(cmd.Context())
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Backend: %s\n", cfg.Backend())
		fmt.Fprintf(out, "Events: %d\n", len(events))
		fmt.Fprintf(out, "Not on remote: %d\n", countUnsynced(events))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached event",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		unsynced := countUnsynced(cache.Load(ctx))
		if unsynced > 0 && coord.Mode().UsesCache() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d cached event(s) are not on the remote and will be lost.\n", unsynced)
		}
		if err := confirmDelete(cmd, "the local cache"); err != nil {
			return err
		}
		if err := cache.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
		return nil
	},
}

func init() {
	cacheClearCmd.Flags().BoolP("force", "f", false, "skip confirmation")

	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
