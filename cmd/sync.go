package cmd

import (
	"fmt"

	"github.com/rogersnm/calsync/internal/model"
	"github.com/rogersnm/calsync/internal/observe"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create cached events that the remote table does not have yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := coord.Mode()
		if !m.UsesRemote() {
			return fmt.Errorf("no remote configured (mode %s); run: calsync config login", m)
		}
		ctx := cmd.Context()

		events := cache.Load(ctx)
		pending := countUnsynced(events)

		if err := coord.SaveAll(ctx, events); err != nil {
			return err
		}
		// Hybrid mode absorbs reconciliation failures; here they fail the command.
		if n, ok := findNotice(notices, "save.reconcile"); ok {
			return fmt.Errorf("sync failed: %w", n.Err)
		}

		out := cmd.OutOrStdout()
		if m.UsesCache() {
			pushed := pending - countUnsynced(cache.Load(ctx))
			fmt.Fprintf(out, "Synced %d event(s); %d already on the remote\n", pushed, len(events)-pending)
		} else {
			fmt.Fprintf(out, "All %d cached event(s) are on the remote\n", len(events))
		}
		if n, ok := findNotice(notices, "save.skip_unsaved"); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d event(s) without an id were not synced\n", n.Count)
		}
		return nil
	},
}

func countUnsynced(events []model.Event) int {
	n := 0
	for _, e := range events {
		if e.RemoteID == "" {
			n++
		}
	}
	return n
}

func findNotice(r *observe.Recorder, op string) (observe.Notice, bool) {
	for _, n := range r.Notices() {
		if n.Op == op {
			return n, true
		}
	}
	return observe.Notice{}, false
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
