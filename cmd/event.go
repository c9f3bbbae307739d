package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rogersnm/calsync/internal/codec"
	"github.com/rogersnm/calsync/internal/editor"
	"github.com/rogersnm/calsync/internal/ics"
	"github.com/rogersnm/calsync/internal/markdown"
	"github.com/rogersnm/calsync/internal/model"
	"github.com/rogersnm/calsync/internal/store"
	"github.com/rogersnm/calsync/internal/syncer"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Manage calendar events",
}

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	RunE: func(cmd *cobra.Command, args []string) error {
		typeStr, _ := cmd.Flags().GetString("type")
		statusStr, _ := cmd.Flags().GetString("status")

		var wantType model.EventType
		if typeStr != "" {
			t, ok := model.ParseEventType(typeStr)
			if !ok {
				return model.ValidateEventType(model.EventType(typeStr))
			}
			wantType = t
		}
		var wantStatus model.Status
		if statusStr != "" {
			s, ok := model.ParseStatus(statusStr)
			if !ok {
				return model.ValidateStatus(model.Status(statusStr))
			}
			wantStatus = s
		}

		events, err := coord.Load(cmd.Context())
		if err != nil {
			return err
		}
		var shown []model.Event
		for _, e := range events {
			if wantType != "" && e.Type != wantType {
				continue
			}
			if wantStatus != "" && e.Status != wantStatus {
				continue
			}
			shown = append(shown, e)
		}
		model.SortByStart(shown)
		fmt.Fprintln(cmd.OutOrStdout(), markdown.RenderEventTable(shown))
		return nil
	},
}

var eventShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show event details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := findEvent(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		pretty, _ := cmd.Flags().GetBool("pretty")
		if !pretty {
			data, err := markdown.MarshalEvent(e)
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(data))
			return nil
		}

		fmt.Fprint(out, markdown.RenderEventHeader(e))
		if e.Description != "" {
			rendered, err := markdown.RenderMarkdown(e.Description)
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
		}
		return nil
	},
}

var eventCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startStr, _ := cmd.Flags().GetString("start")
		start, err := parseWhen(startStr)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		end := start.Add(time.Hour)
		if endStr, _ := cmd.Flags().GetString("end"); endStr != "" {
			if end, err = parseWhen(endStr); err != nil {
				return fmt.Errorf("--end: %w", err)
			}
		}

		typeStr, _ := cmd.Flags().GetString("type")
		t, ok := model.ParseEventType(typeStr)
		if !ok {
			return model.ValidateEventType(model.EventType(typeStr))
		}
		statusStr, _ := cmd.Flags().GetString("status")
		s, ok := model.ParseStatus(statusStr)
		if !ok {
			return model.ValidateStatus(model.Status(statusStr))
		}

		desc, err := descriptionFlag(cmd)
		if err != nil {
			return err
		}

		e := model.Event{
			Title:       strings.TrimSpace(args[0]),
			Description: desc,
			Start:       start,
			End:         end,
			Type:        t,
			Status:      s,
		}
		if err := e.Validate(); err != nil {
			return err
		}

		created, err := coord.CreateOne(cmd.Context(), e)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created event %s (%s)\n", created.Title, created.ID)
		return nil
	},
}

var eventUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := findEvent(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		changed := false
		flags := cmd.Flags()
		if flags.Changed("title") {
			e.Title, _ = flags.GetString("title")
			e.Title = strings.TrimSpace(e.Title)
			changed = true
		}
		if flags.Changed("start") {
			v, _ := flags.GetString("start")
			if e.Start, err = parseWhen(v); err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			changed = true
		}
		if flags.Changed("end") {
			v, _ := flags.GetString("end")
			if e.End, err = parseWhen(v); err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			changed = true
		}
		if flags.Changed("type") {
			v, _ := flags.GetString("type")
			t, ok := model.ParseEventType(v)
			if !ok {
				return model.ValidateEventType(model.EventType(v))
			}
			e.Type = t
			changed = true
		}
		if flags.Changed("status") {
			v, _ := flags.GetString("status")
			s, ok := model.ParseStatus(v)
			if !ok {
				return model.ValidateStatus(model.Status(v))
			}
			e.Status = s
			changed = true
		}
		if flags.Changed("description") {
			if e.Description, err = descriptionFlag(cmd); err != nil {
				return err
			}
			changed = true
		}
		if !changed {
			return fmt.Errorf("at least one update flag is required (--title, --start, --end, --type, --status, --description)")
		}
		if err := e.Validate(); err != nil {
			return err
		}

		updated, err := coord.UpdateOne(cmd.Context(), e)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated event %s\n", updated.ID)
		return nil
	},
}

var eventEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an event in $EDITOR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := findEvent(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := markdown.MarshalEvent(e)
		if err != nil {
			return err
		}

		f, err := os.CreateTemp("", "calsync-*.md")
		if err != nil {
			return err
		}
		path := f.Name()
		defer os.Remove(path)
		_, werr := f.Write(data)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return fmt.Errorf("writing %s: %w", path, werr)
		}

		if err := editor.Open(path); err != nil {
			return err
		}

		rf, err := os.Open(path)
		if err != nil {
			return err
		}
		defer rf.Close()
		edited, err := markdown.ParseEvent(rf)
		if err != nil {
			return err
		}
		// The id and remote record id are not editable.
		edited.ID = e.ID
		edited.RemoteID = e.RemoteID

		updated, err := coord.UpdateOne(cmd.Context(), edited)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated event %s\n", updated.ID)
		return nil
	},
}

var eventDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := findEvent(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Event: %s (%s)\n", e.Title, e.ID)
		if err := confirmDelete(cmd, "event "+e.ID); err != nil {
			return err
		}
		if err := coord.DeleteOne(cmd.Context(), e.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %s\n", e.ID)
		return nil
	},
}

var eventImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create events from a markdown event file or an .ics calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		var events []model.Event
		if strings.EqualFold(filepath.Ext(args[0]), ".ics") {
			var skipped int
			events, skipped, err = ics.Read(f)
			if err != nil {
				return err
			}
			if skipped > 0 {
				log.Warn().Int("count", skipped).Str("file", args[0]).Msg("skipped calendar entries without summary or start")
			}
		} else {
			e, err := markdown.ParseEvent(f)
			if err != nil {
				return err
			}
			events = []model.Event{e}
		}

		out := cmd.OutOrStdout()
		for _, e := range events {
			created, err := coord.CreateOne(cmd.Context(), e)
			if errors.Is(err, syncer.ErrDuplicateID) {
				fmt.Fprintf(out, "Skipped event %s: already exists\n", e.ID)
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created event %s (%s)\n", created.Title, created.ID)
		}
		return nil
	},
}

// findEvent loads the collection and picks one event by id.
func findEvent(ctx context.Context, eventID string) (model.Event, error) {
	events, err := coord.Load(ctx)
	if err != nil {
		return model.Event{}, err
	}
	i := model.IndexOf(events, eventID)
	if i < 0 {
		return model.Event{}, fmt.Errorf("event %s: %w", eventID, store.ErrNotFound)
	}
	return events[i], nil
}

var whenLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseWhen accepts RFC 3339 or a local date with optional minutes.
func parseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("a date is required")
	}
	if t, err := codec.ParseTime(s); err == nil {
		return t, nil
	}
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return codec.Normalize(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q (use 2006-01-02, 2006-01-02T15:04 or RFC 3339)", s)
}

// descriptionFlag returns --description, reading stdin when its value is "-".
func descriptionFlag(cmd *cobra.Command) (string, error) {
	desc, _ := cmd.Flags().GetString("description")
	if desc != "-" {
		return desc, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading description: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func confirmDelete(cmd *cobra.Command, what string) error {
	if force, _ := cmd.Flags().GetBool("force"); force {
		return nil
	}
	var confirm bool
	if err := huh.NewConfirm().
		Title(fmt.Sprintf("Delete %s?", what)).
		Value(&confirm).
		Run(); err != nil || !confirm {
		return fmt.Errorf("delete cancelled")
	}
	return nil
}

func init() {
	eventListCmd.Flags().StringP("type", "t", "", "filter by type (order, inventory, marketing, promotion)")
	eventListCmd.Flags().StringP("status", "s", "", "filter by status (pending, active, completed)")

	eventShowCmd.Flags().Bool("pretty", false, "render with ANSI styling")

	eventCreateCmd.Flags().String("start", "", "start time (required)")
	eventCreateCmd.Flags().String("end", "", "end time (default: one hour after start)")
	eventCreateCmd.Flags().StringP("type", "t", string(model.EventTypes[0]), "event type (order, inventory, marketing, promotion)")
	eventCreateCmd.Flags().StringP("status", "s", string(model.Statuses[0]), "status (pending, active, completed)")
	eventCreateCmd.Flags().StringP("description", "d", "", "description in markdown, - reads stdin")
	eventCreateCmd.MarkFlagRequired("start")

	eventUpdateCmd.Flags().String("title", "", "new title")
	eventUpdateCmd.Flags().String("start", "", "new start time")
	eventUpdateCmd.Flags().String("end", "", "new end time")
	eventUpdateCmd.Flags().StringP("type", "t", "", "new type")
	eventUpdateCmd.Flags().StringP("status", "s", "", "new status")
	eventUpdateCmd.Flags().StringP("description", "d", "", "new description, - reads stdin")

	eventDeleteCmd.Flags().BoolP("force", "f", false, "skip confirmation")

	eventCmd.AddCommand(eventListCmd)
	eventCmd.AddCommand(eventShowCmd)
	eventCmd.AddCommand(eventCreateCmd)
	eventCmd.AddCommand(eventUpdateCmd)
	eventCmd.AddCommand(eventEditCmd)
	eventCmd.AddCommand(eventDeleteCmd)
	eventCmd.AddCommand(eventImportCmd)
	rootCmd.AddCommand(eventCmd)
}
