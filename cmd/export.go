package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rogersnm/calsync/internal/codec"
	"github.com/rogersnm/calsync/internal/ics"
	"github.com/rogersnm/calsync/internal/model"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every event as an iCalendar or JSON document",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")
		if format != "ics" && format != "json" {
			return fmt.Errorf("invalid format %q: must be ics or json", format)
		}

		events, err := coord.Load(cmd.Context())
		if err != nil {
			return err
		}
		model.SortByStart(events)

		if outPath == "" {
			return writeEvents(cmd.OutOrStdout(), format, events)
		}
		if err := exportToFile(outPath, format, events); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d event(s) to %s\n", len(events), outPath)
		return nil
	},
}

func exportToFile(path, format string, events []model.Event) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return writeEvents(f, format, events)
}

func writeEvents(w io.Writer, format string, events []model.Event) error {
	if format == "ics" {
		return ics.Write(w, events, time.Now())
	}
	records := make([]codec.LocalRecord, len(events))
	for i, e := range events {
		records[i] = codec.ToLocal(e)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func init() {
	exportCmd.Flags().String("format", "ics", "output format (ics, json)")
	exportCmd.Flags().StringP("out", "o", "", "write to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
