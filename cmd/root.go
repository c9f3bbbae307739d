package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	mtp "github.com/modeltoolsprotocol/go-sdk"
	"github.com/rogersnm/calsync/internal/config"
	"github.com/rogersnm/calsync/internal/logger"
	"github.com/rogersnm/calsync/internal/mode"
	"github.com/rogersnm/calsync/internal/observe"
	"github.com/rogersnm/calsync/internal/store"
	"github.com/rogersnm/calsync/internal/syncer"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	dataDir string
	logFile string
	verbose bool

	// fileCfg is config.yaml as written on disk; cfg adds the environment.
	fileCfg *config.Config
	cfg     *config.Config

	log     zerolog.Logger
	notices *observe.Recorder
	cache   *store.LocalCache
	coord   *syncer.Coordinator
	closers []io.Closer
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".calsync")
	}
	return filepath.Join(home, ".calsync")
}

var rootCmd = &cobra.Command{
	Use:     "calsync",
	Short:   "Business calendar events, kept in sync between a local cache and a remote table",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		var err error
		fileCfg, err = config.Load(dataDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		merged := *fileCfg
		config.ApplyEnv(&merged, os.LookupEnv)
		cfg = &merged
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if err := setupLogger(cmd); err != nil {
			return err
		}

		// Config commands work without opening any store
		if cmd.Name() == "config" || (cmd.Parent() != nil && cmd.Parent().Name() == "config") {
			return nil
		}
		return openStores()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		closeAll()
		return nil
	},
	SilenceUsage: true,
}

func setupLogger(cmd *cobra.Command) error {
	b := logger.New().
		FromWriter(cmd.ErrOrStderr()).
		Level(cfg.Log.Level).
		Format(cfg.Log.Format)
	if verbose {
		b = b.Level("debug")
	}
	if logFile != "" {
		b = b.FromPath(logFile)
	}
	l, f, err := b.Make()
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	if f != nil {
		closers = append(closers, f)
	}
	log = l
	return nil
}

// openStores builds the cache, the remote adapter and the coordinator. The
// mode is decided here, once per process.
func openStores() error {
	m := mode.Select(cfg.RemoteConfigured(), cfg.Mode)

	var slot store.Slot
	switch cfg.Backend() {
	case config.BackendSQLite:
		s, err := store.OpenSQLiteSlot(filepath.Join(dataDir, "calsync.db"))
		if err != nil {
			return err
		}
		closers = append(closers, s)
		slot = s
	default:
		slot = store.NewFileSlot(dataDir)
	}

	notices = &observe.Recorder{}
	sink := observe.Multi(observe.NewLogSink(log), notices)
	cache = store.NewLocalCache(slot, sink)

	var remote store.Remote
	if m.UsesRemote() {
		apiURL := cfg.Remote.APIURL
		if apiURL == "" {
			apiURL = store.DefaultAPIURL
		}
		remote = store.NewCloudStoreWithBase(apiURL, cfg.Remote.BaseID, cfg.Remote.Table, cfg.Remote.APIKey).WithSink(sink)
	}

	opts := []syncer.Option{syncer.WithSink(sink)}
	if cfg.Remote.Timeout > 0 {
		opts = append(opts, syncer.WithTimeout(cfg.Remote.Timeout))
	}
	var err error
	coord, err = syncer.New(m, cache, remote, opts...)
	if err != nil {
		return err
	}
	log.Debug().Str("mode", m.String()).Str("backend", cfg.Backend()).Str("data_dir", dataDir).Msg("stores ready")
	return nil
}

func closeAll() {
	for _, c := range closers {
		c.Close()
	}
	closers = nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "data directory path")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append logs to this file as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	mtpOpts := &mtp.DescribeOptions{
		Commands: map[string]*mtp.CommandAnnotation{
			"event list": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Table of events with ID, title, type, status, start, end and remote record id",
				},
				Examples: []mtp.Example{
					{Description: "List all events", Command: "calsync event list"},
					{Description: "List active promotions", Command: "calsync event list --type promotion --status active"},
				},
			},
			"event show": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/markdown",
					Description: "The event as YAML frontmatter followed by its description",
				},
				Examples: []mtp.Example{
					{Description: "Print an event", Command: "calsync event show 0190c2f4-3b6e-7c4a-9d1e-2f5a6b7c8d9e"},
				},
			},
			"event create": {
				Stdin: &mtp.IODescriptor{
					ContentType: "text/markdown",
					Description: "Event description, read when --description is -",
				},
				Examples: []mtp.Example{
					{Description: "Create a promotion", Command: "calsync event create \"Spring sale\" --start 2026-03-15T09:00 --end 2026-03-22T18:00 --type promotion"},
					{Description: "Create with piped description", Command: "echo 'All stores' | calsync event create \"Stock count\" --start 2026-04-01 --type inventory --description -"},
				},
			},
			"event update": {
				Examples: []mtp.Example{
					{Description: "Mark an event completed", Command: "calsync event update 0190c2f4-3b6e-7c4a-9d1e-2f5a6b7c8d9e --status completed"},
				},
			},
			"event delete": {
				Examples: []mtp.Example{
					{Description: "Delete an event (interactive confirm)", Command: "calsync event delete 0190c2f4-3b6e-7c4a-9d1e-2f5a6b7c8d9e"},
					{Description: "Delete an event (skip confirm)", Command: "calsync event delete 0190c2f4-3b6e-7c4a-9d1e-2f5a6b7c8d9e --force"},
				},
			},
			"event import": {
				Examples: []mtp.Example{
					{Description: "Import a markdown event file", Command: "calsync event import launch.md"},
					{Description: "Import every event of a calendar", Command: "calsync event import holidays.ics"},
				},
			},
			"sync": {
				Examples: []mtp.Example{
					{Description: "Push cached events missing from the remote table", Command: "calsync sync"},
				},
			},
			"export": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/calendar",
					Description: "iCalendar document, or JSON records with --format json",
				},
				Examples: []mtp.Example{
					{Description: "Export to a calendar file", Command: "calsync export --out events.ics"},
				},
			},
			"config set-mode": {
				Examples: []mtp.Example{
					{Description: "Keep everything on this machine", Command: "calsync config set-mode local-only"},
					{Description: "Go back to automatic selection", Command: "calsync config set-mode auto"},
				},
			},
			"config login": {
				Examples: []mtp.Example{
					{Description: "Store remote credentials", Command: "calsync config login --base-id appXXXXXXXX --api-key patXXXXXXXX"},
				},
			},
		},
	}

	mtp.WithDescribe(rootCmd, mtpOpts)
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer closeAll()
	return rootCmd.ExecuteContext(ctx)
}
