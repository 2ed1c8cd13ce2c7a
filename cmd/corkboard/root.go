// ABOUTME: Root cobra command with the persistent --data-dir, --store and --config flags.
// ABOUTME: openSession resolves configuration, opens the store, and loads both services for a subcommand.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/2389-research/corkboard/app"
	"github.com/2389-research/corkboard/store"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	dataDir    string
	store      string
	configPath string
}

func newRootCommand(ver string) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "corkboard",
		Short: "Local kanban board and decision map",
		Long: `corkboard keeps a kanban board and a decision map on your machine.

It serves both as a local web UI, offers a terminal board, and exposes
MCP tools for agents. A shared board snapshot can be pulled from a URL,
a git repository, or a file.

Configuration comes from CORKBOARD_* environment variables (a .env file
in the working directory is read first) and an optional YAML file.`,
		Version:       ver,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dataDir, "data-dir", "", "data directory (default: $XDG_DATA_HOME/corkboard)")
	pf.StringVar(&flags.store, "store", "", "store backend: memory, file, sqlite, redis (default: file)")
	pf.StringVar(&flags.configPath, "config", "", "YAML config file")

	root.AddCommand(
		newServeCommand(flags),
		newTUICommand(flags),
		newExportCommand(flags),
		newImportCommand(flags),
		newPullCommand(flags),
		newMCPCommand(flags, ver),
		newLogCommand(flags),
		newVersionCommand(ver),
	)
	return root
}

// loadConfig applies command-line overrides on top of file and environment.
func (f *globalFlags) loadConfig() (*app.Config, error) {
	cfg, err := app.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.dataDir != "" {
		cfg.DataDir = f.dataDir
	}
	if f.store != "" {
		cfg.Store = f.store
	}
	return cfg, nil
}

// session is an open store with both services loaded.
type session struct {
	cfg     *app.Config
	kv      store.KV
	journal *store.Journal
	board   *app.BoardService
	maps    *app.MapService
}

func journalPath(dataDir string) string {
	return filepath.Join(dataDir, "journal.jsonl")
}

// openJournal repairs a journal left half-written by a crash before
// appending to it.
func openJournal(path string) (*store.Journal, error) {
	if _, err := store.ReadJournal(path); errors.Is(err, store.ErrCorrupt) {
		kept, rerr := store.RepairJournal(path)
		if rerr != nil {
			return nil, rerr
		}
		log.Printf("component=cli action=repair_journal kept=%d", kept)
	}
	return store.OpenJournal(path)
}

func (f *globalFlags) openSession(ctx context.Context) (*session, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	kv, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}

	journal, err := openJournal(journalPath(cfg.DataDir))
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	opts := app.BoardOptions{
		KV:         kv,
		BoardKey:   cfg.BoardKey,
		VersionKey: cfg.VersionKey,
		Journal:    journal,
	}
	if src := cfg.Source(); src != nil {
		opts.Source = src
	}
	s := &session{cfg: cfg, kv: kv, journal: journal}
	s.board = app.NewBoardService(opts)
	if err := s.board.Load(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("load board: %w", err)
	}
	s.maps = app.NewMapService(kv, cfg.DecisionsKey)
	if err := s.maps.Load(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("load decision map: %w", err)
	}
	return s, nil
}

func (s *session) Close() error {
	return errors.Join(s.journal.Close(), s.kv.Close())
}
