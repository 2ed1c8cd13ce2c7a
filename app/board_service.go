// ABOUTME: BoardService owns the kanban board, mirrors it to storage, and reconciles it against a remote snapshot.
// ABOUTME: Every mutation is state change then persist under one lock; a failed write rolls the change back.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/2389-research/corkboard/kanban"
	"github.com/2389-research/corkboard/remote"
	"github.com/2389-research/corkboard/store"
)

// ErrNoRemote is returned by ReloadFromRemote when no source is configured.
var ErrNoRemote = errors.New("no remote source configured")

// BoardOptions wires a BoardService.
type BoardOptions struct {
	KV         store.KV
	Source     remote.Source // optional
	BoardKey   string
	VersionKey string
	Now        func() time.Time
	Journal    Recorder // optional
}

// BoardService is the kanban record store.
type BoardService struct {
	mu         sync.Mutex
	kv         store.KV
	source     remote.Source
	boardKey   string
	versionKey string
	now        func() time.Time
	journal    Recorder

	board   *kanban.Board
	stashed int
}

// NewBoardService returns an empty service. Call Load before use.
func NewBoardService(opts BoardOptions) *BoardService {
	s := &BoardService{
		kv:         opts.KV,
		source:     opts.Source,
		boardKey:   opts.BoardKey,
		versionKey: opts.VersionKey,
		now:        opts.Now,
		journal:    opts.Journal,
		board:      kanban.NewBoard(nil),
	}
	if s.boardKey == "" {
		s.boardKey = DefaultBoardKey
	}
	if s.versionKey == "" {
		s.versionKey = DefaultVersionKey
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Load reads local state, then lets a newer remote snapshot replace it.
// With nothing stored and nothing adopted, the default cards are installed
// and persisted.
func (s *BoardService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cards []kanban.Card
	found, err := store.LoadJSON(ctx, s.kv, s.boardKey, &cards)
	if err != nil {
		return err
	}
	if found {
		if err := kanban.Validate(cards); err != nil {
			return fmt.Errorf("%w: %s: %v", store.ErrCorrupt, s.boardKey, err)
		}
	}
	stashed, err := store.LoadInt(ctx, s.kv, s.versionKey)
	if err != nil {
		return err
	}

	adopted := false
	if s.source != nil {
		snap, fetchErr := s.source.Fetch(ctx)
		if fetchErr != nil {
			log.Printf("component=app action=fetch_remote source=%s err=%v", s.source, fetchErr)
		}
		out := remote.Reconcile(stashed, snap, fetchErr)
		log.Printf("component=app action=reconcile stashed=%d reason=%s", stashed, out.Reason)
		if out.Adopt {
			if err := store.SaveJSON(ctx, s.kv, s.boardKey, snap.Cards); err != nil {
				return err
			}
			if err := store.SaveInt(ctx, s.kv, s.versionKey, out.Version); err != nil {
				return err
			}
			cards, stashed, adopted = snap.Cards, out.Version, true
		}
	}

	if !found && !adopted {
		cards = kanban.DefaultCards(s.now())
		if err := store.SaveJSON(ctx, s.kv, s.boardKey, cards); err != nil {
			return err
		}
		log.Printf("component=app action=seed_board cards=%d", len(cards))
	}

	s.board.Replace(cards)
	s.stashed = stashed
	return nil
}

// ReloadFromRemote discards local state in favor of the remote snapshot,
// whatever its version. A failed fetch changes nothing.
func (s *BoardService) ReloadFromRemote(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return 0, ErrNoRemote
	}
	snap, err := s.source.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("reload from %s: %w", s.source, err)
	}
	if err := store.SaveJSON(ctx, s.kv, s.boardKey, snap.Cards); err != nil {
		return 0, err
	}
	if err := store.SaveInt(ctx, s.kv, s.versionKey, snap.Version); err != nil {
		return 0, err
	}
	s.board.Replace(snap.Cards)
	s.stashed = snap.Version
	log.Printf("component=app action=reload_remote version=%d cards=%d", snap.Version, len(snap.Cards))
	s.record("reload_remote", "", "v%d from %s", snap.Version, s.source)
	return snap.Version, nil
}

// Sync fetches the remote snapshot and adopts it only when its version beats
// the stash, the same rule Load applies. A failed fetch is logged and leaves
// local state alone; only persistence failures are returned.
func (s *BoardService) Sync(ctx context.Context) (remote.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return remote.Outcome{}, ErrNoRemote
	}
	snap, fetchErr := s.source.Fetch(ctx)
	if fetchErr != nil {
		log.Printf("component=app action=sync source=%s err=%v", s.source, fetchErr)
	}
	out := remote.Reconcile(s.stashed, snap, fetchErr)
	if !out.Adopt {
		return out, nil
	}
	if err := store.SaveJSON(ctx, s.kv, s.boardKey, snap.Cards); err != nil {
		return remote.Outcome{}, err
	}
	if err := store.SaveInt(ctx, s.kv, s.versionKey, out.Version); err != nil {
		return remote.Outcome{}, err
	}
	s.board.Replace(snap.Cards)
	s.stashed = out.Version
	log.Printf("component=app action=sync version=%d cards=%d", out.Version, len(snap.Cards))
	s.record("sync", "", "adopted v%d from %s", out.Version, s.source)
	return out, nil
}

// HasRemote reports whether a remote source is configured.
func (s *BoardService) HasRemote() bool {
	return s.source != nil
}

// mutate applies fn and persists the board. When persistence fails the board
// is restored to its previous contents.
func (s *BoardService) mutate(ctx context.Context, fn func() error) error {
	prev := s.board.Cards()
	if err := fn(); err != nil {
		return err
	}
	if err := store.SaveJSON(ctx, s.kv, s.boardKey, s.board.Cards()); err != nil {
		s.board.Replace(prev)
		return err
	}
	return nil
}

func (s *BoardService) Create(ctx context.Context, in kanban.CardInput) (kanban.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var card kanban.Card
	err := s.mutate(ctx, func() error {
		var err error
		card, err = s.board.Create(in, s.now())
		return err
	})
	if err != nil {
		return kanban.Card{}, err
	}
	log.Printf("component=app action=create_card id=%s status=%s", card.ID, card.Status)
	s.record("create_card", card.ID, "%q in %s", card.Title, card.Status)
	return card, nil
}

func (s *BoardService) Update(ctx context.Context, id string, in kanban.CardInput) (kanban.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var card kanban.Card
	err := s.mutate(ctx, func() error {
		var err error
		card, err = s.board.Update(id, in)
		return err
	})
	if err != nil {
		return kanban.Card{}, err
	}
	s.record("update_card", card.ID, "%q %s", card.Title, card.Priority)
	return card, nil
}

func (s *BoardService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutate(ctx, func() error { return s.board.Delete(id) }); err != nil {
		return err
	}
	log.Printf("component=app action=delete_card id=%s", id)
	s.record("delete_card", id, "")
	return nil
}

// Move reassigns a card's column. Moving to the column it is already in
// writes nothing.
func (s *BoardService) Move(ctx context.Context, id string, status kanban.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.board.Cards()
	changed, err := s.board.Move(id, status)
	if err != nil || !changed {
		return false, err
	}
	if err := store.SaveJSON(ctx, s.kv, s.boardKey, s.board.Cards()); err != nil {
		s.board.Replace(prev)
		return false, err
	}
	s.record("move_card", id, "to %s", status)
	return true, nil
}

// Drop finishes a drag started against this board.
func (s *BoardService) Drop(ctx context.Context, d *kanban.Drag, status kanban.Status) (bool, error) {
	if !d.Active() {
		return false, kanban.ErrNotDragging
	}
	id := d.CardID()
	d.Cancel()
	return s.Move(ctx, id, status)
}

// Export builds the snapshot document for the current board.
func (s *BoardService) Export() kanban.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return kanban.NewExport(s.board.Cards(), s.stashed, s.now())
}

// Import replaces the whole board with the cards in data. A version field
// updates the stash. Rejected input leaves everything untouched.
func (s *BoardService) Import(ctx context.Context, data []byte) (kanban.Import, error) {
	imp, err := kanban.ParseImport(data)
	if err != nil {
		return kanban.Import{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := store.SaveJSON(ctx, s.kv, s.boardKey, imp.Cards); err != nil {
		return kanban.Import{}, err
	}
	s.board.Replace(imp.Cards)
	if imp.Version != nil {
		if err := store.SaveInt(ctx, s.kv, s.versionKey, *imp.Version); err != nil {
			return kanban.Import{}, err
		}
		s.stashed = *imp.Version
	}
	log.Printf("component=app action=import cards=%d", len(imp.Cards))
	s.record("import", "", "%d cards", len(imp.Cards))
	return imp, nil
}

func (s *BoardService) Cards() []kanban.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Cards()
}

func (s *BoardService) Columns() []kanban.Column {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Columns()
}

func (s *BoardService) Find(id string) (kanban.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Find(id)
}

// Stashed returns the last remote or imported version this profile has seen.
func (s *BoardService) Stashed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stashed
}
