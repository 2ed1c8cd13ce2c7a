// ABOUTME: Versioned board documents: the shared remote snapshot, export files, and import files.
// ABOUTME: Parsing validates shape at the boundary and returns classified errors instead of raw decode failures.
package kanban

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ExportedBy is the updatedBy value written into every export.
const ExportedBy = "corkboard"

// Snapshot is the shared board document:
// {version, lastUpdated, updatedBy, cards}.
type Snapshot struct {
	Version     int       `json:"version"`
	LastUpdated time.Time `json:"lastUpdated"`
	UpdatedBy   string    `json:"updatedBy"`
	Cards       []Card    `json:"cards"`
}

// snapshotWire keeps presence information so missing fields can be rejected.
type snapshotWire struct {
	Version     *int            `json:"version"`
	LastUpdated *time.Time      `json:"lastUpdated"`
	UpdatedBy   string          `json:"updatedBy"`
	Cards       json.RawMessage `json:"cards"`
}

// NewExport builds the export document for cards. The version is one past the
// last version this profile has seen.
func NewExport(cards []Card, stashed int, now time.Time) Snapshot {
	if cards == nil {
		cards = []Card{}
	}
	return Snapshot{
		Version:     stashed + 1,
		LastUpdated: now.UTC(),
		UpdatedBy:   ExportedBy,
		Cards:       cards,
	}
}

// ParseSnapshot decodes and validates a remote snapshot document.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var w snapshotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if w.Version == nil {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidSnapshot)
	}
	if *w.Version < 0 {
		return nil, fmt.Errorf("%w: negative version %d", ErrInvalidSnapshot, *w.Version)
	}
	cards, err := decodeCardArray(w.Cards)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	snap := &Snapshot{
		Version:   *w.Version,
		UpdatedBy: w.UpdatedBy,
		Cards:     cards,
	}
	if w.LastUpdated != nil {
		snap.LastUpdated = *w.LastUpdated
	}
	return snap, nil
}

// Import is the content of a user-supplied import file.
type Import struct {
	Cards   []Card
	Version *int
}

// ParseImport accepts either a bare card array or an object with a cards
// array and an optional integer version. Everything else is ErrInvalidImport.
func ParseImport(data []byte) (Import, error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		var probe any
		err := json.Unmarshal(trimmed, &probe)
		if err == nil {
			err = fmt.Errorf("malformed JSON")
		}
		return Import{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	switch trimmed[0] {
	case '[':
		cards, err := decodeCardArray(trimmed)
		if err != nil {
			return Import{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		return Import{Cards: cards}, nil

	case '{':
		var w struct {
			Version *int            `json:"version"`
			Cards   json.RawMessage `json:"cards"`
		}
		if err := json.Unmarshal(trimmed, &w); err != nil {
			return Import{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		cards, err := decodeCardArray(w.Cards)
		if err != nil {
			return Import{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		return Import{Cards: cards, Version: w.Version}, nil
	}

	return Import{}, fmt.Errorf("%w: expected an array of cards or an object with a cards field", ErrInvalidImport)
}

// decodeCardArray requires raw to be a JSON array of valid cards.
func decodeCardArray(raw json.RawMessage) ([]Card, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("cards must be an array")
	}
	var cards []Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, err
	}
	if err := Validate(cards); err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []Card{}
	}
	return cards, nil
}
