// ABOUTME: Tests for snapshot parsing, import shape acceptance, and the export/import round trip.
// ABOUTME: Rejected shapes must surface ErrInvalidSnapshot or ErrInvalidImport, never a raw decode error.
package kanban_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/2389-research/corkboard/kanban"
)

func TestParseSnapshot(t *testing.T) {
	doc := `{
		"version": 5,
		"lastUpdated": "2026-01-02T03:04:05.000Z",
		"updatedBy": "someone",
		"cards": [{"id":"1","title":"Roof","description":"","status":"done","priority":"high","createdAt":"2026-01-01T00:00:00.000Z"}]
	}`
	snap, err := kanban.ParseSnapshot([]byte(doc))
	if err != nil {
		t.Fatalf("ParseSnapshot: %v", err)
	}
	if snap.Version != 5 {
		t.Errorf("version = %d, want 5", snap.Version)
	}
	if snap.UpdatedBy != "someone" {
		t.Errorf("updatedBy = %q", snap.UpdatedBy)
	}
	if len(snap.Cards) != 1 || snap.Cards[0].Title != "Roof" {
		t.Errorf("cards = %+v", snap.Cards)
	}
}

func TestParseSnapshotRejects(t *testing.T) {
	tests := map[string]string{
		"not json":        `{"version":`,
		"bare array":      `[]`,
		"missing version": `{"cards":[]}`,
		"missing cards":   `{"version":1}`,
		"cards object":    `{"version":1,"cards":{}}`,
		"string version":  `{"version":"2","cards":[]}`,
		"negative":        `{"version":-1,"cards":[]}`,
		"card without id": `{"version":1,"cards":[{"title":"x"}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := kanban.ParseSnapshot([]byte(doc))
			if !errors.Is(err, kanban.ErrInvalidSnapshot) {
				t.Errorf("err = %v, want ErrInvalidSnapshot", err)
			}
		})
	}
}

func TestParseImportBareArray(t *testing.T) {
	imp, err := kanban.ParseImport([]byte(`[{"id":"9","title":"Gutter","status":"ideas","priority":"low"}]`))
	if err != nil {
		t.Fatalf("ParseImport: %v", err)
	}
	if len(imp.Cards) != 1 || imp.Cards[0].ID != "9" {
		t.Errorf("cards = %+v", imp.Cards)
	}
	if imp.Version != nil {
		t.Errorf("version = %v, want nil", *imp.Version)
	}
}

func TestParseImportObjectWithVersion(t *testing.T) {
	imp, err := kanban.ParseImport([]byte(`  {"version": 12, "cards": []}  `))
	if err != nil {
		t.Fatalf("ParseImport: %v", err)
	}
	if imp.Version == nil || *imp.Version != 12 {
		t.Errorf("version = %v, want 12", imp.Version)
	}
	if imp.Cards == nil || len(imp.Cards) != 0 {
		t.Errorf("cards = %#v, want empty non-nil", imp.Cards)
	}
}

func TestParseImportRejects(t *testing.T) {
	tests := map[string]string{
		"empty":        ``,
		"number":       `42`,
		"string":       `"cards"`,
		"no cards":     `{"version": 3}`,
		"cards string": `{"cards": "nope"}`,
		"truncated":    `[{"id":"1"`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := kanban.ParseImport([]byte(doc))
			if !errors.Is(err, kanban.ErrInvalidImport) {
				t.Errorf("err = %v, want ErrInvalidImport", err)
			}
		})
	}
}

func TestParseImportReportsParserMessage(t *testing.T) {
	_, err := kanban.ParseImport([]byte(`{"cards": [`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unexpected end of JSON input") {
		t.Errorf("error %q does not carry the parser message", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	b := kanban.NewBoard(kanban.DefaultCards(testNow))
	if _, err := b.Create(kanban.CardInput{Title: "Fresh", Description: "multi\nline", Status: kanban.StatusInProgress, Priority: kanban.PriorityHigh}, testNow); err != nil {
		t.Fatalf("Create: %v", err)
	}

	exp := kanban.NewExport(b.Cards(), 4, testNow)
	if exp.Version != 5 {
		t.Errorf("export version = %d, want 5", exp.Version)
	}
	if exp.UpdatedBy != kanban.ExportedBy {
		t.Errorf("updatedBy = %q", exp.UpdatedBy)
	}

	data, err := json.Marshal(exp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	imp, err := kanban.ParseImport(data)
	if err != nil {
		t.Fatalf("ParseImport: %v", err)
	}
	if !reflect.DeepEqual(imp.Cards, b.Cards()) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", imp.Cards, b.Cards())
	}
	if imp.Version == nil || *imp.Version != 5 {
		t.Errorf("imported version = %v, want 5", imp.Version)
	}
}

func TestNewExportEmptyBoardHasCardsArray(t *testing.T) {
	data, err := json.Marshal(kanban.NewExport(nil, 0, testNow))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"cards":[]`) {
		t.Errorf("export %s lacks an empty cards array", data)
	}
}
