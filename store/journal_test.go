// ABOUTME: Tests for the JSONL activity journal: append and read back, missing files, and crash repair.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJournalAppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.jsonl")
	j, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	at := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	for _, action := range []string{"create_card", "move_card", "delete_card"} {
		if err := j.Append(Entry{At: at, Action: action, Subject: "7"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	entries, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[1].Action != "move_card" || !entries[1].At.Equal(at) || entries[1].Subject != "7" {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestReadJournalMissingFile(t *testing.T) {
	entries, err := ReadJournal(filepath.Join(t.TempDir(), "none.jsonl"))
	if err != nil || len(entries) != 0 {
		t.Errorf("entries=%v err=%v", entries, err)
	}
}

func TestRepairJournalDropsPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	content := `{"at":"2026-02-01T09:00:00Z","action":"create_card","subject":"1"}
not json
{"at":"2026-02-01T09:01:00Z","action":"move_card","subject":"1"}
{"at":"2026-02-01T09:02:00Z","act`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadJournal(path); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
	kept, err := RepairJournal(path)
	if err != nil {
		t.Fatalf("RepairJournal: %v", err)
	}
	if kept != 2 {
		t.Errorf("kept %d, want 2", kept)
	}
	entries, err := ReadJournal(path)
	if err != nil || len(entries) != 2 || entries[1].Action != "move_card" {
		t.Errorf("after repair: entries=%+v err=%v", entries, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}
