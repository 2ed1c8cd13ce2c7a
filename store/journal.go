// ABOUTME: Append-only JSONL journal of board activity, one entry per line, fsynced on append.
// ABOUTME: Reading skips nothing; Repair rewrites the file keeping only complete entries after a crash.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Entry is one line of the journal.
type Entry struct {
	At      time.Time `json:"at"`
	Action  string    `json:"action"`
	Subject string    `json:"subject,omitempty"`
	Detail  string    `json:"detail,omitempty"`
}

// Journal appends entries to a file opened in append mode.
type Journal struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// OpenJournal opens or creates the journal at path, creating parent
// directories as needed.
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Journal{path: path, file: f}, nil
}

func (j *Journal) Path() string { return j.path }

// Append writes e as one line and syncs it to disk.
func (j *Journal) Append(e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("fsync journal: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	return j.file.Close()
}

// ReadJournal returns every entry in path in order. A missing file is an
// empty journal; a malformed line is an error (see RepairJournal).
func ReadJournal(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(text), &e); err != nil {
			return nil, fmt.Errorf("%w: journal line %d: %v", ErrCorrupt, line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	return entries, nil
}

// RepairJournal keeps only parseable lines, replacing the file through a
// synced temp file and rename. It returns how many entries were kept.
func RepairJournal(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open journal for repair: %w", err)
	}
	var keep []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var e Entry
		if json.Unmarshal([]byte(text), &e) == nil {
			keep = append(keep, text)
		}
	}
	scanErr := scanner.Err()
	_ = f.Close()
	if scanErr != nil {
		return 0, fmt.Errorf("scan journal for repair: %w", scanErr)
	}

	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create temp journal: %w", err)
	}
	for _, text := range keep {
		if _, err := fmt.Fprintln(out, text); err != nil {
			_ = out.Close()
			_ = os.Remove(tmp)
			return 0, fmt.Errorf("write temp journal: %w", err)
		}
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("fsync temp journal: %w", err)
	}
	_ = out.Close()
	if err := os.Rename(tmp, path); err != nil {
		return 0, fmt.Errorf("replace journal: %w", err)
	}
	if dir, err := os.Open(filepath.Dir(path)); err == nil {
		_ = dir.Sync()
		_ = dir.Close()
	}
	return len(keep), nil
}
