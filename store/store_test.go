// ABOUTME: Tests for the KV backends and the typed record helpers.
// ABOUTME: Redis is exercised only when CORKBOARD_TEST_REDIS names a reachable server.
package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

// exerciseKV runs the shared contract every backend must satisfy.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := kv.Set(ctx, "board", `[{"id":"1"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := kv.Get(ctx, "board")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != `[{"id":"1"}]` {
		t.Errorf("got %q", got)
	}
	if err := kv.Set(ctx, "board", "[]"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := kv.Get(ctx, "board"); got != "[]" {
		t.Errorf("after overwrite got %q", got)
	}
	if err := kv.Delete(ctx, "board"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := kv.Get(ctx, "board"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := kv.Delete(ctx, "board"); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	exerciseKV(t, kv)
	if kv.Writes() != 2 {
		t.Errorf("expected 2 writes, got %d", kv.Writes())
	}
}

func TestFileKV(t *testing.T) {
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "kv"))
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	exerciseKV(t, kv)
}

func TestFileKVLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	if err := kv.Set(context.Background(), "kanban-board-version", "3"); err != nil {
		t.Fatalf("set: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "kanban-board-version.json" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestFileKVRejectsUnsafeKeys(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		if err := kv.Set(context.Background(), key, "x"); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestSqliteKV(t *testing.T) {
	kv, err := OpenSqlite(filepath.Join(t.TempDir(), "corkboard.db"))
	if err != nil {
		t.Fatalf("OpenSqlite: %v", err)
	}
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestSqliteKVPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corkboard.db")
	kv, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("OpenSqlite: %v", err)
	}
	if err := kv.Set(context.Background(), "decisions", "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	kv.Close()

	kv, err = OpenSqlite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer kv.Close()
	got, err := kv.Get(context.Background(), "decisions")
	if err != nil || got != "[]" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestSqliteKVQueryFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectQuery("SELECT value FROM kv").
		WithArgs("board").
		WillReturnError(errors.New("disk I/O error"))

	kv := NewSqliteKV(sqlx.NewDb(mockDB, "sqlite3"))
	_, err = kv.Get(context.Background(), "board")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("a driver failure must not look like a missing key")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestSqliteKVUpsertFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectExec("INSERT INTO kv").
		WithArgs("board", "[]", sqlmock.AnyArg()).
		WillReturnError(errors.New("database is locked"))

	kv := NewSqliteKV(sqlx.NewDb(mockDB, "sqlite3"))
	if err := kv.Set(context.Background(), "board", "[]"); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("CORKBOARD_TEST_REDIS")
	if addr == "" {
		t.Skip("CORKBOARD_TEST_REDIS not set")
	}
	kv, err := OpenRedis(context.Background(), addr, "corkboard-test:"+t.Name()+":")
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestOpenRedisRequiresAddress(t *testing.T) {
	if _, err := OpenRedis(context.Background(), "  ", "x:"); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	kv, err := Open(ctx, Options{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := kv.(*MemoryKV); !ok {
		t.Errorf("expected *MemoryKV, got %T", kv)
	}

	kv, err = Open(ctx, Options{DataDir: dir})
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if _, ok := kv.(*FileKV); !ok {
		t.Errorf("expected *FileKV as default, got %T", kv)
	}

	kv, err = Open(ctx, Options{Backend: BackendSqlite, DataDir: dir})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	kv.Close()
	if _, err := os.Stat(filepath.Join(dir, "corkboard.db")); err != nil {
		t.Errorf("expected database file: %v", err)
	}

	if _, err := Open(ctx, Options{Backend: "etcd"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestLoadJSON(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	var dst []string
	found, err := LoadJSON(ctx, kv, "list", &dst)
	if err != nil || found {
		t.Fatalf("absent key: found=%v err=%v", found, err)
	}

	if err := SaveJSON(ctx, kv, "list", []string{"a", "b"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	found, err = LoadJSON(ctx, kv, "list", &dst)
	if err != nil || !found {
		t.Fatalf("present key: found=%v err=%v", found, err)
	}
	if len(dst) != 2 || dst[1] != "b" {
		t.Errorf("got %v", dst)
	}

	_ = kv.Set(ctx, "list", "{not json")
	found, err = LoadJSON(ctx, kv, "list", &dst)
	if !found || !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got found=%v err=%v", found, err)
	}
}

func TestLoadInt(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	n, err := LoadInt(ctx, kv, "v")
	if err != nil || n != 0 {
		t.Fatalf("absent: %d %v", n, err)
	}
	if err := SaveInt(ctx, kv, "v", 7); err != nil {
		t.Fatalf("save: %v", err)
	}
	if raw, _ := kv.Get(ctx, "v"); raw != "7" {
		t.Errorf("stored %q, want \"7\"", raw)
	}
	n, err = LoadInt(ctx, kv, "v")
	if err != nil || n != 7 {
		t.Errorf("got %d %v", n, err)
	}

	_ = kv.Set(ctx, "v", "seven")
	if _, err := LoadInt(ctx, kv, "v"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}
