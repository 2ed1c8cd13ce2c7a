// ABOUTME: KV is the key-value collaborator every record store persists through, plus backend selection.
// ABOUTME: Backends: in-memory map, per-key files, SQLite table, and Redis strings.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

var (
	// ErrNotFound is returned by Get when the key has never been set.
	ErrNotFound = errors.New("key not found")
	// ErrCorrupt classifies a stored value that cannot be decoded or fails
	// validation.
	ErrCorrupt = errors.New("corrupt stored value")
	// ErrInvalidKey is returned for keys a backend cannot address.
	ErrInvalidKey = errors.New("invalid storage key")
)

// KV is a string key-value store. Every value is written and read wholesale.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSqlite = "sqlite"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	DataDir     string // file and sqlite backends
	RedisAddr   string
	RedisPrefix string
}

// Open constructs the configured backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryKV(), nil
	case BackendFile, "":
		return NewFileKV(filepath.Join(opts.DataDir, "kv"))
	case BackendSqlite:
		return OpenSqlite(filepath.Join(opts.DataDir, "corkboard.db"))
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
