// ABOUTME: Typed helpers that serialize whole collections and integer markers through a KV.
// ABOUTME: Decode failures are classified as ErrCorrupt naming the key, never surfaced as raw parse errors.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// LoadJSON decodes the value at key into dst. found is false when the key
// has never been written.
func LoadJSON(ctx context.Context, kv KV, key string, dst any) (found bool, err error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// SaveJSON serializes v and writes it to key.
func SaveJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(data))
}

// LoadInt reads an integer marker, returning 0 when the key is absent.
func LoadInt(ctx context.Context, kv KV, key string) (int, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return n, nil
}

// SaveInt writes an integer marker as a decimal string.
func SaveInt(ctx context.Context, kv KV, key string, n int) error {
	return kv.Set(ctx, key, strconv.Itoa(n))
}
