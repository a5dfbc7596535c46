// Package output writes the pipeline's published artifacts: the
// aggregated feed JSON (optionally sharded by category) and its sidecar
// report, both replaced atomically so a reader never observes a
// partially written file.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"feedagg/internal/domain"
)

// WriteJSON serializes v to path using a write-to-temp-file-then-rename
// sequence, so concurrent readers only ever see the old or the new
// complete file, never a partial write.
func WriteJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encode json to %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpPath, path, err)
	}
	return nil
}

// WriteFeed writes the full aggregated item set to path (typically
// feed/<category>.json).
func WriteFeed(path string, items []domain.NormalizedItem) error {
	if items == nil {
		items = []domain.NormalizedItem{}
	}
	return WriteJSON(path, items)
}

// WriteShards groups items by category and writes one file per category
// under baseDir/category/<category>.json.
func WriteShards(baseDir string, items []domain.NormalizedItem) error {
	byCategory := make(map[string][]domain.NormalizedItem)
	for _, item := range items {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	for category, shard := range byCategory {
		path := filepath.Join(baseDir, "category", category+".json")
		if err := WriteFeed(path, shard); err != nil {
			return fmt.Errorf("write shard %s: %w", category, err)
		}
	}
	return nil
}
