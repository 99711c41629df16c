// Package runlog keeps the JSON array of published videos.
package runlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"clipbot/types"
)

var mu sync.Mutex

// Append adds record to the JSON array stored at path, creating the file when missing.
func Append(path string, record types.RunRecord) error {
	mu.Lock()
	defer mu.Unlock()

	records, err := read(path)
	if err != nil {
		return err
	}
	records = append(records, record)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode run log: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create run log dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write run log: %w", err)
	}
	return os.Rename(tmp, path)
}

// Recent returns the last n records, oldest first. n <= 0 returns everything.
func Recent(path string, n int) ([]types.RunRecord, error) {
	mu.Lock()
	defer mu.Unlock()

	records, err := read(path)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}
	return records, nil
}

func read(path string) ([]types.RunRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run log: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []types.RunRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse run log %s: %w", path, err)
	}
	return records, nil
}
