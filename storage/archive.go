package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"clipbot/config"
	"clipbot/logger"
	"clipbot/types"
)

// Archiver copies a run's outputs to the bucket under <prefix>/runs/<run_id>/.
type Archiver struct {
	store  *S3
	prefix string
	log    *logger.Logger
}

// ArchiveConfigFromEnv reads S3_BUCKET, S3_PREFIX, S3_REGION, S3_PROFILE,
// S3_ENDPOINT and S3_PATH_STYLE. An empty bucket disables archiving.
func ArchiveConfigFromEnv() S3Config {
	return S3Config{
		Bucket:       config.GetEnvOrDefault("S3_BUCKET", ""),
		Prefix:       config.GetEnvOrDefault("S3_PREFIX", "clipbot"),
		Region:       config.GetEnvOrDefault("S3_REGION", ""),
		Profile:      config.GetEnvOrDefault("S3_PROFILE", ""),
		Endpoint:     config.GetEnvOrDefault("S3_ENDPOINT", ""),
		UsePathStyle: config.GetEnvBool("S3_PATH_STYLE", false),
	}
}

// NewArchiver returns nil when no bucket is configured.
func NewArchiver(ctx context.Context, cfg S3Config, log *logger.Logger) (*Archiver, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}
	store, err := NewS3(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return &Archiver{store: store, prefix: cfg.Prefix, log: log}, nil
}

func newArchiverWithStore(store *S3, prefix string, log *logger.Logger) *Archiver {
	return &Archiver{store: store, prefix: prefix, log: log}
}

// RunPrefix is the key prefix for one run.
func (a *Archiver) RunPrefix(runID string) string {
	return path.Join(strings.Trim(a.prefix, "/"), "runs", runID) + "/"
}

// Archive uploads each file plus the run record as record.json and returns
// the uploaded keys. Missing files are skipped with a warning.
func (a *Archiver) Archive(ctx context.Context, record types.RunRecord, files ...string) ([]string, error) {
	if a == nil {
		return nil, nil
	}
	prefix := a.RunPrefix(record.RunID)
	var keys []string

	for _, f := range files {
		if f == "" {
			continue
		}
		data, err := os.ReadFile(f)
		if err != nil {
			a.log.Warn("⚠️ skipping archive file", "file", f, "error", err)
			continue
		}
		key := prefix + filepath.Base(f)
		if err := a.store.Put(ctx, key, bytes.NewReader(data), mime.TypeByExtension(filepath.Ext(f))); err != nil {
			return keys, fmt.Errorf("failed to upload %s: %w", key, err)
		}
		keys = append(keys, key)
	}

	body, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return keys, err
	}
	key := prefix + "record.json"
	if err := a.store.Put(ctx, key, bytes.NewReader(body), "application/json"); err != nil {
		return keys, fmt.Errorf("failed to upload %s: %w", key, err)
	}
	keys = append(keys, key)

	a.log.Info("🗄️ run archived", "bucket", a.store.Bucket(), "prefix", prefix, "objects", len(keys))
	return keys, nil
}

// Archived reports whether a run's record already exists in the bucket.
func (a *Archiver) Archived(ctx context.Context, runID string) (bool, error) {
	return a.store.Exists(ctx, a.RunPrefix(runID)+"record.json")
}

// Runs lists the archived keys for a run.
func (a *Archiver) Runs(ctx context.Context, runID string) ([]string, error) {
	return a.store.List(ctx, a.RunPrefix(runID))
}
