package datamodel

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Product file suffixes. Per-member analysis results get SuffixAmi;
// averaged products get the per-role average suffixes; the normalized
// product gets SuffixAmiNorm.
const (
	SuffixAmi     = "ami"
	SuffixPSFAvg  = "psf-amiavg"
	SuffixAmiAvg  = "amiavg"
	SuffixAmiNorm = "aminorm"
)

const defaultCacheSize = 64

// PersistError reports a failed product write or read.
type PersistError struct {
	Path  string
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *PersistError) Error() string {
	return fmt.Sprintf("product %s failed for %s: %v", e.Op, e.Path, e.Cause)
}

// Unwrap returns the underlying error.
func (e *PersistError) Unwrap() error {
	return e.Cause
}

// FileStore persists AMI products as JSON files under a single output
// directory and serves reads through a small LRU cache. Averaging and
// blending both re-read per-member artifacts, so repeated loads of the
// same artifact are common within one run.
type FileStore struct {
	dir    string
	logger *slog.Logger
	cache  *lru.Cache[ArtifactRef, *AmiResult]
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &PersistError{Path: dir, Op: "mkdir", Cause: err}
	}
	cache, err := lru.New[ArtifactRef, *AmiResult](defaultCacheSize)
	if err != nil {
		return nil, err
	}
	return &FileStore{
		dir:    dir,
		logger: logger.With(slog.String("component", "file_store")),
		cache:  cache,
	}, nil
}

// Save writes a result as <base>_<suffix>.json, where base is baseName
// stripped of any extension. The write goes through a temporary file and
// rename so a crashing run never leaves a truncated product behind.
func (s *FileStore) Save(result *AmiResult, baseName, suffix, asnID string) (ArtifactRef, error) {
	base := strings.TrimSuffix(filepath.Base(baseName), filepath.Ext(baseName))
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", base, suffix))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", &PersistError{Path: path, Op: "encode", Cause: err}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", &PersistError{Path: path, Op: "write", Cause: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", &PersistError{Path: path, Op: "rename", Cause: err}
	}

	ref := ArtifactRef(path)
	// Cache a copy so a caller closing its result after save does not
	// invalidate the cached artifact.
	cached := *result
	s.cache.Add(ref, &cached)

	s.logger.Debug("product_saved",
		slog.String("path", path),
		slog.String("suffix", suffix),
		slog.String("association_id", asnID))

	return ref, nil
}

// Load reads a persisted result, serving repeated reads from the cache.
func (s *FileStore) Load(ref ArtifactRef) (*AmiResult, error) {
	if result, ok := s.cache.Get(ref); ok {
		return result, nil
	}

	data, err := os.ReadFile(string(ref))
	if err != nil {
		return nil, &PersistError{Path: string(ref), Op: "read", Cause: err}
	}

	var result AmiResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &PersistError{Path: string(ref), Op: "decode", Cause: err}
	}

	s.cache.Add(ref, &result)
	return &result, nil
}

// Dir returns the store's output directory.
func (s *FileStore) Dir() string {
	return s.dir
}
