// Package submission reads and writes prediction challenge submission files:
// a single JSON array of serialized predictions.
package submission

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilianp07/predsubmit/core/model"
)

// ErrInvalidName is returned for an empty submission name or one that
// contains a path separator.
var ErrInvalidName = errors.New("invalid submission name")

// Path returns <dir>/<name>_inference.json.
func Path(dir, name string) string {
	return filepath.Join(dir, name+"_inference.json")
}

// CheckName validates a submission name.
func CheckName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, os.PathSeparator) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// CheckDir verifies dir exists and is a directory.
func CheckDir(dir string) error {
	st, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("output dir %s: not a directory", dir)
	}
	return nil
}

// Write serializes preds as one JSON array to Path(dir, name) and returns the
// path. The array is written to a temporary file in dir and renamed over the
// target, so an existing file is replaced and a failed write leaves nothing
// behind.
func Write(dir, name string, preds []model.Prediction) (string, error) {
	if err := CheckName(name); err != nil {
		return "", err
	}
	if err := CheckDir(dir); err != nil {
		return "", err
	}
	if preds == nil {
		preds = []model.Prediction{}
	}
	path := Path(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+"_inference-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create submission: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := json.NewEncoder(tmp).Encode(preds); err != nil {
		return "", fmt.Errorf("encode submission: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync submission: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close submission: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("chmod submission: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("rename submission: %w", err)
	}
	committed = true
	return path, nil
}

// Read parses a submission file.
func Read(path string) ([]model.Prediction, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var preds []model.Prediction
	if err := json.Unmarshal(b, &preds); err != nil {
		return nil, fmt.Errorf("decode submission %s: %w", path, err)
	}
	if preds == nil {
		preds = []model.Prediction{}
	}
	return preds, nil
}

// Validate checks every prediction. When horizonPoints is positive each mode
// must contain exactly that many points. Tokens must be unique.
func Validate(preds []model.Prediction, horizonPoints int) error {
	seen := make(map[string]int, len(preds))
	var errs []error
	for i, p := range preds {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		if j, dup := seen[p.Token()]; dup {
			errs = append(errs, fmt.Errorf("entry %d: token %s duplicates entry %d", i, p.Token(), j))
		}
		seen[p.Token()] = i
		if horizonPoints <= 0 {
			continue
		}
		for m, mode := range p.Modes {
			if len(mode) != horizonPoints {
				errs = append(errs, fmt.Errorf("entry %d: mode %d has %d points, want %d", i, m, len(mode), horizonPoints))
			}
		}
	}
	return errors.Join(errs...)
}
