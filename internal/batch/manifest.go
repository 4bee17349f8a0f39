package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"holoquilt/internal/quilt"
)

// Manifest describes one batch run.
type Manifest struct {
	RunID   string          `json:"run_id"`
	Created time.Time       `json:"created"`
	Quilt   quilt.Settings  `json:"quilt"`
	Frames  []ManifestEntry `json:"frames"`
	Failed  int             `json:"failed"`
}

// ManifestEntry represents one frame in the output manifest.
type ManifestEntry struct {
	Frame      string `json:"frame"`
	Views      int    `json:"views"`
	Image      string `json:"image,omitempty"`
	Lightfield string `json:"lightfield,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewRunID returns a fresh identifier for a batch run.
func NewRunID() string {
	return uuid.NewString()
}

// WriteManifest writes the manifest JSON to path. Output paths are stored
// relative to the manifest's directory when possible.
func WriteManifest(path, runID string, s quilt.Settings, results []Result) error {
	base := filepath.Dir(path)
	m := Manifest{
		RunID:   runID,
		Created: time.Now().UTC(),
		Quilt:   s,
		Frames:  make([]ManifestEntry, len(results)),
	}
	for i, r := range results {
		m.Frames[i] = ManifestEntry{
			Frame:      r.Frame,
			Views:      r.Views,
			Image:      relTo(base, r.Output),
			Lightfield: relTo(base, r.Lightfield),
			Error:      r.Error,
		}
		if !r.Success {
			m.Failed++
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write %s: %w", path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("batch: read %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("batch: parse %s: %w", path, err)
	}
	return m, nil
}

func relTo(base, path string) string {
	if path == "" {
		return ""
	}
	if rel, err := filepath.Rel(base, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
