package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/NordCoder/Tracerus/internal/domain/sample"
)

// SummaryFile persists the run summary as one JSON document, replaced
// whole on every save. The write goes through a temp file and rename so a
// crash mid-save never leaves a truncated summary behind.
type SummaryFile struct {
	path string
}

func NewSummaryFile(path string) *SummaryFile {
	return &SummaryFile{path: path}
}

func (f *SummaryFile) Load(_ context.Context) (*sample.RunSummary, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return &sample.RunSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	var s sample.RunSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse summary %s: %w", f.path, err)
	}
	return &s, nil
}

func (f *SummaryFile) Save(_ context.Context, s *sample.RunSummary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace summary: %w", err)
	}
	return nil
}
