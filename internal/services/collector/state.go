package collector

import (
	"context"
	"fmt"

	"github.com/NordCoder/Tracerus/internal/domain/sample"
	"go.uber.org/zap"
)

// URLCollector is the coordinator seen from the state manager.
type URLCollector interface {
	Collect(ctx context.Context, url string, index, total int) (*sample.ResultSet, error)
}

// Archiver packages the output directory once every URL is processed.
type Archiver interface {
	Archive(ctx context.Context) error
}

// StateManager owns the run summary: it loads prior progress, skips URLs
// already collected, and persists the summary after every completed URL so
// an interrupted run resumes where it stopped.
type StateManager struct {
	Log     *zap.Logger
	Summary sample.SummaryStore
	Coord   URLCollector
	Archive Archiver
	URLs    []string
}

func (m *StateManager) Run(ctx context.Context) error {
	sum, err := m.Summary.Load(ctx)
	if err != nil {
		return fmt.Errorf("load summary: %w", err)
	}
	if dropped := sum.Filter(m.URLs); dropped > 0 {
		m.Log.Info("dropped stale summary entries", zap.Int("count", dropped))
	}

	total := len(m.URLs)
	for i, u := range m.URLs {
		if sum.Has(u) {
			m.Log.Info("already collected, skipping", zap.String("url", u), zap.Int("url_index", i+1))
			continue
		}

		rs, err := m.Coord.Collect(ctx, u, i+1, total)
		if err != nil {
			return err
		}
		if rs == nil {
			// reported by the coordinator; the run moves on
			continue
		}

		sum.Append(*rs)
		if err := m.Summary.Save(ctx, sum); err != nil {
			return fmt.Errorf("persist summary: %w", err)
		}
	}

	if m.Archive != nil {
		if err := m.Archive.Archive(ctx); err != nil {
			return fmt.Errorf("archive output: %w", err)
		}
	}
	return nil
}
