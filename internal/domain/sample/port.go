package sample

import "context"

// Fetcher produces one Sample for a URL, or fails. Both the remote-queue
// client and the local CLI runner implement it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Sample, error)
}

// ArtifactStore persists sample payloads and hands back the storage
// reference the ResultSet keeps.
type ArtifactStore interface {
	Save(url string, src Source, index int, s *Sample) (string, error)
}

// SummaryStore is the load/save contract for run progress.
type SummaryStore interface {
	Load(ctx context.Context) (*RunSummary, error)
	Save(ctx context.Context, s *RunSummary) error
}
