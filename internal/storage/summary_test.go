package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/NordCoder/Tracerus/internal/domain/sample"
	"github.com/stretchr/testify/require"
)

func TestSummaryLoadMissingFile(t *testing.T) {
	f := NewSummaryFile(filepath.Join(t.TempDir(), "summary.json"))
	s, err := f.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, s.Results)
}

func TestSummarySaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := NewSummaryFile(filepath.Join(t.TempDir(), "nested", "summary.json"))

	in := &sample.RunSummary{Results: []sample.ResultSet{
		{URL: "https://a.test", Remote: []string{"a-remote-1", "a-remote-2"}, Local: []string{"a-local-1"}},
		{URL: "https://b.test", Remote: []string{"b-remote-1"}, Local: []string{"b-local-1"}},
	}}
	require.NoError(t, f.Save(ctx, in))

	out, err := f.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, in, out)

	// each save replaces the document whole
	in.Append(sample.ResultSet{URL: "https://c.test"})
	require.NoError(t, f.Save(ctx, in))
	out, err = f.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out.Results, 3)
}

func TestSummaryLoadCorrupt(t *testing.T) {
	f := NewSummaryFile(filepath.Join(t.TempDir(), "summary.json"))
	require.NoError(t, os.WriteFile(f.path, []byte("{nope"), 0o644))
	_, err := f.Load(context.Background())
	require.Error(t, err)
}
