package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NordCoder/Tracerus/internal/domain/sample"
)

// Component file suffixes under the artifact directory.
const (
	KindReport = "report"
	KindTrace  = "trace"
	KindLog    = "devtoolslog"
)

// Dir stores sample payloads as flat files. Every (url, source, index)
// triple maps to a unique base name, so concurrent writers never collide.
type Dir struct {
	root string
}

func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) Root() string { return d.root }

// Save writes the sample's components and returns the base name the
// ResultSet references. index is 1-based within the sample's source.
func (d *Dir) Save(url string, src sample.Source, index int, s *sample.Sample) (string, error) {
	base := fmt.Sprintf("%s-%s-%d", SanitizeURL(url), src, index)
	if err := d.write(base, KindReport, s.Report); err != nil {
		return "", err
	}
	if err := d.write(base, KindTrace, s.Trace); err != nil {
		return "", err
	}
	if len(s.Log) > 0 {
		if err := d.write(base, KindLog, s.Log); err != nil {
			return "", err
		}
	}
	return base, nil
}

// Read returns one saved component exactly as it was written.
func (d *Dir) Read(base, kind string) ([]byte, error) {
	return os.ReadFile(d.path(base, kind))
}

func (d *Dir) write(base, kind string, data []byte) error {
	p := d.path(base, kind)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

func (d *Dir) path(base, kind string) string {
	return filepath.Join(d.root, base+"."+kind+".json")
}

// SanitizeURL turns a URL into a filesystem-safe token: scheme stripped,
// everything outside [a-zA-Z0-9] collapsed to underscores.
func SanitizeURL(u string) string {
	s := strings.TrimPrefix(u, "https://")
	s = strings.TrimPrefix(s, "http://")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
