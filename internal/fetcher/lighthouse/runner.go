package lighthouse

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/NordCoder/Tracerus/internal/domain/sample"
	"go.uber.org/zap"
)

// Asset files the tool writes under the asset directory on every run.
const (
	devtoolsLogFile = "defaultPass.devtoolslog.json"
	traceFile       = "defaultPass.trace.json"
)

type Config struct {
	Bin              string
	AssetDir         string
	DisableIsolation bool
}

// Runner invokes the analysis CLI for one URL with throttling disabled
// (the deliberate contrast to the remote queue's throttled profile). The
// report arrives on stdout; the devtools log and trace are picked up from
// the asset directory afterwards.
type Runner struct {
	cfg Config
	log *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

func (r *Runner) Fetch(ctx context.Context, pageURL string) (*sample.Sample, error) {
	args := []string{
		pageURL,
		"--throttling-method=provided",
		"--output=json",
		"-GA=" + r.cfg.AssetDir,
	}
	if r.cfg.DisableIsolation {
		args = append(args, "--chrome-flags=--disable-features=site-per-process")
	}

	cmd := exec.CommandContext(ctx, r.cfg.Bin, args...)
	// stdout holds the whole report, which can run to tens of megabytes;
	// buffer it in full rather than streaming with a line limit.
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug("running analysis tool", zap.String("url", pageURL), zap.String("bin", r.cfg.Bin))
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("analysis tool: %w: %s", err, firstLine(stderr.Bytes()))
	}

	report := stdout.Bytes()
	if err := sample.ValidateReport(report); err != nil {
		return nil, err
	}

	log, err := r.readAsset(devtoolsLogFile)
	if err != nil {
		return nil, err
	}
	trace, err := r.readAsset(traceFile)
	if err != nil {
		return nil, err
	}

	s := &sample.Sample{Report: report, Trace: trace, Log: log}
	if err := s.Validate(sample.SourceLocal); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Runner) readAsset(name string) ([]byte, error) {
	p := filepath.Join(r.cfg.AssetDir, name)
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, &sample.ArtifactMissingError{Path: p}
	}
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	return data, nil
}

func firstLine(b []byte) []byte {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i]
	}
	return b
}
