package collector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NordCoder/Tracerus/internal/domain/sample"
	"github.com/NordCoder/Tracerus/internal/obs"
	"github.com/NordCoder/Tracerus/internal/obs/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	mSamples = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collector_samples_total", Help: "Samples obtained and saved.",
	}, []string{"source"})
	mEmptySlots = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collector_empty_slots_total", Help: "Sample slots that exhausted all retries.",
	}, []string{"source"})
	mDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_urls_discarded_total", Help: "URLs dropped for falling below the sample threshold.",
	})
	mCollectDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "collector_url_duration_seconds", Help: "Full per-URL collection duration.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 14),
	})
)

// Coordinator drives sample collection for one URL at a time: all remote
// attempts in flight together, local attempts strictly one after another,
// with the local phase gated on the first remote attempt settling so both
// sources observe the page close in time.
type Coordinator struct {
	Log      *zap.Logger
	Remote   sample.Fetcher
	Local    sample.Fetcher
	Store    sample.ArtifactStore
	Progress Progress
	Samples  int
}

// Collect gathers up to Samples samples per source for url. It returns
// (nil, nil) when either source stays below ceil(Samples/2) and the URL's
// results are discarded. Errors are fatal (storage failures, cancellation);
// fetch failures never surface here, they degrade to empty slots.
func (c *Coordinator) Collect(ctx context.Context, url string, index, total int) (*sample.ResultSet, error) {
	start := time.Now()
	defer func() { mCollectDur.Observe(time.Since(start).Seconds()) }()

	tr := otel.Tracer("collector.coordinator")
	ctx, span := tr.Start(ctx, "collect.url")
	span.SetAttributes(
		attribute.String("collect.url", url),
		attribute.Int("collect.index", index),
		attribute.Int("collect.total", total),
	)
	defer span.End()

	log := obs.WithTrace(ctx, c.Log).With(zap.String("url", url))
	target := c.Samples

	remoteRefs := make([]string, target)
	localRefs := make([]string, target)
	var remoteOK, localOK atomic.Int32

	emit := func() {
		c.Progress.Update(Update{
			URL:      url,
			URLIndex: index,
			URLTotal: total,
			Target:   target,
			RemoteOK: int(remoteOK.Load()),
			LocalOK:  int(localOK.Load()),
		})
	}

	// first-of-N join: the local phase starts once any remote attempt
	// has settled, then the full-N join happens after the local phase.
	firstSettle := make(chan struct{})
	var settleOnce sync.Once

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < target; i++ {
		slot := i + 1
		g.Go(func() error {
			s := c.fetchWithRetry(gctx, c.Remote, url, fmt.Sprintf("remote-%d", slot))
			settleOnce.Do(func() { close(firstSettle) })
			if s == nil {
				mEmptySlots.WithLabelValues(string(sample.SourceRemote)).Inc()
				emit()
				return nil
			}
			ref, err := c.Store.Save(url, sample.SourceRemote, slot, s)
			if err != nil {
				return err
			}
			remoteRefs[slot-1] = ref
			remoteOK.Add(1)
			mSamples.WithLabelValues(string(sample.SourceRemote)).Inc()
			emit()
			return nil
		})
	}

	if target > 0 {
		select {
		case <-firstSettle:
		case <-gctx.Done():
		}
	}

	var localErr error
	for i := 0; i < target && gctx.Err() == nil; i++ {
		slot := i + 1
		s := c.fetchWithRetry(ctx, c.Local, url, fmt.Sprintf("local-%d", slot))
		if s == nil {
			mEmptySlots.WithLabelValues(string(sample.SourceLocal)).Inc()
			emit()
			continue
		}
		ref, err := c.Store.Save(url, sample.SourceLocal, slot, s)
		if err != nil {
			localErr = err
			break
		}
		localRefs[slot-1] = ref
		localOK.Add(1)
		mSamples.WithLabelValues(string(sample.SourceLocal)).Inc()
		emit()
	}

	// full-N join: the remaining remote attempts usually settled while
	// the local phase ran.
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if localErr != nil {
		span.RecordError(localErr)
		return nil, localErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs := &sample.ResultSet{
		URL:    url,
		Remote: compact(remoteRefs),
		Local:  compact(localRefs),
	}
	if !rs.Complete(target) {
		mDiscarded.Inc()
		span.SetAttributes(attribute.Bool("collect.discarded", true))
		log.Warn("below sample threshold, discarding url results",
			zap.Int("remote", len(rs.Remote)),
			zap.Int("local", len(rs.Local)),
			zap.Int("target", target),
		)
		return nil, nil
	}

	log.Info("url collected",
		zap.Int("remote", len(rs.Remote)),
		zap.Int("local", len(rs.Local)),
		zap.Duration("took", time.Since(start)),
	)
	return rs, nil
}

// fetchWithRetry runs one bounded-retry fetch slot. Past the attempt cap
// it yields nil rather than an error: an exhausted slot produces nothing
// and must not abort the URL.
func (c *Coordinator) fetchWithRetry(ctx context.Context, f sample.Fetcher, url, name string) *sample.Sample {
	var s *sample.Sample
	err := retry.Do(ctx, func() error {
		got, ferr := f.Fetch(ctx, url)
		if ferr != nil {
			return ferr
		}
		s = got
		return nil
	}, retry.FetchPolicy(name, c.Log))
	if err != nil {
		return nil
	}
	return s
}

func compact(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
