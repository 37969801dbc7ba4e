package webpagetest

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/NordCoder/Tracerus/internal/domain/sample"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Fixed submission profile: one throttled run on an emulated mobile
// device, analysis report and trace capture on, repeat view off.
const (
	runCount      = "1"
	firstViewOnly = "1"
	testType      = "lighthouse"
	traceArtifact = "lighthouse_trace.json"
)

// Poll pacing: base wait plus a per-queue-slot penalty when the service
// reports how many tests are ahead of ours.
const (
	pollBaseWait     = 30 * time.Second
	pollPerQueueSlot = 10 * time.Second
)

type Config struct {
	BaseURL   string
	Key       string
	Location  string
	Timeout   time.Duration
	UserAgent string
}

// Client drives one test through the remote queue: submit, poll the
// status URL until terminal, then pull the trace artifact.
type Client struct {
	cfg   Config
	httpc *http.Client
	log   *zap.Logger

	// sleep is the poll-backoff suspension; swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg Config, log *zap.Logger) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
	return &Client{
		cfg: cfg,
		httpc: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		log:   log,
		sleep: sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// submitResponse is the queue's answer to a test submission.
type submitResponse struct {
	StatusCode int    `json:"statusCode"`
	StatusText string `json:"statusText"`
	Data       struct {
		TestID  string `json:"testId"`
		JSONURL string `json:"jsonUrl"`
	} `json:"data"`
}

// statusResponse is one poll of the test's status URL. Lighthouse is the
// raw report on terminal success; BehindCount is how many tests are
// queued ahead while the test is pending.
type statusResponse struct {
	StatusCode int    `json:"statusCode"`
	StatusText string `json:"statusText"`
	Data       struct {
		BehindCount int             `json:"behindCount"`
		Lighthouse  json.RawMessage `json:"lighthouse"`
	} `json:"data"`
}

// Fetch submits one test for pageURL and blocks until it settles. The
// poll loop is unbounded; only the caller's retry cap limits whole
// attempts. Abandoned remote jobs are not cancelled.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*sample.Sample, error) {
	testID, statusURL, err := c.submit(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	c.log.Debug("test submitted", zap.String("url", pageURL), zap.String("test_id", testID))

	report, err := c.poll(ctx, statusURL)
	if err != nil {
		return nil, err
	}

	if err := sample.ValidateReport(report); err != nil {
		return nil, err
	}

	trace, err := c.fetchTrace(ctx, testID)
	if err != nil {
		return nil, err
	}

	s := &sample.Sample{Report: report, Trace: trace}
	if err := s.Validate(sample.SourceRemote); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Client) submit(ctx context.Context, pageURL string) (testID, statusURL string, err error) {
	q := url.Values{}
	q.Set("k", c.cfg.Key)
	q.Set("f", "json")
	q.Set("url", pageURL)
	q.Set("location", c.cfg.Location)
	q.Set("runs", runCount)
	q.Set("fvonly", firstViewOnly)
	q.Set("lighthouse", "1")
	q.Set("lighthouseTrace", "1")
	q.Set("type", testType)

	body, status, err := c.get(ctx, c.cfg.BaseURL+"/runtest.php?"+q.Encode())
	if err != nil {
		return "", "", &sample.SubmissionError{Status: status, Msg: err.Error()}
	}

	var resp submitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", &sample.SubmissionError{Status: status, Msg: "malformed submission response"}
	}
	if resp.StatusCode != http.StatusOK || resp.Data.TestID == "" {
		return "", "", &sample.SubmissionError{Status: resp.StatusCode, Msg: resp.StatusText}
	}
	return resp.Data.TestID, resp.Data.JSONURL, nil
}

func (c *Client) poll(ctx context.Context, statusURL string) (json.RawMessage, error) {
	for {
		body, _, err := c.get(ctx, statusURL)
		if err != nil {
			return nil, fmt.Errorf("poll status: %w", err)
		}
		var resp statusResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("parse status: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return resp.Data.Lighthouse, nil
		case resp.StatusCode >= 100 && resp.StatusCode < 200:
			wait := pollBaseWait + time.Duration(resp.Data.BehindCount)*pollPerQueueSlot
			c.log.Debug("test pending",
				zap.Int("status", resp.StatusCode),
				zap.Int("behind", resp.Data.BehindCount),
				zap.Duration("wait", wait))
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		default:
			return nil, &sample.UnexpectedStatusError{Code: resp.StatusCode}
		}
	}
}

func (c *Client) fetchTrace(ctx context.Context, testID string) ([]byte, error) {
	q := url.Values{}
	q.Set("test", testID)
	q.Set("file", traceArtifact)
	body, _, err := c.get(ctx, c.cfg.BaseURL+"/getgzip.php?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch trace: %w", err)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("http %d", resp.StatusCode)
	}
	return body, resp.StatusCode, nil
}
