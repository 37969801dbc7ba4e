package webpagetest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NordCoder/Tracerus/internal/domain/sample"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testReport = `{"audits":{"interactive":{"numericValue":4000},"first-contentful-paint":{"numericValue":1200}}}`

func newTestClient(t *testing.T, srv *httptest.Server) (*Client, *[]time.Duration) {
	t.Helper()
	c := New(Config{
		BaseURL:   srv.URL,
		Key:       "test-key",
		Location:  "Dulles_MotoG6:Moto G (gen 6) - Chrome.3GFast",
		Timeout:   5 * time.Second,
		UserAgent: "Tracerus/test",
	}, zap.NewNop())

	waits := &[]time.Duration{}
	c.sleep = func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return c, waits
}

func TestFetchPollsUntilTerminal(t *testing.T) {
	var polls atomic.Int32
	traceBody := []byte(`{"traceEvents":[{"ph":"X"}]}`)

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/runtest.php", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.URL.Query().Get("k"))
		require.Equal(t, "1", r.URL.Query().Get("runs"))
		require.Equal(t, "1", r.URL.Query().Get("fvonly"))
		require.Equal(t, "1", r.URL.Query().Get("lighthouse"))
		fmt.Fprintf(w, `{"statusCode":200,"data":{"testId":"T1","jsonUrl":%q}}`, srv.URL+"/jsonResult.php?test=T1")
	})
	mux.HandleFunc("/jsonResult.php", func(w http.ResponseWriter, _ *http.Request) {
		if polls.Add(1) == 1 {
			fmt.Fprint(w, `{"statusCode":150,"statusText":"Testing","data":{"behindCount":2}}`)
			return
		}
		fmt.Fprintf(w, `{"statusCode":200,"data":{"lighthouse":%s}}`, testReport)
	})
	mux.HandleFunc("/getgzip.php", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "T1", r.URL.Query().Get("test"))
		require.Equal(t, "lighthouse_trace.json", r.URL.Query().Get("file"))
		w.Write(traceBody)
	})

	c, waits := newTestClient(t, srv)
	s, err := c.Fetch(context.Background(), "https://example.com")
	require.NoError(t, err)

	// status 150 with two tests ahead means a 30 + 2*10 second wait
	require.Equal(t, []time.Duration{50 * time.Second}, *waits)
	require.JSONEq(t, testReport, string(s.Report))
	require.Equal(t, traceBody, s.Trace)
	require.Nil(t, s.Log)
}

func TestFetchSubmissionRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/runtest.php", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"statusCode":400,"statusText":"Invalid API key"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, _ := newTestClient(t, srv)
	_, err := c.Fetch(context.Background(), "https://example.com")
	var serr *sample.SubmissionError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, 400, serr.Status)
}

func TestFetchUnexpectedStatus(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/runtest.php", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"statusCode":200,"data":{"testId":"T2","jsonUrl":%q}}`, srv.URL+"/jsonResult.php?test=T2")
	})
	mux.HandleFunc("/jsonResult.php", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"statusCode":400,"statusText":"Test not found"}`)
	})

	c, _ := newTestClient(t, srv)
	_, err := c.Fetch(context.Background(), "https://example.com")
	var uerr *sample.UnexpectedStatusError
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, 400, uerr.Code)
}

func TestFetchInvalidReport(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	bad, _ := json.Marshal(map[string]any{
		"runtimeError": map[string]string{"code": "NO_FCP", "message": "no paint"},
		"audits":       map[string]any{},
	})
	mux.HandleFunc("/runtest.php", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"statusCode":200,"data":{"testId":"T3","jsonUrl":%q}}`, srv.URL+"/jsonResult.php?test=T3")
	})
	mux.HandleFunc("/jsonResult.php", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"statusCode":200,"data":{"lighthouse":%s}}`, bad)
	})

	c, _ := newTestClient(t, srv)
	_, err := c.Fetch(context.Background(), "https://example.com")
	var verr *sample.ValidationError
	require.ErrorAs(t, err, &verr)
}
