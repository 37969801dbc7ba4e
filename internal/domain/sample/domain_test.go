package sample

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validReport() []byte {
	return []byte(`{"audits":{"interactive":{"numericValue":5000.5},"first-contentful-paint":{"numericValue":1500}}}`)
}

func TestValidateReport(t *testing.T) {
	require.NoError(t, ValidateReport(validReport()))

	require.Error(t, ValidateReport(nil))
	require.Error(t, ValidateReport([]byte(`{not json`)))

	err := ValidateReport([]byte(`{"runtimeError":{"code":"NO_FCP","message":"boom"},"audits":{"interactive":{"numericValue":1},"first-contentful-paint":{"numericValue":1}}}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "NO_FCP")

	err = ValidateReport([]byte(`{"audits":{"interactive":{"numericValue":1}}}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "first-contentful-paint")

	// metric present but with no numeric value
	err = ValidateReport([]byte(`{"audits":{"interactive":{},"first-contentful-paint":{"numericValue":1}}}`))
	require.Error(t, err)
}

func TestSampleValidate(t *testing.T) {
	s := &Sample{Report: validReport(), Trace: []byte(`{"traceEvents":[]}`)}
	require.NoError(t, s.Validate(SourceRemote))

	// local samples additionally need the devtools log
	require.Error(t, s.Validate(SourceLocal))
	s.Log = []byte(`[]`)
	require.NoError(t, s.Validate(SourceLocal))

	require.Error(t, (&Sample{Report: validReport()}).Validate(SourceRemote))
	require.Error(t, (&Sample{Trace: []byte("x")}).Validate(SourceRemote))
}

func TestResultSetComplete(t *testing.T) {
	rs := &ResultSet{Remote: []string{"a"}, Local: []string{"b"}}
	require.True(t, rs.Complete(2))  // min is ceil(2/2)=1
	require.False(t, rs.Complete(3)) // min is 2

	rs = &ResultSet{
		Remote: []string{"a", "b", "c", "d", "e"},
		Local:  []string{"a", "b", "c", "d"},
	}
	require.True(t, rs.Complete(9))
	rs.Local = rs.Local[:3]
	require.False(t, rs.Complete(9))
}

func TestRunSummaryFilter(t *testing.T) {
	s := &RunSummary{Results: []ResultSet{
		{URL: "https://a.test"},
		{URL: "https://gone.test"},
		{URL: "https://b.test"},
	}}

	dropped := s.Filter([]string{"https://a.test", "https://b.test", "https://new.test"})
	require.Equal(t, 1, dropped)
	require.True(t, s.Has("https://a.test"))
	require.True(t, s.Has("https://b.test"))
	require.False(t, s.Has("https://gone.test"))
	require.False(t, s.Has("https://new.test"))
	require.Len(t, s.Results, 2)
}
