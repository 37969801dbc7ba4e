package sample

import "fmt"

// SubmissionError means the remote queue rejected a new job.
type SubmissionError struct {
	Status int
	Msg    string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("job submission rejected: status=%d %s", e.Status, e.Msg)
}

// UnexpectedStatusError means the remote queue answered a status poll with
// a code outside both the terminal and the in-progress ranges.
type UnexpectedStatusError struct {
	Code int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected test status %d", e.Code)
}

// ValidationError means a fetched report failed the validity contract.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid sample: " + e.Reason
}

// ArtifactMissingError means the local tool exited without writing an
// expected artifact file.
type ArtifactMissingError struct {
	Path string
}

func (e *ArtifactMissingError) Error() string {
	return "expected artifact missing: " + e.Path
}
