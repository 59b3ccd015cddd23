// internal/models/answer.go
package models

// BackendKind identifies one of the two knowledge systems.
type BackendKind string

const (
	BackendStructured BackendKind = "STRUCTURED"
	BackendSemantic   BackendKind = "SEMANTIC"
)

// ResultStatus is the normalized outcome of one backend invocation.
type ResultStatus string

const (
	StatusOK       ResultStatus = "OK"
	StatusFailed   ResultStatus = "FAILED"
	StatusTimedOut ResultStatus = "TIMED_OUT"
)

// Citation points an answer fragment back to its source record or document.
type Citation struct {
	SourceDocumentID string   `json:"sourceDocumentId"`
	Excerpt          string   `json:"excerpt,omitempty"`
	Confidence       *float64 `json:"confidence,omitempty"`
}

// BackendResult is produced by every adapter call, success or not.
// RemoteSessionID carries the backend's own conversation handle so the
// next turn can resume the remote session.
type BackendResult struct {
	Source          BackendKind  `json:"source"`
	Status          ResultStatus `json:"status"`
	Content         string       `json:"content,omitempty"`
	Citations       []Citation   `json:"citations,omitempty"`
	LatencyMs       int64        `json:"latencyMs"`
	ErrorCode       string       `json:"errorCode,omitempty"`
	RemoteSessionID string       `json:"remoteSessionId,omitempty"`
}

// OK reports whether the invocation succeeded.
func (r BackendResult) OK() bool {
	return r.Status == StatusOK
}

// Answer is the terminal value returned to the caller.
type Answer struct {
	Text                string        `json:"text"`
	ContributingSources []BackendKind `json:"contributingSources"`
	Citations           []Citation    `json:"citations"`
	Degraded            bool          `json:"degraded"`
}
