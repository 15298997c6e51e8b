package domain

import "time"

// AttemptOutcome classifies how a single backend attempt ended.
type AttemptOutcome string

const (
	OutcomeSuccess          AttemptOutcome = "success"
	OutcomeSizeExceeded     AttemptOutcome = "size_exceeded"
	OutcomeDurationExceeded AttemptOutcome = "duration_exceeded"
	OutcomeExtractionFailed AttemptOutcome = "extraction_failed"
	OutcomeNetworkError     AttemptOutcome = "network_error"
	OutcomeFileSystemError  AttemptOutcome = "filesystem_error"
	OutcomeNotSupported     AttemptOutcome = "not_supported"
)

// BackendAttempt is one entry in the per-request attempt log. The log is
// append-only and lives only for the duration of the call.
type BackendAttempt struct {
	Backend     BackendName    `json:"backend"`
	Seq         int            `json:"seq"`
	StartedAt   time.Time      `json:"started_at"`
	Outcome     AttemptOutcome `json:"outcome"`
	ErrorDetail string         `json:"error_detail,omitempty"`
}
