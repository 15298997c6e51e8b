package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind is the taxonomy every backend failure is folded into at the
// attempt boundary. Nothing else crosses into the retry loop.
type ErrorKind string

const (
	KindUnsupportedPlatform ErrorKind = "unsupported_platform"
	KindBackendUnavailable  ErrorKind = "backend_unavailable"
	KindSizeExceeded        ErrorKind = "size_exceeded"
	KindDurationExceeded    ErrorKind = "duration_exceeded"
	KindExtractionFailed    ErrorKind = "extraction_failed"
	KindNetworkError        ErrorKind = "network_error"
	KindFileSystemError     ErrorKind = "filesystem_error"
	KindNotSupported        ErrorKind = "not_supported_by_backend"
)

// DownloadError is a classified failure from one backend attempt.
type DownloadError struct {
	Kind    ErrorKind
	Backend BackendName
	Detail  string
	Err     error
}

func (e *DownloadError) Error() string {
	msg := string(e.Kind)
	if e.Backend != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Backend)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// NewError creates a classified download error.
func NewError(kind ErrorKind, backend BackendName, detail string) *DownloadError {
	return &DownloadError{Kind: kind, Backend: backend, Detail: detail}
}

// WrapError classifies an underlying error, preserving it for diagnostics.
func WrapError(kind ErrorKind, backend BackendName, err error) *DownloadError {
	return &DownloadError{Kind: kind, Backend: backend, Err: err}
}

// KindOf extracts the classification of an error. Unclassified errors are
// treated as extraction failures with the original message preserved.
func KindOf(err error) ErrorKind {
	var de *DownloadError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindExtractionFailed
}

// IsRetryable reports whether the failure may be transient and worth
// retrying on the same backend. Policy violations and per-backend
// unsupported errors are terminal.
func IsRetryable(kind ErrorKind) bool {
	return kind == KindNetworkError || kind == KindExtractionFailed
}

// IsPolicyViolation reports whether the failure is a size or duration
// limit violation.
func IsPolicyViolation(kind ErrorKind) bool {
	return kind == KindSizeExceeded || kind == KindDurationExceeded
}

// OutcomeOf maps an error kind to its attempt-log outcome.
func OutcomeOf(kind ErrorKind) AttemptOutcome {
	switch kind {
	case KindSizeExceeded:
		return OutcomeSizeExceeded
	case KindDurationExceeded:
		return OutcomeDurationExceeded
	case KindNetworkError:
		return OutcomeNetworkError
	case KindFileSystemError:
		return OutcomeFileSystemError
	case KindNotSupported:
		return OutcomeNotSupported
	default:
		return OutcomeExtractionFailed
	}
}

// UserMessage renders a failure as a single concise line for end users.
// Limits are stated in human units; raw errors never leak through.
func UserMessage(err error, maxFileSize int64, maxDuration time.Duration) string {
	switch KindOf(err) {
	case KindUnsupportedPlatform:
		return "This link isn't from a supported platform. Try YouTube, TikTok, Instagram, Facebook, Twitter/X, or Vimeo."
	case KindBackendUnavailable:
		return "Downloads from this platform aren't available right now."
	case KindSizeExceeded:
		return fmt.Sprintf("This video is larger than the %s limit.", FormatSize(maxFileSize))
	case KindDurationExceeded:
		return fmt.Sprintf("This video is longer than the %s limit.", FormatDurationHuman(maxDuration))
	case KindNetworkError:
		return "A network problem interrupted the download. Please try again in a moment."
	case KindFileSystemError:
		return "The server ran into a storage problem. Please try again later."
	default:
		return "Couldn't download this video. It may be private, deleted, or unavailable in this region."
	}
}

// FormatSize renders a byte count in human units.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

// FormatDurationHuman renders a duration for user messages, preferring
// whole minutes.
func FormatDurationHuman(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%d minute(s)", int(d.Minutes()))
	}
	return d.Truncate(time.Second).String()
}
