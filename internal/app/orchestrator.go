package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/vidrelay-go/internal/domain"
)

// Orchestrator runs download requests against an ordered chain of
// extraction backends: retry with exponential backoff on transient errors,
// advance to the next backend when one is exhausted, enforce size/duration
// limits before and after the transfer, and never leave a partial file
// behind on any exit path.
type Orchestrator struct {
	backends map[domain.BackendName]domain.Backend
	ws       domain.Workspace
	history  domain.HistoryRepository // optional
	config   *domain.DownloadConfig
	logger   *zap.Logger
	sem      chan struct{}
}

// NewOrchestrator creates an orchestrator. history may be nil to disable
// persistence.
func NewOrchestrator(
	backends map[domain.BackendName]domain.Backend,
	ws domain.Workspace,
	history domain.HistoryRepository,
	config *domain.DownloadConfig,
	logger *zap.Logger,
) *Orchestrator {
	limit := config.ConcurrentLimit
	if limit < 1 {
		limit = 1
	}
	return &Orchestrator{
		backends: backends,
		ws:       ws,
		history:  history,
		config:   config,
		logger:   logger,
		sem:      make(chan struct{}, limit),
	}
}

// Submit runs a request to completion and returns its result. The returned
// file, if any, is owned by the caller; the orchestrator retains no
// reference to it.
func (o *Orchestrator) Submit(ctx context.Context, req *domain.DownloadRequest) *domain.DownloadResult {
	start := time.Now()
	res := o.run(ctx, req)
	o.record(req, res, time.Since(start))
	return res
}

func (o *Orchestrator) run(ctx context.Context, req *domain.DownloadRequest) *domain.DownloadResult {
	names, err := domain.BackendsFor(req.URL)
	if err != nil {
		o.logger.Info("Rejected unsupported URL",
			zap.String("id", req.ID),
			zap.String("url", req.URL))
		return o.failure(req, err, nil)
	}

	chain := make([]domain.Backend, 0, len(names))
	for _, name := range names {
		if b, ok := o.backends[name]; ok {
			chain = append(chain, b)
		}
	}
	if len(chain) == 0 {
		err := domain.NewError(domain.KindBackendUnavailable, "", "no configured backend for "+domain.PlatformName(req.URL))
		o.logger.Warn("No backend available",
			zap.String("id", req.ID),
			zap.String("url", req.URL))
		return o.failure(req, err, nil)
	}

	select {
	case o.sem <- struct{}{}:
		defer func() { <-o.sem }()
	case <-ctx.Done():
		return o.failure(req, domain.WrapError(domain.KindNetworkError, "", ctx.Err()), nil)
	}

	guard := guardFor(req, o.config)
	var attempts []domain.BackendAttempt
	var lastErr *domain.DownloadError
	seq := 0

backends:
	for _, backend := range chain {
		for try := 0; try <= o.config.MaxRetries; try++ {
			if try > 0 {
				// Exponential backoff: base, 2x base, 4x base, ...
				delay := o.config.RetryBaseDelay << (try - 1)
				o.logger.Info("Retrying backend",
					zap.String("id", req.ID),
					zap.String("backend", string(backend.Name())),
					zap.Int("try", try),
					zap.Duration("delay", delay))
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					lastErr = domain.WrapError(domain.KindNetworkError, backend.Name(), ctx.Err())
					break backends
				}
			}

			entry := domain.BackendAttempt{
				Backend:   backend.Name(),
				Seq:       seq,
				StartedAt: time.Now(),
			}
			res, derr := o.attempt(ctx, req, backend, guard, seq)
			seq++

			if derr == nil {
				entry.Outcome = domain.OutcomeSuccess
				attempts = append(attempts, entry)
				res.Attempts = attempts
				o.logger.Info("Download succeeded",
					zap.String("id", req.ID),
					zap.String("backend", string(backend.Name())),
					zap.String("file", res.FilePath),
					zap.Int64("size", res.FileSize))
				return res
			}

			kind := derr.Kind
			entry.Outcome = domain.OutcomeOf(kind)
			entry.ErrorDetail = derr.Error()
			attempts = append(attempts, entry)
			lastErr = derr

			o.logger.Warn("Backend attempt failed",
				zap.String("id", req.ID),
				zap.String("backend", string(backend.Name())),
				zap.Int("try", try),
				zap.String("outcome", string(entry.Outcome)),
				zap.Error(derr))

			if domain.IsPolicyViolation(kind) {
				// Terminal for this backend; never retried here. Whether the
				// next backend still gets a shot is a policy choice.
				if !o.config.FallbackOnPolicyViolation {
					break backends
				}
				continue backends
			}
			if !domain.IsRetryable(kind) {
				// Unsupported-by-backend or filesystem trouble: move on.
				continue backends
			}
		}
	}

	return o.failure(req, lastErr, attempts)
}

// attempt runs one backend invocation end to end. All failure paths leave
// zero files staged for this attempt.
func (o *Orchestrator) attempt(
	ctx context.Context,
	req *domain.DownloadRequest,
	backend domain.Backend,
	guard ConstraintGuard,
	seq int,
) (*domain.DownloadResult, *domain.DownloadError) {
	info, err := backend.Probe(ctx, req.URL)
	if err != nil {
		return nil, classify(err, backend.Name())
	}

	// Pre-download check against reported metadata: abort before any
	// transfer, so no partial file is ever created.
	if derr := guard.PreCheck(info, backend.Name()); derr != nil {
		return nil, derr
	}

	base := o.ws.Stage(req.ID, seq)
	path, err := backend.Fetch(ctx, req.URL, base)
	if err != nil {
		o.discard(req.ID, base)
		return nil, classify(err, backend.Name())
	}

	size, derr := guard.PostCheck(path, backend.Name())
	if derr != nil {
		o.discard(req.ID, base)
		return nil, derr
	}

	res := &domain.DownloadResult{
		Success:  true,
		FilePath: path,
		FileSize: size,
		Backend:  backend.Name(),
	}
	if info != nil {
		res.Title = info.Title
		res.Uploader = info.Uploader
		res.Duration = info.Duration
	}
	return res, nil
}

func (o *Orchestrator) discard(requestID, base string) {
	if err := o.ws.Discard(base); err != nil {
		o.logger.Error("Failed to discard staged files",
			zap.String("id", requestID),
			zap.String("base", base),
			zap.Error(err))
	}
}

func (o *Orchestrator) failure(req *domain.DownloadRequest, err error, attempts []domain.BackendAttempt) *domain.DownloadResult {
	guard := guardFor(req, o.config)
	return &domain.DownloadResult{
		Success:      false,
		ErrorMessage: domain.UserMessage(err, guard.MaxFileSize, guard.MaxDuration),
		Attempts:     attempts,
	}
}

// classify folds any backend error into the structured taxonomy. Errors the
// backend did not classify itself become extraction failures with the
// original message preserved.
func classify(err error, backend domain.BackendName) *domain.DownloadError {
	if derr, ok := err.(*domain.DownloadError); ok {
		if derr.Backend == "" {
			derr.Backend = backend
		}
		return derr
	}
	return domain.WrapError(domain.KindExtractionFailed, backend, err)
}

func (o *Orchestrator) record(req *domain.DownloadRequest, res *domain.DownloadResult, elapsed time.Duration) {
	if o.history == nil {
		return
	}
	rec := &domain.DownloadRecord{
		RequestID: req.ID,
		UserID:    req.UserID,
		URL:       req.URL,
		Platform:  domain.PlatformName(req.URL),
		Backend:   string(res.Backend),
		Title:     res.Title,
		FileSize:  res.FileSize,
		Duration:  res.Duration.Seconds(),
		Elapsed:   elapsed.Seconds(),
		Status:    domain.RecordStatusSuccess,
	}
	if !res.Success {
		rec.Status = domain.RecordStatusFailed
		rec.ErrorMessage = res.ErrorMessage
	}
	if err := o.history.Record(rec); err != nil {
		o.logger.Error("Failed to record download history",
			zap.String("id", req.ID),
			zap.Error(err))
	}
}
