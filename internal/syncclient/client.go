// Package syncclient delivers batches to the remote sync endpoint: one
// authenticated POST per batch, sequentially, with a configurable timeout
// and an optional bounded retry on transient failures.
package syncclient

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/imroc/req/v3"

	"github.com/sevigo/datasync/internal/core"
)

const (
	// DefaultTokenHeader carries the bearer credential. The receiver
	// expects the raw token, not an Authorization scheme.
	DefaultTokenHeader = "X-Datasync-Sync-Token"

	DefaultTimeout        = 30 * time.Second
	DefaultRetryBaseDelay = 2 * time.Second
)

// Config holds the delivery settings for one run. Endpoint and Token come
// from the environment (the CI secret store); the rest have defaults.
type Config struct {
	Endpoint       string
	Token          string
	TokenHeader    string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// Client issues one request per batch against the sync endpoint.
type Client struct {
	http   *req.Client
	cfg    Config
	source ContentSource
	logger *slog.Logger
}

// New creates a sync client. Retries are opt-in; MaxRetries of zero sends
// each batch exactly once.
func New(cfg Config, source ContentSource, logger *slog.Logger) *Client {
	if cfg.TokenHeader == "" {
		cfg.TokenHeader = DefaultTokenHeader
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := req.C().
		SetTimeout(cfg.Timeout).
		SetCommonHeader(cfg.TokenHeader, cfg.Token).
		SetCommonContentType("application/json")

	return &Client{
		http:   httpClient,
		cfg:    cfg,
		source: source,
		logger: logger,
	}
}

// SendBatch delivers a single batch and returns its outcome. Transport
// errors and 5xx responses are retried up to MaxRetries times with
// exponential backoff; 4xx responses are terminal immediately.
func (c *Client) SendBatch(ctx context.Context, runID string, batch core.Batch) core.SyncResult {
	result := core.SyncResult{Seq: batch.Seq, Files: len(batch.Files)}

	body, err := c.buildRequest(runID, batch)
	if err != nil {
		result.Kind = core.ErrKindTransport
		result.Err = err
		return result
	}

	var lastErr error
	var lastKind core.ErrorKind
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.RetryBaseDelay * time.Duration(1<<(attempt-1))
			c.logger.Warn("batch delivery failed, retrying",
				"seq", batch.Seq,
				"attempt", attempt,
				"max_retries", c.cfg.MaxRetries,
				"delay", delay,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				result.Kind = core.ErrKindTransport
				result.Err = ctx.Err()
				result.Attempts = attempt
				return result
			case <-time.After(delay):
			}
		}

		result.Attempts = attempt + 1
		perFile, kind, err := c.post(ctx, body)
		if err == nil {
			result.PerFile = perFile
			result.Kind = core.ErrKindNone
			result.Err = nil
			return result
		}

		lastErr = err
		lastKind = kind
		if kind == core.ErrKindRemoteRejection && !retryable(err) {
			break
		}
	}

	result.Kind = lastKind
	result.Err = lastErr
	return result
}

// rejectionError distinguishes retryable 5xx rejections from terminal 4xx ones.
type rejectionError struct {
	status  int
	message string
}

func (e *rejectionError) Error() string {
	return fmt.Sprintf("sync endpoint rejected batch: %d %s", e.status, e.message)
}

func retryable(err error) bool {
	if rej, ok := err.(*rejectionError); ok {
		return rej.status >= 500
	}
	return true
}

func (c *Client) buildRequest(runID string, batch core.Batch) (*BatchRequest, error) {
	body := &BatchRequest{
		RunID: runID,
		Seq:   batch.Seq,
		Files: make([]BatchEntry, 0, len(batch.Files)),
	}
	for _, ref := range batch.Files {
		content, err := c.source.Content(ref)
		if err != nil {
			return nil, fmt.Errorf("load content for batch %d: %w", batch.Seq, err)
		}
		body.Files = append(body.Files, BatchEntry{
			Path:      ref.Path,
			ContentID: ref.ContentID,
			Content:   content,
		})
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, body *BatchRequest) ([]core.FileStatus, core.ErrorKind, error) {
	var success BatchResponse
	var failure BatchResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetSuccessResult(&success).
		SetErrorResult(&failure).
		Post(c.cfg.Endpoint)
	if err != nil {
		return nil, core.ErrKindTransport, fmt.Errorf("post batch %d: %w", body.Seq, err)
	}

	if resp.IsErrorState() {
		msg := failure.Error
		if msg == "" {
			msg = resp.Status
		}
		return nil, core.ErrKindRemoteRejection, &rejectionError{status: resp.StatusCode, message: msg}
	}

	return success.Files, core.ErrKindNone, nil
}
