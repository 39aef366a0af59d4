package ingest

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/gabrieldave/ingesta/ai"
	"github.com/gabrieldave/ingesta/core"
	"github.com/gabrieldave/ingesta/loader"
	"github.com/gabrieldave/ingesta/storage"
)

// ClassifyFailure maps a raw error to the failure taxonomy. All
// provider-message string matching lives here; callers branch on the
// returned kind, never on error text.
func ClassifyFailure(err error) core.ErrorKind {
	switch {
	case err == nil:
		return core.KindUnknown
	case errors.Is(err, loader.ErrUnsupportedFormat), errors.Is(err, ErrLoadFailure):
		return core.KindLoadError
	case errors.Is(err, ErrEmptyDocument):
		return core.KindEmptyDocument
	case errors.Is(err, ErrFileTooLarge):
		return core.KindTokenBudget
	case errors.Is(err, ai.ErrParseFailure):
		return core.KindParseError
	case errors.Is(err, storage.ErrUnavailable):
		return core.KindConnectivity
	case isRateLimited(err):
		return core.KindRateLimited
	}
	// Transient provider network failures that survive the governor's
	// retries are provider errors for triage purposes; the connectivity
	// kind is reserved for the stateful backends, where it aborts the run.
	return core.KindProviderError
}

// isRateLimited detects provider throttling signals. OpenAI-compatible
// servers surface these as HTTP 429 with a "rate limit" message; the client
// library folds both into the error text.
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "429")
}

// isTransient detects network-level failures worth retrying: timeouts,
// resets, and dropped connections.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "unexpected eof") ||
		strings.Contains(msg, "timeout")
}
