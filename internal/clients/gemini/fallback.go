package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/finlight/draftgen/internal/common"
	"github.com/finlight/draftgen/internal/models"
)

// attemptOutcome classifies one candidate attempt: advance to the next
// candidate, or stop and surface the error.
type attemptOutcome int

const (
	outcomeTerminal attemptOutcome = iota
	outcomeRetryNext
)

// generateFunc issues one generation call against a single model.
type generateFunc func(ctx context.Context, model string) (string, error)

// exhaustedError signals that every candidate failed with a retryable error.
type exhaustedError struct {
	lastErr error
}

func (e *exhaustedError) Error() string {
	return "all candidate models exhausted: " + e.lastErr.Error()
}

func asExhausted(err error, target **exhaustedError) bool {
	return errors.As(err, target)
}

// generateWithFallback walks the candidate list in order. Each attempt has
// two outcomes: a "model not found" / "method not supported" class error
// advances to the next candidate; any other error stops the walk and is
// surfaced as-is. The whole walk shares one deadline.
func generateWithFallback(ctx context.Context, candidates []string, timeout time.Duration, call generateFunc, logger *common.Logger) (*models.DraftResult, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tried := make([]string, 0, len(candidates))
	var lastErr error

	for _, model := range candidates {
		tried = append(tried, model)

		text, err := call(ctx, model)
		if err == nil && text != "" {
			return &models.DraftResult{Output: text, Model: model}, tried, nil
		}
		if err == nil {
			err = &common.NoTextError{Model: model}
		}

		// Deadline expiry is reported as a timeout, never retried.
		if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
			return nil, tried, &common.TimeoutError{Service: "gemini", Deadline: timeout}
		}

		if classifyAttemptError(err) == outcomeTerminal {
			logger.Warn().Err(err).Str("model", model).Msg("Generation failed with terminal error")
			return nil, tried, err
		}

		logger.Debug().Err(err).Str("model", model).Msg("Model unavailable, trying next candidate")
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no candidate models configured")
	}
	return nil, tried, &exhaustedError{lastErr: lastErr}
}

// classifyAttemptError decides whether a failed attempt may advance to the
// next candidate. Only the "model not found" / "method not supported"
// class is retryable; everything else is terminal.
func classifyAttemptError(err error) attemptOutcome {
	var noText *common.NoTextError
	if errors.As(err, &noText) {
		return outcomeTerminal
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"):
		return outcomeRetryNext
	case strings.Contains(msg, "not supported"):
		return outcomeRetryNext
	case strings.Contains(msg, "404"):
		return outcomeRetryNext
	default:
		return outcomeTerminal
	}
}
