package openai

import (
	"errors"
	"fmt"
	"time"

	"gatechat/internal/domain"
)

const maxRateLimitBackoff = 10 * time.Second

// decision is one step of the retry state machine: either terminal with a
// classified error, or retryable after delay.
type decision struct {
	terminal bool
	err      error
	delay    time.Duration
}

// classify maps a failed attempt to the next retry step. attempt is
// 1-based; maxAttempts is the total budget.
//
//   - provider unauthorized: configuration fault, terminal immediately
//   - provider rate limited: backoff min(1s·2^attempt, 10s) up to budget
//   - provider server error: backoff 1s·2^attempt up to budget
//   - provider bad request: terminal immediately, a retry cannot succeed
//   - anything else (network, decode): retried without delay up to budget
func classify(err error, attempt, maxAttempts int) decision {
	last := attempt >= maxAttempts

	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.status == 401 || se.status == 403:
			return decision{terminal: true, err: fmt.Errorf("%w: %s", domain.ErrProviderAuth, se.message)}
		case se.status == 429:
			if last {
				return decision{terminal: true, err: fmt.Errorf("%w: %s", domain.ErrProviderRateLimited, se.message)}
			}
			return decision{delay: min(backoff(attempt), maxRateLimitBackoff)}
		case se.status >= 500:
			if last {
				return decision{terminal: true, err: fmt.Errorf("%w: %s", domain.ErrProvider, se.message)}
			}
			return decision{delay: backoff(attempt)}
		case se.status >= 400:
			return decision{terminal: true, err: fmt.Errorf("%w: %s", domain.ErrProviderBadRequest, se.message)}
		}
	}

	if last {
		return decision{terminal: true, err: fmt.Errorf("%w: %v", domain.ErrProvider, err)}
	}
	return decision{}
}

func backoff(attempt int) time.Duration {
	return time.Second * (1 << attempt)
}
