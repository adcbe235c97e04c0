package intent

import (
	"context"
	"errors"
)

var (
	// ErrDelegateTimeout indicates the delegate did not answer within the
	// configured deadline. Retry-worthy.
	ErrDelegateTimeout = errors.New("intent: delegate timed out")
	// ErrDelegateRateLimited indicates the delegate rejected the call due to
	// rate limiting. Retry-worthy after backoff.
	ErrDelegateRateLimited = errors.New("intent: delegate rate limited")
	// ErrDelegateQuota indicates the delegate's quota is exhausted. Not
	// retry-worthy until the quota resets.
	ErrDelegateQuota = errors.New("intent: delegate quota exhausted")
	// ErrProtocolViolation indicates the delegate's response did not match
	// the structured contract.
	ErrProtocolViolation = errors.New("intent: delegate response violates contract")
)

// Delegate models the external language-understanding service. It receives a
// compact catalog and a query, and must return intents in the documented
// structured shape. It never performs catalog validation; that is the
// adapter's job.
type Delegate interface {
	Interpret(ctx context.Context, req Request) (Result, error)
}

// MockDelegate returns canned intents and is useful for testing and development.
type MockDelegate struct {
	Result Result
	Err    error
}

// Interpret returns the configured result regardless of the request payload.
func (m MockDelegate) Interpret(_ context.Context, _ Request) (Result, error) {
	if m.Err != nil {
		return Result{}, m.Err
	}
	return m.Result, nil
}
