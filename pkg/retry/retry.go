package retry

import (
	"context"
	"time"
)

// State is the explicit per-attempt machine: a task is pending until its
// first failure, retrying while attempts remain, and exhausted once the
// final attempt fails. Exhaustion is terminal; recovery happens exactly
// once, in the caller.
type State int

const (
	StatePending State = iota
	StateRetrying
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRetrying:
		return "retrying"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Policy bounds retries with exponential backoff. The delay starts at
// InitialBackoff and doubles after every failed attempt.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration

	// Sleep overrides the inter-attempt wait; tests inject it.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, InitialBackoff: time.Second}
}

// Do runs fn until it succeeds, the policy is exhausted, or ctx is
// cancelled. It returns nil on success and the last attempt's error on
// exhaustion. OnState, when set, observes every state transition.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return p.DoWithState(ctx, fn, nil)
}

func (p Policy) DoWithState(ctx context.Context, fn func(ctx context.Context) error, onState func(State, int)) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = defaultSleep
	}

	observe := func(s State, attempt int) {
		if onState != nil {
			onState(s, attempt)
		}
	}

	observe(StatePending, 0)
	backoff := p.InitialBackoff
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}
		observe(StateRetrying, attempt)
		if sleepErr := sleep(ctx, backoff); sleepErr != nil {
			return sleepErr
		}
		backoff *= 2
	}
	observe(StateExhausted, p.MaxAttempts)
	return err
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
