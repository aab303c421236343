// Package propagation waits for state that becomes visible asynchronously on
// the provider side, such as event hub metadata replicating from the primary
// namespace of an alias to the secondary.
//
// Two strategies exist. FixedDelay sleeps for a set duration and checks once.
// Poller checks repeatedly with exponential backoff until the check reports
// done, the check fails permanently, or the timeout elapses.
package propagation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"

	"github.com/jbweber/geodr/api/v1alpha1"
)

// ErrNotPropagated is returned when the awaited state did not show up in time.
var ErrNotPropagated = errors.New("state has not propagated")

// Check reads the awaited state once. It returns true when the state is
// visible, false when it is not visible yet, and an error when checking
// failed in a way that retrying will not fix.
type Check func(ctx context.Context) (bool, error)

// Waiter blocks until a check succeeds or gives up.
type Waiter interface {
	Wait(ctx context.Context, check Check) error
}

// FixedDelay sleeps for Delay, then runs the check exactly once.
type FixedDelay struct {
	Delay time.Duration
	Log   logr.Logger

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Wait implements Waiter.
func (f *FixedDelay) Wait(ctx context.Context, check Check) error {
	sleep := f.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	f.Log.Info("Waiting before checking propagation", "delay", f.Delay)
	if err := sleep(ctx, f.Delay); err != nil {
		return fmt.Errorf("wait interrupted: %w", err)
	}

	done, err := check(ctx)
	if err != nil {
		return err
	}
	if !done {
		return fmt.Errorf("%w after %v", ErrNotPropagated, f.Delay)
	}
	return nil
}

// Poller runs the check with exponential backoff.
type Poller struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Timeout         time.Duration
	Log             logr.Logger
}

// Wait implements Waiter.
func (p *Poller) Wait(ctx context.Context, check Check) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.Timeout
	b.RandomizationFactor = 0.2
	b.Reset()

	attempt := 0
	operation := func() error {
		attempt++
		done, err := check(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !done {
			return ErrNotPropagated
		}
		return nil
	}

	notify := func(_ error, next time.Duration) {
		p.Log.V(1).Info("Not propagated yet, retrying", "attempt", attempt, "next", next)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
	if errors.Is(err, ErrNotPropagated) {
		return fmt.Errorf("%w within %v (%d attempts)", ErrNotPropagated, p.Timeout, attempt)
	}
	return err
}

// New returns the waiter configured by spec.
func New(spec v1alpha1.SyncSpec, log logr.Logger) (Waiter, error) {
	switch spec.Strategy {
	case v1alpha1.SyncStrategyFixed:
		return &FixedDelay{Delay: spec.Delay.Duration, Log: log}, nil
	case v1alpha1.SyncStrategyPoll, "":
		return &Poller{
			InitialInterval: spec.InitialInterval.Duration,
			MaxInterval:     spec.MaxInterval.Duration,
			Timeout:         spec.Timeout.Duration,
			Log:             log,
		}, nil
	default:
		return nil, fmt.Errorf("unknown sync strategy %q (valid: fixed, poll)", spec.Strategy)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
