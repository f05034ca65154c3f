// Package waiter blocks test steps until elements reach a wait state.
package waiter

import (
	"context"
	"time"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	DefaultVisibleTimeout   = 5 * time.Second
	DefaultHiddenTimeout    = 25 * time.Second
	DefaultDisappearTimeout = 500 * time.Millisecond
	DefaultPollInterval     = 100 * time.Millisecond
)

// WaitTimeoutError is returned when a bounded wait does not reach its state.
// Error returns the caller's message verbatim; the driver's own timeout text is dropped.
type WaitTimeoutError struct {
	Message  string
	Selector string
	State    entities.WaitState
	Timeout  time.Duration
}

func (e *WaitTimeoutError) Error() string {
	return e.Message
}

// Sleeper is the driver's timed suspension
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Waiter runs bounded waits against elements of one session
type Waiter struct {
	sleeper Sleeper
	logger  *logrus.Logger
	now     func() time.Time
}

// New creates a waiter that suspends through sleeper
func New(sleeper Sleeper, logger *logrus.Logger) *Waiter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Waiter{
		sleeper: sleeper,
		logger:  logger,
		now:     time.Now,
	}
}

// Poll performs one bounded wait for state and reports whether it was reached
func (w *Waiter) Poll(ctx context.Context, el interfaces.Element, state entities.WaitState, timeout time.Duration) entities.PollOutcome {
	start := w.now()
	err := el.WaitFor(ctx, state, timeout)
	outcome := entities.PollOutcome{
		Achieved: err == nil,
		Elapsed:  w.now().Sub(start),
	}
	if err != nil {
		w.logger.WithFields(logrus.Fields{
			"selector": el.Selector(),
			"state":    state,
			"timeout":  timeout,
		}).Debugf("bounded wait failed: %v", err)
	}
	return outcome
}

// WaitFor blocks until el reaches state. On timeout it returns a
// *WaitTimeoutError carrying errorMessage.
func (w *Waiter) WaitFor(ctx context.Context, el interfaces.Element, state entities.WaitState, errorMessage string, timeout time.Duration) error {
	if outcome := w.Poll(ctx, el, state, timeout); outcome.Achieved {
		return nil
	}
	return &WaitTimeoutError{
		Message:  errorMessage,
		Selector: el.Selector(),
		State:    state,
		Timeout:  timeout,
	}
}

// WaitUntilVisible waits up to timeout (DefaultVisibleTimeout when zero) for el to be visible
func (w *Waiter) WaitUntilVisible(ctx context.Context, el interfaces.Element, errorMessage string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultVisibleTimeout
	}
	return w.WaitFor(ctx, el, entities.WaitStateVisible, errorMessage, timeout)
}

// WaitUntilHidden waits up to timeout (DefaultHiddenTimeout when zero) for el to be hidden
func (w *Waiter) WaitUntilHidden(ctx context.Context, el interfaces.Element, errorMessage string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultHiddenTimeout
	}
	return w.WaitFor(ctx, el, entities.WaitStateHidden, errorMessage, timeout)
}

// WaitUntilCompletelyDisappeared re-confirms that el is hidden across several
// windows and returns the outcome of the last attempt. It never fails; an element
// that stays visible yields false.
//
// Every attempt is given the full timeout, and the loop only checks the elapsed
// time between attempts, so an element that never disappears keeps the caller
// for a multiple of timeout.
func (w *Waiter) WaitUntilCompletelyDisappeared(ctx context.Context, el interfaces.Element, timeout, pollInterval time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultDisappearTimeout
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	start := w.now()
	attempt := func() bool {
		outcome := w.Poll(ctx, el, entities.WaitStateHidden, timeout)
		if outcome.Achieved {
			w.logger.WithField("selector", el.Selector()).Debug("disappeared")
		} else {
			w.logger.WithField("selector", el.Selector()).Debug("visible")
		}
		return outcome.Achieved
	}

	disappeared := attempt()
	elapsed := w.now().Sub(start)
	for elapsed < timeout {
		disappeared = attempt()
		elapsed = w.now().Sub(start)
		if err := w.sleeper.Sleep(ctx, pollInterval); err != nil {
			break
		}
	}

	w.logger.WithField("selector", el.Selector()).Debugf("disappeared finally: %t", disappeared)
	return disappeared
}
