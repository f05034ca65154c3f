// Package browser adapts real browsers to the interfaces.Driver contract.
// Three engines are available: playwright (the default), selenium through a
// local chromedriver and chromedp over the DevTools protocol.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/zeebo/errs"
)

// Error is the class of every error raised by a browser engine
var Error = errs.Class("browser")

const (
	EnginePlaywright = "playwright"
	EngineSelenium   = "selenium"
	EngineChromedp   = "chromedp"
)

// Engines lists the supported engine names
var Engines = []string{EnginePlaywright, EngineSelenium, EngineChromedp}

const (
	navigationTimeout = 30 * time.Second
	actionTimeout     = 10 * time.Second
	statePollInterval = 100 * time.Millisecond

	viewportWidth  = 1280
	viewportHeight = 720
)

// Options configures how sessions are launched
type Options struct {
	Engine       string
	Headless     bool
	SlowMo       time.Duration
	DriverPath   string // chromedriver for selenium, browser binary for chromedp
	ChromeBinary string
	Port         int
}

// Engine launches browser sessions. A session owns one page.
type Engine interface {
	NewSession(ctx context.Context) (interfaces.Driver, error)
	Close() error
}

// Open - starts the engine named in opts
func Open(opts Options, logger *logrus.Logger) (Engine, error) {
	logger.WithFields(logrus.Fields{
		"engine":   opts.Engine,
		"headless": opts.Headless,
	}).Info("Starting browser engine")

	switch strings.ToLower(opts.Engine) {
	case "", EnginePlaywright:
		return newPlaywrightEngine(opts, logger)
	case EngineSelenium:
		return newSeleniumEngine(opts, logger)
	case EngineChromedp:
		return newChromedpEngine(opts, logger)
	}
	return nil, Error.New("unknown engine %q (want one of %s)", opts.Engine, strings.Join(Engines, ", "))
}

// Factory - returns the engine's session constructor as a SessionFactory
func Factory(e Engine) interfaces.SessionFactory {
	return e.NewSession
}

// remaining - returns how long an operation may run, bounded by ctx's deadline
func remaining(ctx context.Context, fallback time.Duration) time.Duration {
	d := fallback
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			d = left
		}
	}
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

// sleep - blocks for d unless ctx ends first
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// stateScript - returns a JS expression over `el` (possibly null) that holds when state is reached
func stateScript(state entities.WaitState) (string, error) {
	const visible = `(el !== null && !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length) && getComputedStyle(el).visibility !== 'hidden')`
	switch state {
	case entities.WaitStateVisible:
		return visible, nil
	case entities.WaitStateHidden:
		return "!" + visible, nil
	case entities.WaitStateAttached:
		return `el !== null`, nil
	case entities.WaitStateDetached:
		return `el === null`, nil
	}
	return "", Error.New("unsupported wait state %q", state)
}

// querySelector - wraps a JS expression so `el` is bound to the first node matching selector
func querySelector(selector, expr string) string {
	return fmt.Sprintf(`(function(el) { return %s; })(document.querySelector(%q))`, expr, selector)
}
