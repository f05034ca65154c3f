// Package actions is the uniform surface page objects drive the browser
// through. Every method resolves its element afresh, performs one driver
// action and, for Verify* methods, asserts a postcondition.
package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ui_automation/application/waiter"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/zeebo/errs"
)

// Error wraps driver failures raised while performing an action
var Error = errs.Class("actions")

const (
	// DefaultExpectTimeout bounds the retrying Verify* assertions
	DefaultExpectTimeout = 5 * time.Second
	expectPollInterval   = 100 * time.Millisecond
)

// Actions is bound to one browser session and must not be shared between sessions
type Actions struct {
	driver        interfaces.Driver
	waiter        *waiter.Waiter
	logger        *logrus.Logger
	expectTimeout time.Duration
}

// New creates the action surface for driver
func New(driver interfaces.Driver, logger *logrus.Logger) *Actions {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Actions{
		driver:        driver,
		waiter:        waiter.New(driver, logger),
		logger:        logger,
		expectTimeout: DefaultExpectTimeout,
	}
}

// WithExpectTimeout returns a copy whose retrying assertions give up after d
func (a *Actions) WithExpectTimeout(d time.Duration) *Actions {
	cp := *a
	cp.expectTimeout = d
	return &cp
}

// Driver returns the session driver
func (a *Actions) Driver() interfaces.Driver {
	return a.driver
}

// Waiter returns the wait engine bound to the session
func (a *Actions) Waiter() *waiter.Waiter {
	return a.waiter
}

// Locate resolves a selector lazily
func (a *Actions) Locate(selector string) interfaces.Element {
	return a.driver.Locate(selector)
}

func (a *Actions) log(el interfaces.Element) *logrus.Entry {
	return a.logger.WithField("selector", el.Selector())
}

func wrap(op string, el interfaces.Element, err error) error {
	if err == nil {
		return nil
	}
	return Error.Wrap(fmt.Errorf("%s %q: %w", op, el.Selector(), err))
}

// NavigateToURL navigates the session to url. The url must include a scheme.
func (a *Actions) NavigateToURL(ctx context.Context, url string) error {
	a.logger.WithField("url", url).Debug("navigate")
	if err := a.driver.Navigate(ctx, url); err != nil {
		return Error.Wrap(fmt.Errorf("navigate to %s: %w", url, err))
	}
	return nil
}

// CheckURL navigates to url and asserts the session ends up on expected
func (a *Actions) CheckURL(ctx context.Context, url, expected string) error {
	if err := a.NavigateToURL(ctx, url); err != nil {
		return err
	}
	current := a.driver.URL()
	return check("CheckURL", func(t assert.TestingT) bool {
		return assert.Equal(t, expected, current)
	})
}

// VerifyTitleContains asserts the page title contains text
func (a *Actions) VerifyTitleContains(ctx context.Context, text string) error {
	title, err := a.driver.Title(ctx)
	if err != nil {
		return Error.Wrap(fmt.Errorf("page title: %w", err))
	}
	return check("VerifyTitleContains", func(t assert.TestingT) bool {
		return assert.Contains(t, title, text)
	})
}

// Delay suspends the caller for d
func (a *Actions) Delay(ctx context.Context, d time.Duration) error {
	return a.driver.Sleep(ctx, d)
}

// ClickElement clicks the center of el. Options are merged in order and
// passed to the driver; none means a plain click.
func (a *Actions) ClickElement(ctx context.Context, el interfaces.Element, opts ...entities.ClickOptions) error {
	merged := entities.MergeClickOptions(opts...)
	a.log(el).WithFields(logrus.Fields{
		"button": merged.EffectiveButton(),
		"clicks": merged.Clicks(),
		"force":  merged.Force,
	}).Debug("click")
	return wrap("click", el, el.Click(ctx, merged))
}

// ScrollToElement scrolls el into view unless it is already fully visible
func (a *Actions) ScrollToElement(ctx context.Context, el interfaces.Element) error {
	return wrap("scroll to", el, el.ScrollIntoView(ctx))
}

// CheckFocusOnElement asserts whether el has focus
func (a *Actions) CheckFocusOnElement(ctx context.Context, el interfaces.Element, want bool) error {
	focused, err := el.IsFocused(ctx)
	if err != nil {
		return wrap("focus check", el, err)
	}
	return check("CheckFocusOnElement", func(t assert.TestingT) bool {
		return assert.Equalf(t, want, focused, "focus on %s", el.Selector())
	})
}

// HoverAndClick hovers over el and clicks it
func (a *Actions) HoverAndClick(ctx context.Context, el interfaces.Element) error {
	if err := el.Hover(ctx); err != nil {
		return wrap("hover", el, err)
	}
	return a.ClickElement(ctx, el)
}

// VerifyLocatorListCount asserts el resolves to exactly count nodes
func (a *Actions) VerifyLocatorListCount(ctx context.Context, el interfaces.Element, count int) error {
	n, err := el.Count(ctx)
	if err != nil {
		return wrap("count", el, err)
	}
	return check("VerifyLocatorListCount", func(t assert.TestingT) bool {
		return assert.Equalf(t, count, n, "nodes matching %s", el.Selector())
	})
}

// EnterText fills el with text, replacing its value. An empty text clears the field.
func (a *Actions) EnterText(ctx context.Context, el interfaces.Element, text string) error {
	a.log(el).Debug("fill")
	return wrap("fill", el, el.Fill(ctx, text))
}

// GetText returns the text content of el. A node without text yields
// interfaces.ErrNoContent, which callers must handle.
func (a *Actions) GetText(ctx context.Context, el interfaces.Element) (string, error) {
	text, err := el.TextContent(ctx)
	if err != nil {
		return "", wrap("text of", el, err)
	}
	return text, nil
}

// VerifyTextEquals asserts the trimmed text of el equals text
func (a *Actions) VerifyTextEquals(ctx context.Context, el interfaces.Element, text string) error {
	got, err := a.GetText(ctx, el)
	if err != nil {
		return err
	}
	return check("VerifyTextEquals", func(t assert.TestingT) bool {
		return assert.Equal(t, text, strings.TrimSpace(got))
	})
}

// VerifyTextContains asserts the trimmed text of el contains text
func (a *Actions) VerifyTextContains(ctx context.Context, el interfaces.Element, text string) error {
	got, err := a.GetText(ctx, el)
	if err != nil {
		return err
	}
	return check("VerifyTextContains", func(t assert.TestingT) bool {
		return assert.Contains(t, strings.TrimSpace(got), text)
	})
}

// GetAttribute returns the value of attribute name, empty when absent
func (a *Actions) GetAttribute(ctx context.Context, el interfaces.Element, name string) (string, error) {
	v, err := el.Attribute(ctx, name)
	if err != nil {
		return "", wrap("attribute "+name+" of", el, err)
	}
	return v, nil
}

// VerifyAttributeContains asserts attribute name of el contains text
func (a *Actions) VerifyAttributeContains(ctx context.Context, el interfaces.Element, name, text string) error {
	v, err := a.GetAttribute(ctx, el, name)
	if err != nil {
		return err
	}
	return check("VerifyAttributeContains", func(t assert.TestingT) bool {
		return assert.Containsf(t, strings.TrimSpace(v), text, "attribute %s of %s", name, el.Selector())
	})
}

// VerifyAttributeDoesNotContain asserts attribute name of el does not contain text
func (a *Actions) VerifyAttributeDoesNotContain(ctx context.Context, el interfaces.Element, name, text string) error {
	v, err := a.GetAttribute(ctx, el, name)
	if err != nil {
		return err
	}
	return check("VerifyAttributeDoesNotContain", func(t assert.TestingT) bool {
		return assert.NotContainsf(t, strings.TrimSpace(v), text, "attribute %s of %s", name, el.Selector())
	})
}

// KeyboardPress presses key on the page, e.g. F1, Digit0, KeyA, Backspace, Enter, ArrowDown
func (a *Actions) KeyboardPress(ctx context.Context, key string) error {
	if err := a.driver.PressKey(ctx, key); err != nil {
		return Error.Wrap(fmt.Errorf("press %s: %w", key, err))
	}
	return nil
}

// KeyPress focuses el and presses key on it
func (a *Actions) KeyPress(ctx context.Context, el interfaces.Element, key string) error {
	return wrap("press "+key+" on", el, el.Press(ctx, key))
}

// VerifyElementIsDisplayed waits up to waiter.DefaultVisibleTimeout for el to be visible
func (a *Actions) VerifyElementIsDisplayed(ctx context.Context, el interfaces.Element, errorMessage string) error {
	return a.waiter.WaitUntilVisible(ctx, el, errorMessage, waiter.DefaultVisibleTimeout)
}

// VerifyElementIsNotDisplayed waits up to waiter.DefaultHiddenTimeout for el to be hidden
func (a *Actions) VerifyElementIsNotDisplayed(ctx context.Context, el interfaces.Element, errorMessage string) error {
	return a.waiter.WaitUntilHidden(ctx, el, errorMessage, waiter.DefaultHiddenTimeout)
}

// WaitUntilVisible is waiter.Waiter.WaitUntilVisible for this session
func (a *Actions) WaitUntilVisible(ctx context.Context, el interfaces.Element, errorMessage string, timeout time.Duration) error {
	return a.waiter.WaitUntilVisible(ctx, el, errorMessage, timeout)
}

// WaitUntilHidden is waiter.Waiter.WaitUntilHidden for this session
func (a *Actions) WaitUntilHidden(ctx context.Context, el interfaces.Element, errorMessage string, timeout time.Duration) error {
	return a.waiter.WaitUntilHidden(ctx, el, errorMessage, timeout)
}

// WaitForSelectorToCompletelyDisappear reports whether el stayed hidden across the re-check windows
func (a *Actions) WaitForSelectorToCompletelyDisappear(ctx context.Context, el interfaces.Element, timeout, pollInterval time.Duration) bool {
	return a.waiter.WaitUntilCompletelyDisappeared(ctx, el, timeout, pollInterval)
}

// VerifyElementIsEnabled asserts el becomes enabled within the expect timeout
func (a *Actions) VerifyElementIsEnabled(ctx context.Context, el interfaces.Element) error {
	return a.expectState(ctx, "VerifyElementIsEnabled", el, true)
}

// VerifyElementIsDisabled asserts el becomes disabled within the expect timeout.
// Only native form controls honour the disabled attribute.
func (a *Actions) VerifyElementIsDisabled(ctx context.Context, el interfaces.Element) error {
	return a.expectState(ctx, "VerifyElementIsDisabled", el, false)
}

func (a *Actions) expectState(ctx context.Context, op string, el interfaces.Element, wantEnabled bool) error {
	deadline := time.Now().Add(a.expectTimeout)
	var (
		enabled bool
		err     error
	)
	for {
		enabled, err = el.IsEnabled(ctx)
		if err == nil && enabled == wantEnabled {
			return nil
		}
		if !time.Now().Before(deadline) {
			break
		}
		if sleepErr := a.driver.Sleep(ctx, expectPollInterval); sleepErr != nil {
			return Error.Wrap(sleepErr)
		}
	}
	if err != nil {
		return wrap("enabled state of", el, err)
	}
	return check(op, func(t assert.TestingT) bool {
		return assert.Equalf(t, wantEnabled, enabled, "enabled state of %s after %v", el.Selector(), a.expectTimeout)
	})
}

// SelectDropdownOption selects value in the <select> matched by selector and
// asserts the selected value contains it. The assertion always runs.
func (a *Actions) SelectDropdownOption(ctx context.Context, selector, value string) error {
	if err := a.driver.SelectOption(ctx, selector, value); err != nil {
		return Error.Wrap(fmt.Errorf("select %q in %q: %w", value, selector, err))
	}
	selected, err := a.driver.SelectedValue(ctx, selector)
	if err != nil {
		return Error.Wrap(fmt.Errorf("selected value of %q: %w", selector, err))
	}
	return check("SelectDropdownOption", func(t assert.TestingT) bool {
		return assert.Contains(t, selected, value)
	})
}

// IsAssertion reports whether err is a failed inline assertion
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}
