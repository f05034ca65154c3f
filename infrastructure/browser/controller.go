package browser

import (
	"context"
	"errors"
	"time"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/errs"
)

type playwrightEngine struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	logger  *logrus.Logger
}

// newPlaywrightEngine - starts playwright and launches chromium
func newPlaywrightEngine(opts Options, logger *logrus.Logger) (*playwrightEngine, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, Error.New("failed to start playwright: %w", err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	}
	if opts.SlowMo > 0 {
		launch.SlowMo = playwright.Float(float64(opts.SlowMo.Milliseconds()))
	}
	if opts.ChromeBinary != "" {
		launch.ExecutablePath = playwright.String(opts.ChromeBinary)
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		return nil, errs.Combine(Error.New("failed to launch browser: %w", err), pw.Stop())
	}

	return &playwrightEngine{pw: pw, browser: browser, logger: logger}, nil
}

// NewSession - opens an isolated context with a single page
func (e *playwrightEngine) NewSession(ctx context.Context) (interfaces.Driver, error) {
	bctx, err := e.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  viewportWidth,
			Height: viewportHeight,
		},
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		return nil, Error.New("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		return nil, errs.Combine(Error.New("failed to create page: %w", err), bctx.Close())
	}

	page.OnDialog(e.acceptDialog)

	return &playwrightDriver{context: bctx, page: page, logger: e.logger}, nil
}

// acceptDialog - accepts alerts, confirms and prompts
func (e *playwrightEngine) acceptDialog(dialog playwright.Dialog) {
	e.logger.Debugf("Accepting %s dialog: %s", dialog.Type(), dialog.Message())
	if err := dialog.Accept(); err != nil {
		e.logger.Debugf("Failed to accept %s dialog: %v", dialog.Type(), err)
	}
}

// Close - closes the browser and stops the playwright driver
func (e *playwrightEngine) Close() error {
	var group errs.Group
	if e.browser != nil {
		group.Add(ignoreClosed(e.browser.Close()))
		e.browser = nil
	}
	if e.pw != nil {
		group.Add(e.pw.Stop())
		e.pw = nil
	}
	return Error.Wrap(group.Err())
}

type playwrightDriver struct {
	context playwright.BrowserContext
	page    playwright.Page
	logger  *logrus.Logger
}

var _ interfaces.Driver = (*playwrightDriver)(nil)

// Navigate - navigates to the specified URL and waits for the DOM
func (d *playwrightDriver) Navigate(ctx context.Context, url string) error {
	d.logger.Debugf("Navigating to: %s", url)
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   timeoutMs(ctx, navigationTimeout),
	})
	return Error.Wrap(err)
}

func (d *playwrightDriver) URL() string {
	return d.page.URL()
}

func (d *playwrightDriver) Title(ctx context.Context) (string, error) {
	title, err := d.page.Title()
	return title, Error.Wrap(err)
}

func (d *playwrightDriver) Locate(selector string) interfaces.Element {
	return &playwrightElement{selector: selector, locator: d.page.Locator(selector)}
}

// PressKey - presses a key on the keyboard of the page
func (d *playwrightDriver) PressKey(ctx context.Context, key string) error {
	return Error.Wrap(d.page.Keyboard().Press(key))
}

func (d *playwrightDriver) SelectOption(ctx context.Context, selector string, value string) error {
	_, err := d.page.SelectOption(selector, playwright.SelectOptionValues{Values: &[]string{value}}, playwright.PageSelectOptionOptions{
		Timeout: timeoutMs(ctx, actionTimeout),
	})
	return Error.Wrap(err)
}

func (d *playwrightDriver) SelectedValue(ctx context.Context, selector string) (string, error) {
	value, err := d.page.InputValue(selector, playwright.PageInputValueOptions{
		Timeout: timeoutMs(ctx, actionTimeout),
	})
	return value, Error.Wrap(err)
}

func (d *playwrightDriver) Sleep(ctx context.Context, dur time.Duration) error {
	return sleep(ctx, dur)
}

// Close - closes the context and with it the page
func (d *playwrightDriver) Close() error {
	if d.context == nil {
		return nil
	}
	err := ignoreClosed(d.context.Close())
	d.context = nil
	return Error.Wrap(err)
}

type playwrightElement struct {
	selector string
	locator  playwright.Locator
}

var _ interfaces.Element = (*playwrightElement)(nil)

func (e *playwrightElement) Selector() string {
	return e.selector
}

// Click - clicks the element honoring button, count, delay, force and timeout
func (e *playwrightElement) Click(ctx context.Context, opts entities.ClickOptions) error {
	return Error.Wrap(e.locator.Click(locatorClickOptions(ctx, opts)))
}

func (e *playwrightElement) Fill(ctx context.Context, text string) error {
	return Error.Wrap(e.locator.Fill(text, playwright.LocatorFillOptions{
		Timeout: timeoutMs(ctx, actionTimeout),
	}))
}

func (e *playwrightElement) Hover(ctx context.Context) error {
	return Error.Wrap(e.locator.Hover(playwright.LocatorHoverOptions{
		Timeout: timeoutMs(ctx, actionTimeout),
	}))
}

func (e *playwrightElement) ScrollIntoView(ctx context.Context) error {
	return Error.Wrap(e.locator.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
		Timeout: timeoutMs(ctx, actionTimeout),
	}))
}

func (e *playwrightElement) IsFocused(ctx context.Context) (bool, error) {
	result, err := e.locator.Evaluate("el => el === document.activeElement", nil, playwright.LocatorEvaluateOptions{
		Timeout: timeoutMs(ctx, actionTimeout),
	})
	if err != nil {
		return false, Error.Wrap(err)
	}
	focused, _ := result.(bool)
	return focused, nil
}

func (e *playwrightElement) IsEnabled(ctx context.Context) (bool, error) {
	enabled, err := e.locator.IsEnabled(playwright.LocatorIsEnabledOptions{
		Timeout: timeoutMs(ctx, actionTimeout),
	})
	return enabled, Error.Wrap(err)
}

func (e *playwrightElement) IsVisible(ctx context.Context) (bool, error) {
	visible, err := e.locator.IsVisible()
	return visible, Error.Wrap(err)
}

func (e *playwrightElement) Count(ctx context.Context) (int, error) {
	n, err := e.locator.Count()
	return n, Error.Wrap(err)
}

func (e *playwrightElement) Attribute(ctx context.Context, name string) (string, error) {
	value, err := e.locator.GetAttribute(name, playwright.LocatorGetAttributeOptions{
		Timeout: timeoutMs(ctx, actionTimeout),
	})
	return value, Error.Wrap(err)
}

// TextContent - reads textContent, reporting a null value as ErrNoContent
func (e *playwrightElement) TextContent(ctx context.Context) (string, error) {
	result, err := e.locator.Evaluate("el => el.textContent", nil, playwright.LocatorEvaluateOptions{
		Timeout: timeoutMs(ctx, actionTimeout),
	})
	if err != nil {
		return "", Error.Wrap(err)
	}
	text, ok := result.(string)
	if !ok {
		return "", interfaces.ErrNoContent
	}
	return text, nil
}

func (e *playwrightElement) Press(ctx context.Context, key string) error {
	return Error.Wrap(e.locator.Press(key, playwright.LocatorPressOptions{
		Timeout: timeoutMs(ctx, actionTimeout),
	}))
}

// WaitFor - waits for the element to reach state within timeout
func (e *playwrightElement) WaitFor(ctx context.Context, state entities.WaitState, timeout time.Duration) error {
	selectorState, err := waitForSelectorState(state)
	if err != nil {
		return err
	}
	return Error.Wrap(e.locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   selectorState,
		Timeout: timeoutMs(ctx, timeout),
	}))
}

// timeoutMs - converts the effective timeout into playwright milliseconds
func timeoutMs(ctx context.Context, fallback time.Duration) *float64 {
	return playwright.Float(float64(remaining(ctx, fallback).Milliseconds()))
}

// waitForSelectorState - maps a WaitState to its playwright counterpart
func waitForSelectorState(state entities.WaitState) (*playwright.WaitForSelectorState, error) {
	switch state {
	case entities.WaitStateVisible:
		return playwright.WaitForSelectorStateVisible, nil
	case entities.WaitStateHidden:
		return playwright.WaitForSelectorStateHidden, nil
	case entities.WaitStateAttached:
		return playwright.WaitForSelectorStateAttached, nil
	case entities.WaitStateDetached:
		return playwright.WaitForSelectorStateDetached, nil
	}
	return nil, Error.New("unsupported wait state %q", state)
}

// locatorClickOptions - translates ClickOptions, leaving unset fields to playwright
func locatorClickOptions(ctx context.Context, opts entities.ClickOptions) playwright.LocatorClickOptions {
	timeout := actionTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	out := playwright.LocatorClickOptions{
		Timeout: timeoutMs(ctx, timeout),
	}
	switch opts.EffectiveButton() {
	case entities.MouseButtonRight:
		out.Button = playwright.MouseButtonRight
	case entities.MouseButtonMiddle:
		out.Button = playwright.MouseButtonMiddle
	}
	if opts.ClickCount > 1 {
		out.ClickCount = playwright.Int(opts.ClickCount)
	}
	if opts.Delay > 0 {
		out.Delay = playwright.Float(float64(opts.Delay.Milliseconds()))
	}
	if opts.Force {
		out.Force = playwright.Bool(true)
	}
	return out
}

// ignoreClosed - drops errors caused by an already closed target
func ignoreClosed(err error) error {
	if errors.Is(err, playwright.ErrTargetClosed) {
		return nil
	}
	return err
}
