package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

type chromedpEngine struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	logger      *logrus.Logger
}

// newChromedpEngine - prepares an exec allocator; chrome starts with the first session
func newChromedpEngine(opts Options, logger *logrus.Logger) (*chromedpEngine, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	binary := opts.ChromeBinary
	if binary == "" {
		binary = opts.DriverPath
	}
	if binary != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(binary))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	return &chromedpEngine{allocCtx: allocCtx, allocCancel: allocCancel, logger: logger}, nil
}

// NewSession - opens a new browser tab
func (e *chromedpEngine) NewSession(ctx context.Context) (interfaces.Driver, error) {
	tabCtx, cancel := chromedp.NewContext(e.allocCtx, chromedp.WithLogf(e.logger.Debugf))
	// the first Run starts the browser
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, Error.New("failed to start chrome: %w", err)
	}
	return &chromedpDriver{ctx: tabCtx, cancel: cancel, logger: e.logger}, nil
}

func (e *chromedpEngine) Close() error {
	e.allocCancel()
	return nil
}

type chromedpDriver struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *logrus.Logger

	mu  sync.Mutex
	url string
}

var _ interfaces.Driver = (*chromedpDriver)(nil)

// run - runs actions in the tab, bounded by the caller's ctx and timeout
func (d *chromedpDriver) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(d.ctx, remaining(ctx, timeout))
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return Error.Wrap(err)
	}
	return nil
}

// Navigate - navigates the tab and records the resulting location
func (d *chromedpDriver) Navigate(ctx context.Context, url string) error {
	d.logger.Debugf("Navigating to: %s", url)
	var location string
	if err := d.run(ctx, navigationTimeout, chromedp.Navigate(url), chromedp.Location(&location)); err != nil {
		return err
	}
	d.mu.Lock()
	d.url = location
	d.mu.Unlock()
	return nil
}

// URL - reads the current location, falling back to the last navigated one
func (d *chromedpDriver) URL() string {
	var location string
	if err := d.run(context.Background(), actionTimeout, chromedp.Location(&location)); err == nil {
		d.mu.Lock()
		d.url = location
		d.mu.Unlock()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

func (d *chromedpDriver) Title(ctx context.Context) (string, error) {
	var title string
	err := d.run(ctx, actionTimeout, chromedp.Title(&title))
	return title, err
}

func (d *chromedpDriver) Locate(selector string) interfaces.Element {
	return &chromedpElement{selector: selector, driver: d}
}

func (d *chromedpDriver) PressKey(ctx context.Context, key string) error {
	return d.run(ctx, actionTimeout, chromedp.KeyEvent(chromedpKey(key)))
}

// SelectOption - sets the select's value when it has a matching option
func (d *chromedpDriver) SelectOption(ctx context.Context, selector string, value string) error {
	script := querySelector(selector, fmt.Sprintf(`(function() {
		if (el === null) return "missing";
		const opt = Array.from(el.options || []).find(o => o.value === %q);
		if (!opt) return "no option";
		el.value = opt.value;
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return "";
	})()`, value))

	var outcome string
	if err := d.run(ctx, actionTimeout, chromedp.Evaluate(script, &outcome)); err != nil {
		return err
	}
	if outcome != "" {
		return Error.New("select %q: %s %q", selector, outcome, value)
	}
	return nil
}

func (d *chromedpDriver) SelectedValue(ctx context.Context, selector string) (string, error) {
	var value string
	err := d.run(ctx, actionTimeout, chromedp.Value(selector, &value, chromedp.ByQuery))
	return value, err
}

func (d *chromedpDriver) Sleep(ctx context.Context, dur time.Duration) error {
	return sleep(ctx, dur)
}

// Close - closes the tab
func (d *chromedpDriver) Close() error {
	if d.cancel == nil {
		return nil
	}
	err := chromedp.Cancel(d.ctx)
	d.cancel()
	d.cancel = nil
	return Error.Wrap(err)
}

type chromedpElement struct {
	selector string
	driver   *chromedpDriver
}

var _ interfaces.Element = (*chromedpElement)(nil)

func (e *chromedpElement) Selector() string {
	return e.selector
}

// eval - evaluates expr with `el` bound to the first matching node
func (e *chromedpElement) eval(ctx context.Context, expr string, res interface{}) error {
	return e.driver.run(ctx, actionTimeout, chromedp.Evaluate(querySelector(e.selector, expr), res))
}

// Click - clicks the node center with the requested button and count
func (e *chromedpElement) Click(ctx context.Context, opts entities.ClickOptions) error {
	timeout := actionTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	if opts.Force {
		return e.driver.run(ctx, timeout,
			chromedp.WaitReady(e.selector, chromedp.ByQuery),
			chromedp.Evaluate(querySelector(e.selector, "(el.click(), true)"), nil),
		)
	}

	var nodes []*cdp.Node
	return e.driver.run(ctx, timeout,
		chromedp.WaitVisible(e.selector, chromedp.ByQuery),
		chromedp.ScrollIntoView(e.selector, chromedp.ByQuery),
		chromedp.Nodes(e.selector, &nodes, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if len(nodes) == 0 {
				return Error.New("element %q not found", e.selector)
			}
			if opts.Delay > 0 {
				return e.slowClick(ctx, nodes[0], opts)
			}
			return chromedp.MouseClickNode(nodes[0], mouseOptions(opts)...).Do(ctx)
		}),
	)
}

// slowClick - presses and releases the button with a pause in between, once per click
func (e *chromedpElement) slowClick(ctx context.Context, node *cdp.Node, opts entities.ClickOptions) error {
	var center struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	expr := "(function() { const r = el.getBoundingClientRect(); return {x: r.x + r.width / 2, y: r.y + r.height / 2}; })()"
	if err := chromedp.Evaluate(querySelector(e.selector, expr), &center).Do(ctx); err != nil {
		return err
	}

	for i := 1; i <= opts.Clicks(); i++ {
		mouse := append(mouseOptions(opts), chromedp.ClickCount(i))
		if err := chromedp.MouseEvent(input.MousePressed, center.X, center.Y, mouse...).Do(ctx); err != nil {
			return err
		}
		if err := sleep(ctx, opts.Delay); err != nil {
			return err
		}
		if err := chromedp.MouseEvent(input.MouseReleased, center.X, center.Y, mouse...).Do(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Fill - clears the field and types text
func (e *chromedpElement) Fill(ctx context.Context, text string) error {
	actions := []chromedp.Action{
		chromedp.WaitVisible(e.selector, chromedp.ByQuery),
		chromedp.Clear(e.selector, chromedp.ByQuery),
	}
	if text != "" {
		actions = append(actions, chromedp.SendKeys(e.selector, text, chromedp.ByQuery))
	}
	return e.driver.run(ctx, actionTimeout, actions...)
}

// Hover - moves the mouse to the element center
func (e *chromedpElement) Hover(ctx context.Context) error {
	var center struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	expr := "(function() { el.scrollIntoView({block: 'center'}); const r = el.getBoundingClientRect(); return {x: r.x + r.width / 2, y: r.y + r.height / 2}; })()"
	return e.driver.run(ctx, actionTimeout,
		chromedp.WaitVisible(e.selector, chromedp.ByQuery),
		chromedp.Evaluate(querySelector(e.selector, expr), &center),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return chromedp.MouseEvent(input.MouseMoved, center.X, center.Y).Do(ctx)
		}),
	)
}

func (e *chromedpElement) ScrollIntoView(ctx context.Context) error {
	return e.driver.run(ctx, actionTimeout, chromedp.ScrollIntoView(e.selector, chromedp.ByQuery))
}

func (e *chromedpElement) IsFocused(ctx context.Context) (bool, error) {
	var focused bool
	err := e.eval(ctx, "el !== null && el === document.activeElement", &focused)
	return focused, err
}

func (e *chromedpElement) IsEnabled(ctx context.Context) (bool, error) {
	var state string
	if err := e.eval(ctx, `el === null ? "missing" : (el.disabled ? "disabled" : "enabled")`, &state); err != nil {
		return false, err
	}
	if state == "missing" {
		return false, Error.New("element %q not found", e.selector)
	}
	return state == "enabled", nil
}

func (e *chromedpElement) IsVisible(ctx context.Context) (bool, error) {
	expr, err := stateScript(entities.WaitStateVisible)
	if err != nil {
		return false, err
	}
	var visible bool
	err = e.eval(ctx, expr, &visible)
	return visible, err
}

func (e *chromedpElement) Count(ctx context.Context) (int, error) {
	var nodes []*cdp.Node
	err := e.driver.run(ctx, actionTimeout, chromedp.Nodes(e.selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	return len(nodes), err
}

func (e *chromedpElement) Attribute(ctx context.Context, name string) (string, error) {
	var (
		value string
		ok    bool
	)
	err := e.driver.run(ctx, actionTimeout, chromedp.AttributeValue(e.selector, name, &value, &ok, chromedp.ByQuery))
	return value, err
}

// TextContent - reads textContent, reporting a null value as ErrNoContent
func (e *chromedpElement) TextContent(ctx context.Context) (string, error) {
	var result interface{}
	err := e.driver.run(ctx, actionTimeout,
		chromedp.WaitReady(e.selector, chromedp.ByQuery),
		chromedp.Evaluate(querySelector(e.selector, "el.textContent"), &result),
	)
	if err != nil {
		return "", err
	}
	text, ok := result.(string)
	if !ok {
		return "", interfaces.ErrNoContent
	}
	return text, nil
}

func (e *chromedpElement) Press(ctx context.Context, key string) error {
	return e.driver.run(ctx, actionTimeout,
		chromedp.Focus(e.selector, chromedp.ByQuery),
		chromedp.KeyEvent(chromedpKey(key)),
	)
}

// WaitFor - polls the state expression in the page until it holds or timeout passes
func (e *chromedpElement) WaitFor(ctx context.Context, state entities.WaitState, timeout time.Duration) error {
	expr, err := stateScript(state)
	if err != nil {
		return err
	}
	limit := remaining(ctx, timeout)
	err = e.driver.run(ctx, limit+time.Second,
		chromedp.Poll(querySelector(e.selector, expr), nil,
			chromedp.WithPollingInterval(statePollInterval),
			chromedp.WithPollingTimeout(limit),
		),
	)
	if err != nil {
		return Error.New("waiting for %q to be %s: %w", e.selector, state, err)
	}
	return nil
}

// mouseOptions - maps button and count to chromedp mouse options
func mouseOptions(opts entities.ClickOptions) []chromedp.MouseOption {
	var out []chromedp.MouseOption
	switch opts.EffectiveButton() {
	case entities.MouseButtonRight:
		out = append(out, chromedp.ButtonRight)
	case entities.MouseButtonMiddle:
		out = append(out, chromedp.ButtonMiddle)
	}
	if opts.Clicks() > 1 {
		out = append(out, chromedp.ClickCount(opts.Clicks()))
	}
	return out
}
