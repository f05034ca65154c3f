package browsertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

type visibilityChange struct {
	at      time.Time
	visible bool
}

// Element is a scripted interfaces.Element
type Element struct {
	d        *Driver
	selector string

	mu       sync.Mutex
	attached bool
	visible  bool
	enabled  bool
	focused  bool
	count    int
	text     *string
	attrs    map[string]string
	schedule []visibilityChange

	clicks  []entities.ClickOptions
	fills   []string
	keys    []string
	hovers  int
	scrolls int

	// OnClick runs after a successful click, outside the element lock
	OnClick func(d *Driver)
	// Err is returned by every action when set
	Err error
}

var _ interfaces.Element = (*Element)(nil)

func newElement(d *Driver, selector string) *Element {
	empty := ""
	return &Element{
		d:        d,
		selector: selector,
		attached: true,
		visible:  true,
		enabled:  true,
		count:    1,
		text:     &empty,
		attrs:    make(map[string]string),
	}
}

// Show makes the element attached and visible now
func (e *Element) Show() *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.schedule = nil
	e.attached, e.visible = true, true
	if e.count == 0 {
		e.count = 1
	}
	return e
}

// Hide keeps the element attached but invisible
func (e *Element) Hide() *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.schedule = nil
	e.attached, e.visible = true, false
	return e
}

// Detach removes the element from the DOM
func (e *Element) Detach() *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.schedule = nil
	e.attached, e.visible = false, false
	e.count = 0
	return e
}

// ShowAfter schedules the element to become visible after d
func (e *Element) ShowAfter(d time.Duration) *Element {
	return e.scheduleChange(d, true)
}

// HideAfter schedules the element to become hidden after d
func (e *Element) HideAfter(d time.Duration) *Element {
	return e.scheduleChange(d, false)
}

func (e *Element) scheduleChange(d time.Duration, visible bool) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attached = true
	e.schedule = append(e.schedule, visibilityChange{at: time.Now().Add(d), visible: visible})
	return e
}

// SetText sets the text content
func (e *Element) SetText(text string) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = &text
	return e
}

// ClearText makes TextContent report ErrNoContent
func (e *Element) ClearText() *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = nil
	return e
}

// SetAttribute sets an attribute value
func (e *Element) SetAttribute(name, value string) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attrs[name] = value
	return e
}

// SetEnabled sets the enabled flag
func (e *Element) SetEnabled(enabled bool) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
	return e
}

// SetFocused sets the focus flag
func (e *Element) SetFocused(focused bool) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focused = focused
	return e
}

// SetCount sets the number of matching nodes
func (e *Element) SetCount(n int) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.count = n
	return e
}

// Clicks returns the options of every click
func (e *Element) Clicks() []entities.ClickOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]entities.ClickOptions(nil), e.clicks...)
}

// Fills returns every filled text
func (e *Element) Fills() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.fills...)
}

// Keys returns the keys pressed on the element
func (e *Element) Keys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.keys...)
}

// Hovers returns how often the element was hovered
func (e *Element) Hovers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hovers
}

// Scrolls returns how often the element was scrolled into view
func (e *Element) Scrolls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scrolls
}

// state applies due visibility changes and returns the current state
func (e *Element) state() (attached, visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	pending := e.schedule[:0]
	for _, c := range e.schedule {
		if !c.at.After(now) {
			e.visible = c.visible
			continue
		}
		pending = append(pending, c)
	}
	e.schedule = pending
	return e.attached, e.attached && e.visible
}

func (e *Element) Selector() string {
	return e.selector
}

func (e *Element) actionable() error {
	if e.Err != nil {
		return e.Err
	}
	if attached, _ := e.state(); !attached {
		return fmt.Errorf("element %q is not attached", e.selector)
	}
	return nil
}

func (e *Element) Click(ctx context.Context, opts entities.ClickOptions) error {
	if err := e.actionable(); err != nil {
		return err
	}
	e.mu.Lock()
	e.clicks = append(e.clicks, opts)
	hook := e.OnClick
	e.mu.Unlock()

	if hook != nil {
		hook(e.d)
	}
	return nil
}

func (e *Element) Fill(ctx context.Context, text string) error {
	if err := e.actionable(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fills = append(e.fills, text)
	e.attrs["value"] = text
	return nil
}

func (e *Element) Hover(ctx context.Context) error {
	if err := e.actionable(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hovers++
	return nil
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	if err := e.actionable(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scrolls++
	return nil
}

func (e *Element) IsFocused(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused, e.Err
}

func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled, e.Err
}

func (e *Element) IsVisible(ctx context.Context) (bool, error) {
	_, visible := e.state()
	return visible, e.Err
}

func (e *Element) Count(ctx context.Context) (int, error) {
	if attached, _ := e.state(); !attached {
		return 0, e.Err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count, e.Err
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	if err := e.actionable(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attrs[name], nil
}

func (e *Element) TextContent(ctx context.Context) (string, error) {
	if err := e.actionable(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.text == nil {
		return "", interfaces.ErrNoContent
	}
	return *e.text, nil
}

func (e *Element) Press(ctx context.Context, key string) error {
	if err := e.actionable(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focused = true
	e.keys = append(e.keys, key)
	return nil
}

func (e *Element) WaitFor(ctx context.Context, state entities.WaitState, timeout time.Duration) error {
	if e.Err != nil {
		return e.Err
	}
	return waitUntil(ctx, timeout, func() bool { return stateHolds(e, state) })
}
