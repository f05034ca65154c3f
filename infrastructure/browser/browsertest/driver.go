// Package browsertest provides a scripted in-memory Driver for unit tests.
// Elements are created on first use and configured by the test; waits poll
// the scripted state in real time.
package browsertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

const pollStep = 2 * time.Millisecond

// Driver is an in-memory interfaces.Driver
type Driver struct {
	mu       sync.Mutex
	url      string
	title    string
	elements map[string]*Element
	options  map[string][]string
	selected map[string]string
	keys     []string
	visits   []string
	slept    []time.Duration
	closed   bool

	// OnNavigate is called after every navigation, outside the driver lock
	OnNavigate func(d *Driver, url string)
	// NavigateErr is returned by Navigate when set
	NavigateErr error
}

var _ interfaces.Driver = (*Driver)(nil)

// NewDriver creates an empty driver
func NewDriver() *Driver {
	return &Driver{
		elements: make(map[string]*Element),
		options:  make(map[string][]string),
		selected: make(map[string]string),
	}
}

// Element returns the scripted element for selector, creating a visible one if needed
func (d *Driver) Element(selector string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.elements[selector]
	if !ok {
		el = newElement(d, selector)
		d.elements[selector] = el
	}
	return el
}

// Navigate records the visit and sets the current URL
func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	if d.NavigateErr != nil {
		err := d.NavigateErr
		d.mu.Unlock()
		return err
	}
	d.url = url
	d.visits = append(d.visits, url)
	hook := d.OnNavigate
	d.mu.Unlock()

	if hook != nil {
		hook(d, url)
	}
	return nil
}

// SetURL changes the current URL without recording a visit
func (d *Driver) SetURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
}

func (d *Driver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

// SetTitle sets the page title
func (d *Driver) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = title
}

func (d *Driver) Title(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, nil
}

func (d *Driver) Locate(selector string) interfaces.Element {
	return d.Element(selector)
}

func (d *Driver) PressKey(ctx context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys = append(d.keys, key)
	return nil
}

// SetSelectOptions declares the option values of a <select>
func (d *Driver) SetSelectOptions(selector string, values ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.options[selector] = values
}

func (d *Driver) SelectOption(ctx context.Context, selector string, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	values, ok := d.options[selector]
	if !ok {
		return fmt.Errorf("no select element matches %q", selector)
	}
	for _, v := range values {
		if v == value {
			d.selected[selector] = value
			return nil
		}
	}
	return fmt.Errorf("select %q has no option %q", selector, value)
}

func (d *Driver) SelectedValue(ctx context.Context, selector string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.options[selector]; !ok {
		return "", fmt.Errorf("no select element matches %q", selector)
	}
	return d.selected[selector], nil
}

// Sleep blocks for dur unless ctx ends first
func (d *Driver) Sleep(ctx context.Context, dur time.Duration) error {
	d.mu.Lock()
	d.slept = append(d.slept, dur)
	d.mu.Unlock()

	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Closed reports whether Close was called
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Keys returns the globally pressed keys
func (d *Driver) Keys() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.keys...)
}

// Visits returns every navigated URL in order
func (d *Driver) Visits() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.visits...)
}

// Slept returns the durations passed to Sleep
func (d *Driver) Slept() []time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]time.Duration(nil), d.slept...)
}

// Factory returns a session factory that always hands out d
func (d *Driver) Factory() interfaces.SessionFactory {
	return func(ctx context.Context) (interfaces.Driver, error) {
		return d, nil
	}
}

// waitUntil polls cond until it holds, timeout passes or ctx ends
func waitUntil(ctx context.Context, timeout time.Duration, cond func() bool) error {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("timeout %v exceeded", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollStep):
		}
	}
}

func stateHolds(el *Element, state entities.WaitState) bool {
	attached, visible := el.state()
	switch state {
	case entities.WaitStateVisible:
		return visible
	case entities.WaitStateHidden:
		return !visible
	case entities.WaitStateAttached:
		return attached
	case entities.WaitStateDetached:
		return !attached
	}
	return false
}
