package interfaces

import (
	"context"
	"errors"
	"time"

	"ui_automation/domain/entities"
)

// ErrNoContent is returned by Element.TextContent when the resolved node has no text node
var ErrNoContent = errors.New("element has no text content")

// Driver defines the browser session a test step runs against
type Driver interface {
	// Navigate navigates the session to a URL
	Navigate(ctx context.Context, url string) error

	// URL returns the current page URL
	URL() string

	// Title returns the current page title
	Title(ctx context.Context) (string, error)

	// Locate returns a lazily resolved handle for a selector
	Locate(selector string) Element

	// PressKey dispatches a key press to the page
	PressKey(ctx context.Context, key string) error

	// SelectOption selects an option of a <select> by value
	SelectOption(ctx context.Context, selector string, value string) error

	// SelectedValue returns the current value of a <select>
	SelectedValue(ctx context.Context, selector string) (string, error)

	// Sleep suspends the caller for d
	Sleep(ctx context.Context, d time.Duration) error

	// Close releases the session
	Close() error
}

// Element is a handle to zero or more DOM nodes matching a selector.
// It is resolved again on every call.
type Element interface {
	// Selector returns the selection criterion the element was built from
	Selector() string

	// Click clicks the center of the element
	Click(ctx context.Context, opts entities.ClickOptions) error

	// Fill clears the element, types text and fires an input event
	Fill(ctx context.Context, text string) error

	// Hover moves the mouse over the element
	Hover(ctx context.Context) error

	// ScrollIntoView scrolls the element into view if needed
	ScrollIntoView(ctx context.Context) error

	// IsFocused reports whether the element has focus
	IsFocused(ctx context.Context) (bool, error)

	// IsEnabled reports whether the element is enabled
	IsEnabled(ctx context.Context) (bool, error)

	// IsVisible reports whether the element is visible right now
	IsVisible(ctx context.Context) (bool, error)

	// Count returns the number of matching nodes
	Count(ctx context.Context) (int, error)

	// Attribute returns an attribute value, empty when absent
	Attribute(ctx context.Context, name string) (string, error)

	// TextContent returns the node's textContent or ErrNoContent
	TextContent(ctx context.Context) (string, error)

	// Press focuses the element and presses a key
	Press(ctx context.Context, key string) error

	// WaitFor blocks until the element satisfies state or timeout expires
	WaitFor(ctx context.Context, state entities.WaitState, timeout time.Duration) error
}

// SessionFactory opens a new browser session
type SessionFactory func(ctx context.Context) (Driver, error)
