package entities

import "time"

// MouseButton identifies the button used for a click
type MouseButton string

const (
	MouseButtonLeft   MouseButton = "left"
	MouseButtonRight  MouseButton = "right"
	MouseButtonMiddle MouseButton = "middle"
)

// ClickOptions configures a click. The zero value is a plain left click
// with the driver's own actionability checks and timeout.
type ClickOptions struct {
	Button     MouseButton   `json:"button,omitempty"`
	ClickCount int           `json:"click_count,omitempty"`
	Delay      time.Duration `json:"delay,omitempty"` // between mousedown and mouseup
	Force      bool          `json:"force,omitempty"` // skip actionability checks
	Timeout    time.Duration `json:"timeout,omitempty"`
}

// MergeClickOptions folds variadic options into one, later values winning
func MergeClickOptions(opts ...ClickOptions) ClickOptions {
	var merged ClickOptions
	for _, o := range opts {
		if o.Button != "" {
			merged.Button = o.Button
		}
		if o.ClickCount > 0 {
			merged.ClickCount = o.ClickCount
		}
		if o.Delay > 0 {
			merged.Delay = o.Delay
		}
		if o.Force {
			merged.Force = true
		}
		if o.Timeout > 0 {
			merged.Timeout = o.Timeout
		}
	}
	return merged
}

// Clicks returns the effective click count
func (o ClickOptions) Clicks() int {
	if o.ClickCount < 1 {
		return 1
	}
	return o.ClickCount
}

// EffectiveButton returns the button, defaulting to left
func (o ClickOptions) EffectiveButton() MouseButton {
	if o.Button == "" {
		return MouseButtonLeft
	}
	return o.Button
}
