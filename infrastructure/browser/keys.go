package browser

import (
	"github.com/chromedp/chromedp/kb"
	"github.com/tebeka/selenium"
)

// Key names follow the DOM KeyboardEvent.key values playwright accepts.
// Anything else is sent as literal text.

var seleniumKeys = map[string]string{
	"Enter":      selenium.EnterKey,
	"Tab":        selenium.TabKey,
	"Escape":     selenium.EscapeKey,
	"Backspace":  selenium.BackspaceKey,
	"Delete":     selenium.DeleteKey,
	"ArrowUp":    selenium.UpArrowKey,
	"ArrowDown":  selenium.DownArrowKey,
	"ArrowLeft":  selenium.LeftArrowKey,
	"ArrowRight": selenium.RightArrowKey,
	"Home":       selenium.HomeKey,
	"End":        selenium.EndKey,
	"PageUp":     selenium.PageUpKey,
	"PageDown":   selenium.PageDownKey,
	"Space":      selenium.SpaceKey,
	"Shift":      selenium.ShiftKey,
	"Control":    selenium.ControlKey,
	"Alt":        selenium.AltKey,
	"Meta":       selenium.MetaKey,
}

var chromedpKeys = map[string]string{
	"Enter":      kb.Enter,
	"Tab":        kb.Tab,
	"Escape":     kb.Escape,
	"Backspace":  kb.Backspace,
	"Delete":     kb.Delete,
	"ArrowUp":    kb.ArrowUp,
	"ArrowDown":  kb.ArrowDown,
	"ArrowLeft":  kb.ArrowLeft,
	"ArrowRight": kb.ArrowRight,
	"Home":       kb.Home,
	"End":        kb.End,
	"PageUp":     kb.PageUp,
	"PageDown":   kb.PageDown,
	"Space":      " ",
	"Shift":      kb.Shift,
	"Control":    kb.Control,
	"Alt":        kb.Alt,
	"Meta":       kb.Meta,
}

// seleniumKey - maps a key name to the webdriver key code
func seleniumKey(key string) string {
	if code, ok := seleniumKeys[key]; ok {
		return code
	}
	return key
}

// chromedpKey - maps a key name to the chromedp key code
func chromedpKey(key string) string {
	if code, ok := chromedpKeys[key]; ok {
		return code
	}
	return key
}
