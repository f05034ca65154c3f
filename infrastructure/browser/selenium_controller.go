package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

const defaultChromeDriverPort = 9515

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
		return "", Error.New("chromedriver not found at %s", configured)
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", Error.New("chromedriver not found. Please install it or set browser.driverPath")
}

type seleniumEngine struct {
	service  *selenium.Service
	caps     selenium.Capabilities
	endpoint string
	logger   *logrus.Logger
}

// newSeleniumEngine - starts a chromedriver service sessions connect to
func newSeleniumEngine(opts Options, logger *logrus.Logger) (*seleniumEngine, error) {
	driverPath, err := findChromeDriver(opts.DriverPath)
	if err != nil {
		return nil, err
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	port := opts.Port
	if port == 0 {
		port = defaultChromeDriverPort
	}

	service, err := selenium.NewChromeDriverService(driverPath, port)
	if err != nil {
		return nil, Error.New("failed to start chromedriver: %w", err)
	}

	return &seleniumEngine{
		service:  service,
		caps:     seleniumCapabilities(opts),
		endpoint: fmt.Sprintf("http://localhost:%d/wd/hub", port),
		logger:   logger,
	}, nil
}

// seleniumCapabilities - builds the chrome capabilities for opts
func seleniumCapabilities(opts Options) selenium.Capabilities {
	caps := selenium.Capabilities{
		"browserName": "chrome",
	}

	args := []string{
		"--disable-dev-shm-usage",
		"--no-sandbox",
		fmt.Sprintf("--window-size=%d,%d", viewportWidth, viewportHeight),
	}
	if opts.Headless {
		args = append(args, "--headless=new")
	}

	chromeCaps := chrome.Capabilities{Args: args}
	if opts.ChromeBinary != "" {
		chromeCaps.Path = opts.ChromeBinary
	}
	caps.AddChrome(chromeCaps)
	return caps
}

// NewSession - creates a new webdriver session
func (e *seleniumEngine) NewSession(ctx context.Context) (interfaces.Driver, error) {
	wd, err := selenium.NewRemote(e.caps, e.endpoint)
	if err != nil {
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, Error.New("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set browser.chromeBinary: %w", err)
		}
		return nil, Error.New("failed to create webdriver: %w", err)
	}
	return &seleniumDriver{wd: wd, logger: e.logger}, nil
}

// Close - stops the chromedriver service
func (e *seleniumEngine) Close() error {
	if e.service == nil {
		return nil
	}
	err := e.service.Stop()
	e.service = nil
	return Error.Wrap(err)
}

type seleniumDriver struct {
	wd     selenium.WebDriver
	logger *logrus.Logger
}

var _ interfaces.Driver = (*seleniumDriver)(nil)

// Navigate - navigates browser to specified URL
func (s *seleniumDriver) Navigate(ctx context.Context, url string) error {
	s.logger.Debugf("Navigating to: %s", url)
	return Error.Wrap(s.wd.Get(url))
}

func (s *seleniumDriver) URL() string {
	url, err := s.wd.CurrentURL()
	if err != nil {
		s.logger.Warnf("Failed to read current URL: %v", err)
	}
	return url
}

func (s *seleniumDriver) Title(ctx context.Context) (string, error) {
	title, err := s.wd.Title()
	return title, Error.Wrap(err)
}

func (s *seleniumDriver) Locate(selector string) interfaces.Element {
	return &seleniumElement{selector: selector, driver: s}
}

// PressKey - sends a key to the focused element
func (s *seleniumDriver) PressKey(ctx context.Context, key string) error {
	active, err := s.wd.ActiveElement()
	if err != nil {
		return Error.Wrap(err)
	}
	return Error.Wrap(active.SendKeys(seleniumKey(key)))
}

func (s *seleniumDriver) SelectOption(ctx context.Context, selector string, value string) error {
	el, err := s.wd.FindElement(selenium.ByCSSSelector, fmt.Sprintf("%s option[value=%q]", selector, value))
	if err != nil {
		return Error.New("select %q has no option %q: %w", selector, value, err)
	}
	return Error.Wrap(el.Click())
}

func (s *seleniumDriver) SelectedValue(ctx context.Context, selector string) (string, error) {
	el, err := s.wd.FindElement(selenium.ByCSSSelector, selector)
	if err != nil {
		return "", Error.Wrap(err)
	}
	result, err := s.wd.ExecuteScript("return arguments[0].value;", []interface{}{el})
	if err != nil {
		return "", Error.Wrap(err)
	}
	value, _ := result.(string)
	return value, nil
}

func (s *seleniumDriver) Sleep(ctx context.Context, dur time.Duration) error {
	return sleep(ctx, dur)
}

// Close - ends the webdriver session
func (s *seleniumDriver) Close() error {
	if s.wd == nil {
		return nil
	}
	err := s.wd.Quit()
	s.wd = nil
	return Error.Wrap(err)
}

type seleniumElement struct {
	selector string
	driver   *seleniumDriver
}

var _ interfaces.Element = (*seleniumElement)(nil)

func (e *seleniumElement) Selector() string {
	return e.selector
}

// find - resolves the first matching element
func (e *seleniumElement) find() (selenium.WebElement, error) {
	el, err := e.driver.wd.FindElement(selenium.ByCSSSelector, e.selector)
	if err != nil {
		return nil, Error.New("element %q not found: %w", e.selector, err)
	}
	return el, nil
}

// findWhen - waits up to the action timeout for the element to satisfy state and returns it
func (e *seleniumElement) findWhen(ctx context.Context, state entities.WaitState, timeout time.Duration) (selenium.WebElement, error) {
	if err := e.WaitFor(ctx, state, timeout); err != nil {
		return nil, err
	}
	return e.find()
}

func (e *seleniumElement) script(ctx context.Context, body string, args ...interface{}) (interface{}, error) {
	result, err := e.driver.wd.ExecuteScript(body, args)
	return result, Error.Wrap(err)
}

// Click - clicks on the element; non default buttons, counts and delays are dispatched as DOM events
func (e *seleniumElement) Click(ctx context.Context, opts entities.ClickOptions) error {
	timeout := actionTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	state := entities.WaitStateVisible
	if opts.Force {
		state = entities.WaitStateAttached
	}
	el, err := e.findWhen(ctx, state, timeout)
	if err != nil {
		return err
	}

	if opts.Force {
		_, err := e.script(ctx, "arguments[0].click(); return true;", el)
		return err
	}

	button := opts.EffectiveButton()
	if button == entities.MouseButtonLeft && opts.Clicks() == 1 && opts.Delay == 0 {
		return Error.Wrap(el.Click())
	}

	// chromedriver speaks W3C only, so the legacy mouse endpoints are unavailable
	code := seleniumButton(button)
	for i := 1; i <= opts.Clicks(); i++ {
		if _, err := e.script(ctx, mousePressScript, el, code, i); err != nil {
			return err
		}
		if opts.Delay > 0 {
			if err := sleep(ctx, opts.Delay); err != nil {
				return err
			}
		}
		if _, err := e.script(ctx, mouseReleaseScript, el, code, i); err != nil {
			return err
		}
	}
	return nil
}

func (e *seleniumElement) Fill(ctx context.Context, text string) error {
	el, err := e.findWhen(ctx, entities.WaitStateVisible, actionTimeout)
	if err != nil {
		return err
	}
	if err := el.Clear(); err != nil {
		return Error.Wrap(err)
	}
	if text == "" {
		return nil
	}
	return Error.Wrap(el.SendKeys(text))
}

func (e *seleniumElement) Hover(ctx context.Context) error {
	el, err := e.findWhen(ctx, entities.WaitStateVisible, actionTimeout)
	if err != nil {
		return err
	}
	_, err = e.script(ctx, mouseHoverScript, el)
	return err
}

// ScrollIntoView - scrolls element into view using JavaScript
func (e *seleniumElement) ScrollIntoView(ctx context.Context) error {
	el, err := e.findWhen(ctx, entities.WaitStateAttached, actionTimeout)
	if err != nil {
		return err
	}
	_, err = e.script(ctx, "arguments[0].scrollIntoView({block: 'center'}); return true;", el)
	return err
}

func (e *seleniumElement) IsFocused(ctx context.Context) (bool, error) {
	el, err := e.find()
	if err != nil {
		return false, err
	}
	result, err := e.script(ctx, "return arguments[0] === document.activeElement;", el)
	if err != nil {
		return false, err
	}
	focused, _ := result.(bool)
	return focused, nil
}

func (e *seleniumElement) IsEnabled(ctx context.Context) (bool, error) {
	el, err := e.find()
	if err != nil {
		return false, err
	}
	enabled, err := el.IsEnabled()
	return enabled, Error.Wrap(err)
}

// IsVisible - checks if element is displayed, a missing element is not visible
func (e *seleniumElement) IsVisible(ctx context.Context) (bool, error) {
	elements, err := e.driver.wd.FindElements(selenium.ByCSSSelector, e.selector)
	if err != nil {
		return false, Error.Wrap(err)
	}
	if len(elements) == 0 {
		return false, nil
	}
	visible, err := elements[0].IsDisplayed()
	return visible, Error.Wrap(err)
}

func (e *seleniumElement) Count(ctx context.Context) (int, error) {
	elements, err := e.driver.wd.FindElements(selenium.ByCSSSelector, e.selector)
	return len(elements), Error.Wrap(err)
}

func (e *seleniumElement) Attribute(ctx context.Context, name string) (string, error) {
	el, err := e.findWhen(ctx, entities.WaitStateAttached, actionTimeout)
	if err != nil {
		return "", err
	}
	value, err := el.GetAttribute(name)
	if err != nil && strings.Contains(err.Error(), "nil return value") {
		return "", nil
	}
	return value, Error.Wrap(err)
}

// TextContent - reads textContent through JavaScript so that null stays distinguishable
func (e *seleniumElement) TextContent(ctx context.Context) (string, error) {
	el, err := e.findWhen(ctx, entities.WaitStateAttached, actionTimeout)
	if err != nil {
		return "", err
	}
	result, err := e.script(ctx, "return arguments[0].textContent;", el)
	if err != nil {
		return "", err
	}
	text, ok := result.(string)
	if !ok {
		return "", interfaces.ErrNoContent
	}
	return text, nil
}

func (e *seleniumElement) Press(ctx context.Context, key string) error {
	el, err := e.findWhen(ctx, entities.WaitStateVisible, actionTimeout)
	if err != nil {
		return err
	}
	return Error.Wrap(el.SendKeys(seleniumKey(key)))
}

// WaitFor - polls the element state until it matches or timeout passes
func (e *seleniumElement) WaitFor(ctx context.Context, state entities.WaitState, timeout time.Duration) error {
	condition := func(wd selenium.WebDriver) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		return e.holds(ctx, state)
	}
	err := e.driver.wd.WaitWithTimeoutAndInterval(condition, remaining(ctx, timeout), statePollInterval)
	if err != nil {
		return Error.New("waiting for %q to be %s: %w", e.selector, state, err)
	}
	return nil
}

func (e *seleniumElement) holds(ctx context.Context, state entities.WaitState) (bool, error) {
	switch state {
	case entities.WaitStateVisible, entities.WaitStateHidden:
		visible, err := e.IsVisible(ctx)
		if err != nil {
			// stale references mean the node went away between lookups
			return state == entities.WaitStateHidden, nil
		}
		return visible == (state == entities.WaitStateVisible), nil
	case entities.WaitStateAttached, entities.WaitStateDetached:
		n, err := e.Count(ctx)
		if err != nil {
			return false, err
		}
		return (n > 0) == (state == entities.WaitStateAttached), nil
	}
	return false, Error.New("unsupported wait state %q", state)
}

// seleniumButton - maps a MouseButton to the webdriver button index, which is also the DOM button number
func seleniumButton(button entities.MouseButton) int {
	switch button {
	case entities.MouseButtonRight:
		return selenium.RightButton
	case entities.MouseButtonMiddle:
		return selenium.MiddleButton
	}
	return selenium.LeftButton
}

// Mouse scripts take the element, the DOM button number and the click count so far.
const mouseEventInit = `var el = arguments[0], button = arguments[1] || 0, detail = arguments[2] || 0;
var r = el.getBoundingClientRect();
var init = {bubbles: true, cancelable: true, composed: true, view: window, button: button, detail: detail,
	clientX: r.left + r.width / 2, clientY: r.top + r.height / 2};
`

const mouseHoverScript = mouseEventInit + `
['pointerover', 'pointerenter', 'mouseover', 'mouseenter', 'pointermove', 'mousemove'].forEach(function(type) {
	el.dispatchEvent(type.indexOf('pointer') === 0 ? new PointerEvent(type, init) : new MouseEvent(type, init));
});
return true;`

const mousePressScript = mouseEventInit + `
init.buttons = [1, 4, 2][button];
el.dispatchEvent(new PointerEvent('pointerdown', init));
el.dispatchEvent(new MouseEvent('mousedown', init));
if (button === 0 && el.focus) { el.focus(); }
return true;`

const mouseReleaseScript = mouseEventInit + `
init.buttons = 0;
el.dispatchEvent(new PointerEvent('pointerup', init));
el.dispatchEvent(new MouseEvent('mouseup', init));
if (button === 0) {
	el.dispatchEvent(new MouseEvent('click', init));
	if (detail === 2) { el.dispatchEvent(new MouseEvent('dblclick', init)); }
} else {
	el.dispatchEvent(new MouseEvent('auxclick', init));
	if (button === 2) { el.dispatchEvent(new MouseEvent('contextmenu', init)); }
}
return true;`
