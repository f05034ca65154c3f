package browser

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"ui_automation/domain/entities"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestOpen_UnknownEngine(t *testing.T) {
	engine, err := Open(Options{Engine: "lynx"}, quietLogger())
	require.Error(t, err)
	assert.Nil(t, engine)
	assert.True(t, Error.Has(err))
	assert.Contains(t, err.Error(), `unknown engine "lynx"`)
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, 3*time.Second, remaining(context.Background(), 3*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	left := remaining(ctx, time.Minute)
	assert.LessOrEqual(t, left, 50*time.Millisecond)
	assert.Greater(t, left, time.Duration(0))

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	assert.Equal(t, time.Millisecond, remaining(expired, time.Minute))
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, sleep(context.Background(), time.Millisecond))
}

func TestStateScript(t *testing.T) {
	for _, state := range []entities.WaitState{
		entities.WaitStateVisible,
		entities.WaitStateHidden,
		entities.WaitStateAttached,
		entities.WaitStateDetached,
	} {
		expr, err := stateScript(state)
		require.NoError(t, err, state)
		assert.Contains(t, expr, "el")
	}

	visible, _ := stateScript(entities.WaitStateVisible)
	hidden, _ := stateScript(entities.WaitStateHidden)
	assert.Equal(t, "!"+visible, hidden)

	_, err := stateScript("blinking")
	assert.True(t, Error.Has(err))
}

func TestQuerySelector(t *testing.T) {
	got := querySelector(`[data-test="error"]`, "el !== null")
	assert.Equal(t, `(function(el) { return el !== null; })(document.querySelector("[data-test=\"error\"]"))`, got)
}

func TestWaitForSelectorState(t *testing.T) {
	cases := map[entities.WaitState]*playwright.WaitForSelectorState{
		entities.WaitStateVisible:  playwright.WaitForSelectorStateVisible,
		entities.WaitStateHidden:   playwright.WaitForSelectorStateHidden,
		entities.WaitStateAttached: playwright.WaitForSelectorStateAttached,
		entities.WaitStateDetached: playwright.WaitForSelectorStateDetached,
	}
	for state, want := range cases {
		got, err := waitForSelectorState(state)
		require.NoError(t, err)
		assert.Equal(t, want, got, state)
	}

	_, err := waitForSelectorState("gone")
	assert.Error(t, err)
}

func TestLocatorClickOptions(t *testing.T) {
	ctx := context.Background()

	plain := locatorClickOptions(ctx, entities.ClickOptions{})
	assert.Nil(t, plain.Button)
	assert.Nil(t, plain.ClickCount)
	assert.Nil(t, plain.Delay)
	assert.Nil(t, plain.Force)
	require.NotNil(t, plain.Timeout)
	assert.Equal(t, float64(actionTimeout.Milliseconds()), *plain.Timeout)

	full := locatorClickOptions(ctx, entities.ClickOptions{
		Button:     entities.MouseButtonRight,
		ClickCount: 2,
		Delay:      150 * time.Millisecond,
		Force:      true,
		Timeout:    2 * time.Second,
	})
	assert.Equal(t, playwright.MouseButtonRight, full.Button)
	assert.Equal(t, 2, *full.ClickCount)
	assert.Equal(t, 150.0, *full.Delay)
	assert.True(t, *full.Force)
	assert.Equal(t, 2000.0, *full.Timeout)

	middle := locatorClickOptions(ctx, entities.ClickOptions{Button: entities.MouseButtonMiddle})
	assert.Equal(t, playwright.MouseButtonMiddle, middle.Button)
}

func TestMouseOptions(t *testing.T) {
	assert.Empty(t, mouseOptions(entities.ClickOptions{}))
	assert.Len(t, mouseOptions(entities.ClickOptions{Button: entities.MouseButtonRight}), 1)
	assert.Len(t, mouseOptions(entities.ClickOptions{Button: entities.MouseButtonMiddle, ClickCount: 3}), 2)
}

func TestSeleniumButton(t *testing.T) {
	assert.Equal(t, selenium.LeftButton, seleniumButton(entities.MouseButtonLeft))
	assert.Equal(t, selenium.LeftButton, seleniumButton(""))
	assert.Equal(t, selenium.RightButton, seleniumButton(entities.MouseButtonRight))
	assert.Equal(t, selenium.MiddleButton, seleniumButton(entities.MouseButtonMiddle))
}

func TestKeyMapping(t *testing.T) {
	assert.Equal(t, selenium.EnterKey, seleniumKey("Enter"))
	assert.Equal(t, selenium.TabKey, seleniumKey("Tab"))
	assert.Equal(t, "a", seleniumKey("a"))

	assert.Equal(t, " ", chromedpKey("Space"))
	assert.Equal(t, "hello", chromedpKey("hello"))

	for name := range seleniumKeys {
		_, ok := chromedpKeys[name]
		assert.True(t, ok, "key %s is only mapped for selenium", name)
	}
}

func TestSeleniumCapabilities(t *testing.T) {
	caps := seleniumCapabilities(Options{Headless: true, ChromeBinary: "/opt/chrome"})
	assert.Equal(t, "chrome", caps["browserName"])
	assert.NotNil(t, caps["goog:chromeOptions"])
}

func TestFindChromeDriver_ConfiguredMissing(t *testing.T) {
	_, err := findChromeDriver(t.TempDir() + "/no-such-driver")
	require.Error(t, err)
	assert.True(t, Error.Has(err))
}

type fakeDialog struct {
	playwright.Dialog
	acceptErr error
	accepted  int
}

func (d *fakeDialog) Type() string    { return "confirm" }
func (d *fakeDialog) Message() string { return "Leave page?" }

func (d *fakeDialog) Accept(promptText ...string) error {
	d.accepted++
	return d.acceptErr
}

func TestAcceptDialog(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	e := &playwrightEngine{logger: logger}

	ok := &fakeDialog{}
	e.acceptDialog(ok)
	assert.Equal(t, 1, ok.accepted)
	require.Len(t, hook.AllEntries(), 1)

	hook.Reset()
	failing := &fakeDialog{acceptErr: errors.New("target closed")}
	e.acceptDialog(failing)
	assert.Equal(t, 1, failing.accepted)
	require.Len(t, hook.AllEntries(), 2)
	last := hook.LastEntry()
	assert.Equal(t, logrus.DebugLevel, last.Level)
	assert.Contains(t, last.Message, "target closed")
}
