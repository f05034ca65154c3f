package browser

import (
	"context"
	"testing"
	"time"

	"ui_automation/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
)

type executedScript struct {
	body string
	args []interface{}
}

// fakeWebDriver answers lookups and scripts. Any other webdriver call hits the
// nil embedded interface and panics.
type fakeWebDriver struct {
	selenium.WebDriver
	element *fakeWebElement
	scripts []executedScript
}

func (f *fakeWebDriver) FindElement(by, value string) (selenium.WebElement, error) {
	return f.element, nil
}

func (f *fakeWebDriver) FindElements(by, value string) ([]selenium.WebElement, error) {
	return []selenium.WebElement{f.element}, nil
}

func (f *fakeWebDriver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	f.scripts = append(f.scripts, executedScript{body: script, args: args})
	return true, nil
}

func (f *fakeWebDriver) WaitWithTimeoutAndInterval(condition selenium.Condition, timeout, interval time.Duration) error {
	ok, err := condition(f)
	if err == nil && !ok {
		return assert.AnError
	}
	return err
}

type fakeWebElement struct {
	selenium.WebElement
	clicks int
}

func (f *fakeWebElement) IsDisplayed() (bool, error) { return true, nil }

func (f *fakeWebElement) Click() error {
	f.clicks++
	return nil
}

func newFakeSelenium() (*fakeWebDriver, *seleniumElement) {
	wd := &fakeWebDriver{element: &fakeWebElement{}}
	driver := &seleniumDriver{wd: wd, logger: quietLogger()}
	return wd, driver.Locate("#target").(*seleniumElement)
}

func TestSeleniumClick_Plain(t *testing.T) {
	wd, el := newFakeSelenium()
	require.NoError(t, el.Click(context.Background(), entities.ClickOptions{}))
	assert.Equal(t, 1, wd.element.clicks)
	assert.Empty(t, wd.scripts)
}

func TestSeleniumClick_DispatchesMouseEvents(t *testing.T) {
	cases := []struct {
		name   string
		opts   entities.ClickOptions
		button int
		clicks int
	}{
		{"right", entities.ClickOptions{Button: entities.MouseButtonRight}, 2, 1},
		{"middle", entities.ClickOptions{Button: entities.MouseButtonMiddle}, 1, 1},
		{"double", entities.ClickOptions{ClickCount: 2}, 0, 2},
		{"delayed right", entities.ClickOptions{Button: entities.MouseButtonRight, Delay: 5 * time.Millisecond}, 2, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wd, el := newFakeSelenium()
			require.NotPanics(t, func() {
				require.NoError(t, el.Click(context.Background(), tc.opts))
			})
			assert.Zero(t, wd.element.clicks)

			require.Len(t, wd.scripts, 2*tc.clicks)
			for i := 0; i < tc.clicks; i++ {
				press, release := wd.scripts[2*i], wd.scripts[2*i+1]
				assert.Equal(t, mousePressScript, press.body)
				assert.Equal(t, mouseReleaseScript, release.body)
				for _, s := range []executedScript{press, release} {
					require.Len(t, s.args, 3)
					assert.Equal(t, tc.button, s.args[1])
					assert.Equal(t, i+1, s.args[2])
				}
			}
		})
	}
}

func TestSeleniumHover_DispatchesMouseEvents(t *testing.T) {
	wd, el := newFakeSelenium()
	require.NotPanics(t, func() {
		require.NoError(t, el.Hover(context.Background()))
	})
	require.Len(t, wd.scripts, 1)
	assert.Equal(t, mouseHoverScript, wd.scripts[0].body)
	assert.Equal(t, []interface{}{wd.element}, wd.scripts[0].args)
}

func TestMouseScripts(t *testing.T) {
	assert.Contains(t, mouseHoverScript, "mouseover")
	assert.Contains(t, mousePressScript, "mousedown")
	assert.Contains(t, mouseReleaseScript, "contextmenu")
	assert.Contains(t, mouseReleaseScript, "dblclick")
	assert.Contains(t, mouseReleaseScript, "auxclick")
}
