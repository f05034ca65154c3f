package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ui_automation/infrastructure/browser"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://www.saucedemo.com/", cfg.TestEnv)
	assert.Equal(t, "https://httpbin.org", cfg.APIBaseURL)
	assert.Equal(t, browser.EnginePlaywright, cfg.Browser.Engine)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 0, cfg.Browser.SlowMoMs)
	assert.Equal(t, ".ui_automation", cfg.Report.Dir)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel())
	assert.Zero(t, cfg.Random.Seed)
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(DefaultURLsFile)
	require.NoError(t, err)
	assert.Equal(t, "https://www.saucedemo.com/", cfg.TestEnv)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, Error.Has(err))
}

func TestLoad_URLsFile(t *testing.T) {
	path := writeFile(t, "env_urls.json", `{"testEnv": "https://staging.store.test/", "browser": {"engine": "Chromedp", "slowMoMs": 250}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.store.test/", cfg.TestEnv)
	assert.Equal(t, browser.EngineChromedp, cfg.Browser.Engine)

	opts := cfg.BrowserOptions()
	assert.Equal(t, browser.EngineChromedp, opts.Engine)
	assert.Equal(t, 250*time.Millisecond, opts.SlowMo)
	assert.True(t, opts.Headless)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeFile(t, "env_urls.json", `{"testEnv": "https://from-file.test/"}`)
	t.Setenv("UIAUTO_TESTENV", "https://from-env.test/")
	t.Setenv("UIAUTO_BROWSER_ENGINE", "selenium")
	t.Setenv("UIAUTO_BROWSER_HEADLESS", "false")
	t.Setenv("UIAUTO_RANDOM_SEED", "42")
	t.Setenv("UIAUTO_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.test/", cfg.TestEnv)
	assert.Equal(t, browser.EngineSelenium, cfg.Browser.Engine)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, uint64(42), cfg.Random.Seed)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty testEnv":   `{"testEnv": ""}`,
		"relative URL":    `{"testEnv": "/login"}`,
		"unknown engine":  `{"browser": {"engine": "lynx"}}`,
		"negative slowMo": `{"browser": {"slowMoMs": -5}}`,
		"bad log level":   `{"log": {"level": "chatty"}}`,
		"malformed json":  `{"testEnv": `,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "env_urls.json", content))
			require.Error(t, err)
			assert.True(t, Error.Has(err), err.Error())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "UIAUTO_DOTENV_PROBE"
	t.Cleanup(func() { os.Unsetenv(key) })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	LoadDotEnv(logger, filepath.Join(t.TempDir(), "missing.env"))
	assert.Empty(t, os.Getenv(key))

	LoadDotEnv(logger, writeFile(t, ".env", key+"=loaded\n"))
	assert.Equal(t, "loaded", os.Getenv(key))
}
