package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ui_automation/application/randgen"
	"ui_automation/domain/entities"
	"ui_automation/infrastructure/apicheck"
	"ui_automation/infrastructure/browser"
	"ui_automation/infrastructure/config"
	"ui_automation/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequester struct {
	closed atomic.Int32
}

func (f *fakeRequester) Do(ctx context.Context, method, path string, headers map[string]string) (apicheck.Response, error) {
	return apicheck.Response{Status: http.StatusOK, Body: []byte(`{"authenticated": true, "user": "user"}`)}, nil
}

func (f *fakeRequester) Close() error {
	f.closed.Add(1)
	return nil
}

type testApp struct {
	*App
	requester   *fakeRequester
	engineOpens atomic.Int32
	reportDir   string
}

// newTestApp runs in a fresh directory with the report store under it and
// no browser available
func newTestApp(t *testing.T) *testApp {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("UIAUTO_REPORT_DIR", dir+"/reports")

	ta := &testApp{requester: &fakeRequester{}, reportDir: dir + "/reports"}
	app := NewApp()
	app.OpenEngine = func(opts browser.Options, logger *logrus.Logger) (browser.Engine, error) {
		ta.engineOpens.Add(1)
		return nil, errors.New("no browser here")
	}
	app.NewRequester = func(baseURL string) (apicheck.Requester, error) {
		return ta.requester, nil
	}
	ta.App = app
	return ta
}

func (ta *testApp) execute(stdin string, args ...string) (string, error) {
	out := &bytes.Buffer{}
	ta.In = strings.NewReader(stdin)
	ta.Out = out
	ta.ErrOut = io.Discard

	cmd := NewRootCommand(ta.App)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestList(t *testing.T) {
	app := newTestApp(t)
	out, err := app.execute("", "list")
	require.NoError(t, err)

	for _, name := range app.Registry.Names() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "api-basic-auth           api")
}

func TestInvalidConfig(t *testing.T) {
	app := newTestApp(t)
	_, err := app.execute("", "--engine", "lynx", "list")
	require.Error(t, err)
	assert.True(t, config.Error.Has(err))

	_, err = app.execute("", "--config", "missing.json", "list")
	require.Error(t, err)
	assert.True(t, config.Error.Has(err))
}

func TestGenerate_Seeded(t *testing.T) {
	app := newTestApp(t)

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"generate", "password", "3", "--seed", "7"}, randgen.NewSeeded(7).Password(3)},
		{[]string{"generate", "digits", "12", "--seed", "7"}, randgen.NewSeeded(7).FixedDigits(12)},
		{[]string{"generate", "string", "20", "--seed", "7"}, randgen.NewSeeded(7).String(20)},
		{[]string{"generate", "int", "5", "9", "--seed", "7"}, strconv.Itoa(randgen.NewSeeded(7).Integer(5, 9))},
	}
	for _, tc := range cases {
		out, err := app.execute("", tc.args...)
		require.NoError(t, err, tc.args)
		assert.Equal(t, tc.want+"\n", out, tc.args)
	}
}

func TestGenerate_ConfiguredSeed(t *testing.T) {
	app := newTestApp(t)
	t.Setenv("UIAUTO_RANDOM_SEED", "42")

	first, err := app.execute("", "generate", "password", "2")
	require.NoError(t, err)
	second, err := app.execute("", "generate", "password", "2")
	require.NoError(t, err)

	assert.Equal(t, randgen.NewSeeded(42).Password(2)+"\n", first)
	assert.Equal(t, first, second)
}

func TestGenerate_BadArguments(t *testing.T) {
	app := newTestApp(t)

	_, err := app.execute("", "generate", "digits", "many")
	require.Error(t, err)
	assert.True(t, Error.Has(err))

	_, err = app.execute("", "generate", "int", "1")
	assert.Error(t, err)
}

func TestAPI(t *testing.T) {
	app := newTestApp(t)
	out, err := app.execute("", "api")
	require.NoError(t, err)

	assert.Contains(t, out, "PASSED  api-basic-auth")
	assert.Contains(t, out, "PASSED  api-delayed-response")
	assert.Contains(t, out, "Passed: 2, failed: 0, total: 2")
	assert.Zero(t, app.engineOpens.Load())
	assert.Equal(t, int32(1), app.requester.closed.Load())
}

func TestRun_NamedScenarioFails(t *testing.T) {
	app := newTestApp(t)
	out, err := app.execute("", "run", "basic-login", "api-basic-auth")
	require.Error(t, err)
	assert.True(t, Error.Has(err))
	assert.Contains(t, err.Error(), "1 of 2 scenarios failed")

	assert.Contains(t, out, "FAILED  basic-login")
	assert.Contains(t, out, "no browser here")
	assert.Contains(t, out, "PASSED  api-basic-auth")
	assert.Equal(t, int32(1), app.engineOpens.Load())
}

func TestRun_UnknownScenario(t *testing.T) {
	app := newTestApp(t)
	_, err := app.execute("", "run", "no-such-scenario")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-scenario")
}

func TestRun_Interactive(t *testing.T) {
	app := newTestApp(t)
	out, err := app.execute("api-basic-auth\nquit\n", "run")
	require.NoError(t, err)

	assert.Contains(t, out, "UI Automation")
	assert.Contains(t, out, "PASSED  api-basic-auth")
	assert.Contains(t, out, "Bye!")
	assert.Zero(t, app.engineOpens.Load())
}

func TestReport(t *testing.T) {
	app := newTestApp(t)

	out, err := app.execute("", "report")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")

	store, err := storage.NewReportStore(app.reportDir)
	require.NoError(t, err)
	for _, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, store.SaveRun(entities.RunReport{
			ID:        id,
			Engine:    browser.EngineSelenium,
			BaseURL:   "https://store.test/",
			StartedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			Results: []entities.ScenarioResult{
				{Name: "basic-login", Status: entities.ScenarioStatusPassed, DurationMs: 1200},
			},
		}))
	}

	out, err = app.execute("", "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Run run-3")
	assert.NotContains(t, out, "Run run-2")

	out, err = app.execute("", "report", "--last", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Run run-2")
	assert.Contains(t, out, "Run run-3")
	assert.NotContains(t, out, "Run run-1")

	_, err = app.execute("", "report", "-n", "0")
	assert.Error(t, err)
}

func TestReport_IncludesCommandRuns(t *testing.T) {
	app := newTestApp(t)
	_, err := app.execute("", "api")
	require.NoError(t, err)

	out, err := app.execute("", "report")
	require.NoError(t, err)
	assert.Contains(t, out, "api-delayed-response")
	assert.Contains(t, out, "https://www.saucedemo.com/")
}
