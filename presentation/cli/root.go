// Package cli wires configuration, engines and scenarios into the
// ui-automation command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ui_automation/application/randgen"
	"ui_automation/application/scenario"
	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/apicheck"
	"ui_automation/infrastructure/browser"
	"ui_automation/infrastructure/config"
	"ui_automation/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
)

// Error is the class of command errors
var Error = errs.Class("cli")

// App carries what the commands share. The constructor hooks are
// replaced in tests.
type App struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	Registry     *scenario.Registry
	OpenEngine   func(opts browser.Options, logger *logrus.Logger) (browser.Engine, error)
	NewRequester func(baseURL string) (apicheck.Requester, error)

	v       *viper.Viper
	cfg     *config.Config
	logger  *logrus.Logger
	cfgFile string
	envFile string
}

// NewApp - creates an App bound to the process streams
func NewApp() *App {
	return &App{
		In:           os.Stdin,
		Out:          os.Stdout,
		ErrOut:       os.Stderr,
		Registry:     scenario.DefaultRegistry(),
		OpenEngine:   browser.Open,
		NewRequester: apicheck.NewPlaywrightRequester,
	}
}

// Execute - runs the command tree and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp()
	if err := NewRootCommand(app).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(app.ErrOut, "Error:", err)
		return 1
	}
	return 0
}

// NewRootCommand - builds the ui-automation command tree
func NewRootCommand(app *App) *cobra.Command {
	app.v = config.New()

	root := &cobra.Command{
		Use:           "ui-automation",
		Short:         "Storefront UI and API checks over playwright, selenium or chromedp",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.initialize()
		},
	}
	root.SetIn(app.In)
	root.SetOut(app.Out)
	root.SetErr(app.ErrOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&app.cfgFile, "config", "c", config.DefaultURLsFile, "env-URL JSON file")
	flags.StringVar(&app.envFile, "env-file", ".env", "optional dotenv file")
	flags.String("engine", browser.EnginePlaywright, "browser engine (playwright, selenium, chromedp)")
	flags.Bool("headless", true, "run the browser headless")
	flags.String("base-url", "", "storefront URL, overrides testEnv")
	flags.String("log-level", "info", "log level")

	bind := map[string]string{
		"browser.engine":   "engine",
		"browser.headless": "headless",
		"testEnv":          "base-url",
		"log.level":        "log-level",
	}
	for key, flag := range bind {
		if err := app.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		newRunCommand(app),
		newAPICommand(app),
		newListCommand(app),
		newReportCommand(app),
		newGenerateCommand(app),
	)
	return root
}

// initialize - loads the dotenv file and configuration, then sets up logging
func (a *App) initialize() error {
	a.logger = logrus.New()
	a.logger.SetOutput(a.ErrOut)
	a.logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	config.LoadDotEnv(a.logger, a.envFile)

	if err := config.ReadFile(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Decode(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger.SetLevel(cfg.LogLevel())
	return nil
}

// generator - returns a generator seeded by seed, or by the configured seed
func (a *App) generator(seed uint64) *randgen.Generator {
	if seed == 0 && a.cfg != nil {
		seed = a.cfg.Random.Seed
	}
	if seed == 0 {
		return randgen.New()
	}
	return randgen.NewSeeded(seed)
}

func (a *App) reportStore() (interfaces.ReportStorage, error) {
	return storage.NewReportStore(a.cfg.Report.Dir)
}
