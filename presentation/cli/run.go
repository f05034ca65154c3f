package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ui_automation/application/scenario"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/apicheck"
	"ui_automation/infrastructure/browser"
	"ui_automation/presentation/terminal"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
)

func newRunCommand(app *App) *cobra.Command {
	var timeout time.Duration
	var seed uint64

	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run scenarios by name; without arguments an interactive prompt opens",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.newResources()
			defer func() {
				if err := res.Close(); err != nil {
					app.logger.Warnf("Failed to release resources: %v", err)
				}
			}()
			run := app.runFunc(res, timeout, seed)

			if len(args) == 0 {
				ui := terminal.NewTerminalInterface(app.Registry, cmd.InOrStdin(), cmd.OutOrStdout())
				return ui.Run(cmd.Context(), run)
			}

			scenarios, err := app.Registry.Select(args...)
			if err != nil {
				return err
			}
			return report(cmd, run, scenarios)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", scenario.DefaultTimeout, "per-scenario timeout")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random data seed (0: configured seed or unseeded)")
	return cmd
}

func newAPICommand(app *App) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Run the API checks only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var scenarios []scenario.Scenario
			for _, s := range app.Registry.All() {
				if s.Kind == scenario.KindAPI {
					scenarios = append(scenarios, s)
				}
			}
			if len(scenarios) == 0 {
				return Error.New("no API scenarios registered")
			}

			res := app.newResources()
			defer func() {
				if err := res.Close(); err != nil {
					app.logger.Warnf("Failed to release resources: %v", err)
				}
			}()
			return report(cmd, app.runFunc(res, timeout, 0), scenarios)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", scenario.DefaultTimeout, "per-scenario timeout")
	return cmd
}

// report - runs scenarios, prints the report and fails on failed scenarios
func report(cmd *cobra.Command, run terminal.RunFunc, scenarios []scenario.Scenario) error {
	rep, err := run(cmd.Context(), scenarios)
	terminal.PrintReport(cmd.OutOrStdout(), rep)
	if err != nil {
		return err
	}
	if _, failed := rep.Counts(); failed > 0 {
		return Error.New("%d of %d scenarios failed", failed, len(rep.Results))
	}
	return nil
}

// runFunc - builds a runner per selection, opening only what the selection needs
func (a *App) runFunc(res *resources, timeout time.Duration, seed uint64) terminal.RunFunc {
	random := a.generator(seed)
	return func(ctx context.Context, scenarios []scenario.Scenario) (entities.RunReport, error) {
		store, err := a.reportStore()
		if err != nil {
			return entities.RunReport{}, err
		}

		cfg := scenario.RunnerConfig{
			Storage: store,
			Random:  random,
			Engine:  a.cfg.Browser.Engine,
			BaseURL: a.cfg.TestEnv,
			Timeout: timeout,
			Logger:  a.logger,
		}
		for _, s := range scenarios {
			switch s.Kind {
			case scenario.KindUI:
				cfg.Sessions = res.session
			case scenario.KindAPI:
				if cfg.API != nil {
					continue
				}
				client, err := res.apiClient()
				if err != nil {
					a.logger.Errorf("API client unavailable: %v", err)
					continue
				}
				cfg.API = client
			}
		}
		return scenario.NewRunner(cfg).Run(ctx, scenarios)
	}
}

// resources opens the browser engine and API client on first use
type resources struct {
	app *App

	mu     sync.Mutex
	engine browser.Engine
	api    *apicheck.Client
}

func (a *App) newResources() *resources {
	return &resources{app: a}
}

// session - opens a browser session, launching the engine first if needed
func (r *resources) session(ctx context.Context) (interfaces.Driver, error) {
	r.mu.Lock()
	if r.engine == nil {
		engine, err := r.app.OpenEngine(r.app.cfg.BrowserOptions(), r.app.logger)
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		r.engine = engine
	}
	engine := r.engine
	r.mu.Unlock()

	return engine.NewSession(ctx)
}

func (r *resources) apiClient() (*apicheck.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.api == nil {
		requester, err := r.app.NewRequester(r.app.cfg.APIBaseURL)
		if err != nil {
			return nil, err
		}
		r.api = apicheck.New(requester, r.app.logger)
	}
	return r.api, nil
}

func (r *resources) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var group errs.Group
	if r.engine != nil {
		group.Add(r.engine.Close())
		r.engine = nil
	}
	if r.api != nil {
		group.Add(r.api.Close())
		r.api = nil
	}
	return group.Err()
}

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, s := range app.Registry.All() {
				fmt.Fprintf(out, "%-24s %-4s %s\n", s.Name, s.Kind, s.Description)
			}
			return nil
		},
	}
}
