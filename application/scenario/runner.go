package scenario

import (
	"context"
	"time"

	"ui_automation/application/actions"
	"ui_automation/application/pages"
	"ui_automation/application/randgen"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/apicheck"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/errs"
)

// Error is the class of runner errors
var Error = errs.Class("scenario")

// DefaultTimeout bounds a single scenario
const DefaultTimeout = 2 * time.Minute

// RunnerConfig wires a Runner. Sessions is required for UI scenarios,
// API for API scenarios; scenarios whose dependency is missing are skipped.
type RunnerConfig struct {
	Sessions interfaces.SessionFactory
	API      *apicheck.Client
	Storage  interfaces.ReportStorage
	Random   *randgen.Generator
	Engine   string
	BaseURL  string
	Timeout  time.Duration
	Logger   *logrus.Logger
}

type Runner struct {
	cfg   RunnerConfig
	newID func() string
	now   func() time.Time
}

// NewRunner - creates a runner, filling in defaults
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Random == nil {
		cfg.Random = randgen.New()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Runner{
		cfg:   cfg,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Run - executes scenarios in order and stores the report. Scenario failures
// are recorded in the report; the returned error covers storage only.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (entities.RunReport, error) {
	report := entities.RunReport{
		ID:        r.newID(),
		Engine:    r.cfg.Engine,
		BaseURL:   r.cfg.BaseURL,
		StartedAt: r.now(),
		Results:   make([]entities.ScenarioResult, 0, len(scenarios)),
	}
	log := r.cfg.Logger.WithField("run", report.ID)
	log.Infof("Running %d scenarios", len(scenarios))

	for _, s := range scenarios {
		result := entities.ScenarioResult{
			ID:        r.newID(),
			Name:      s.Name,
			Status:    entities.ScenarioStatusPending,
			StartedAt: r.now(),
		}

		if err := ctx.Err(); err != nil {
			result.Status = entities.ScenarioStatusSkipped
			result.Error = "run canceled"
			report.Results = append(report.Results, result)
			continue
		}

		result = r.runOne(ctx, s, result, log.WithField("scenario", s.Name))
		report.Results = append(report.Results, result)
	}

	passed, failed := report.Counts()
	log.WithFields(logrus.Fields{"passed": passed, "failed": failed}).Info("Run finished")

	if r.cfg.Storage != nil {
		if err := r.cfg.Storage.SaveRun(report); err != nil {
			return report, Error.New("failed to store run report: %w", err)
		}
	}
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, s Scenario, result entities.ScenarioResult, log *logrus.Entry) entities.ScenarioResult {
	result.Status = entities.ScenarioStatusRunning
	log.Info("Scenario started")

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	skipped, err := r.execute(ctx, s, log)
	result.DurationMs = r.now().Sub(result.StartedAt).Milliseconds()

	switch {
	case skipped != "":
		result.Status = entities.ScenarioStatusSkipped
		result.Error = skipped
		log.Warnf("Scenario skipped: %s", skipped)
	case err != nil:
		result.Status = entities.ScenarioStatusFailed
		result.Error = err.Error()
		log.Errorf("Scenario failed: %v", err)
	default:
		result.Status = entities.ScenarioStatusPassed
		log.WithField("duration_ms", result.DurationMs).Info("Scenario passed")
	}
	return result
}

// execute - runs s in a fresh environment; skipped names the missing dependency
func (r *Runner) execute(ctx context.Context, s Scenario, log *logrus.Entry) (skipped string, err error) {
	env := &Env{
		BaseURL: r.cfg.BaseURL,
		Random:  r.cfg.Random,
		Logger:  log,
	}

	switch s.Kind {
	case KindAPI:
		if r.cfg.API == nil {
			return "no API client configured", nil
		}
		env.API = r.cfg.API
		return "", s.Run(ctx, env)

	default:
		if r.cfg.Sessions == nil {
			return "no browser session factory configured", nil
		}
		driver, err := r.cfg.Sessions(ctx)
		if err != nil {
			return "", Error.New("failed to open browser session: %w", err)
		}
		defer func() {
			if closeErr := driver.Close(); closeErr != nil {
				log.Warnf("Failed to close browser session: %v", closeErr)
			}
		}()

		env.Actions = actions.New(driver, r.cfg.Logger)
		env.Login = pages.NewLoginPage(env.Actions, r.cfg.BaseURL)
		env.Inventory = pages.NewInventoryPage(env.Actions)
		return "", s.Run(ctx, env)
	}
}
