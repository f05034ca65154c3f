package entities

import "time"

// ScenarioStatus represents the outcome of a scenario
type ScenarioStatus string

const (
	ScenarioStatusPending ScenarioStatus = "pending"
	ScenarioStatusRunning ScenarioStatus = "running"
	ScenarioStatusPassed  ScenarioStatus = "passed"
	ScenarioStatusFailed  ScenarioStatus = "failed"
	ScenarioStatusSkipped ScenarioStatus = "skipped"
)

// ScenarioResult records one scenario execution
type ScenarioResult struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Status     ScenarioStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMs int64          `json:"duration_ms"`
}

// RunReport groups the results of one runner invocation
type RunReport struct {
	ID        string           `json:"id"`
	Engine    string           `json:"engine"`
	BaseURL   string           `json:"base_url"`
	StartedAt time.Time        `json:"started_at"`
	Results   []ScenarioResult `json:"results"`
}

// Passed reports whether every scenario passed or was skipped
func (r RunReport) Passed() bool {
	for _, res := range r.Results {
		if res.Status == ScenarioStatusFailed {
			return false
		}
	}
	return true
}

// Counts returns the number of passed and failed scenarios
func (r RunReport) Counts() (passed, failed int) {
	for _, res := range r.Results {
		switch res.Status {
		case ScenarioStatusPassed:
			passed++
		case ScenarioStatusFailed:
			failed++
		}
	}
	return passed, failed
}
