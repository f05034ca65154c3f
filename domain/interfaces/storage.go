package interfaces

import "ui_automation/domain/entities"

// ReportStorage persists scenario run reports
type ReportStorage interface {
	// SaveRun appends a run report to the history
	SaveRun(report entities.RunReport) error

	// LoadRuns returns the stored run reports, oldest first
	LoadRuns() ([]entities.RunReport, error)
}
