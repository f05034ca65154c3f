package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"

	"github.com/zeebo/errs"
)

// Error is the class of report storage errors
var Error = errs.Class("storage")

const (
	historyFile = "history.json"
	// MaxRuns bounds the history; older runs are dropped first
	MaxRuns = 50
)

type reportStore struct {
	mu          sync.Mutex
	historyPath string
}

// NewReportStore - creates report storage under dir
func NewReportStore(dir string) (interfaces.ReportStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, Error.New("failed to create report directory: %w", err)
	}
	return &reportStore{
		historyPath: filepath.Join(dir, historyFile),
	}, nil
}

// SaveRun - appends a run report to the history file
func (s *reportStore) SaveRun(report entities.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.load()
	if err != nil {
		return err
	}
	runs = append(runs, report)
	if len(runs) > MaxRuns {
		runs = runs[len(runs)-MaxRuns:]
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return Error.Wrap(err)
	}

	tmp := s.historyPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return Error.Wrap(err)
	}
	return Error.Wrap(os.Rename(tmp, s.historyPath))
}

// LoadRuns - loads the run history, oldest first
func (s *reportStore) LoadRuns() ([]entities.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *reportStore) load() ([]entities.RunReport, error) {
	data, err := os.ReadFile(s.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []entities.RunReport{}, nil
		}
		return nil, Error.Wrap(err)
	}

	var runs []entities.RunReport
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, Error.New("corrupt history %s: %w", s.historyPath, err)
	}
	return runs, nil
}
