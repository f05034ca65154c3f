package entities

import (
	"fmt"
	"time"
)

// WaitState is the element condition a bounded wait blocks on
type WaitState string

const (
	WaitStateVisible  WaitState = "visible"
	WaitStateHidden   WaitState = "hidden"
	WaitStateAttached WaitState = "attached"
	WaitStateDetached WaitState = "detached"
)

// ParseWaitState converts a state name into a WaitState
func ParseWaitState(s string) (WaitState, error) {
	switch state := WaitState(s); state {
	case WaitStateVisible, WaitStateHidden, WaitStateAttached, WaitStateDetached:
		return state, nil
	}
	return "", fmt.Errorf("unknown wait state %q", s)
}

// PollOutcome is the result of one bounded wait attempt
type PollOutcome struct {
	Achieved bool          `json:"achieved"`
	Elapsed  time.Duration `json:"elapsed"`
}

// ElapsedMillis returns the elapsed time in whole milliseconds
func (p PollOutcome) ElapsedMillis() int64 {
	return p.Elapsed.Milliseconds()
}
