package actions

import (
	"fmt"
	"strings"

	"github.com/stretchr/testify/assert"
)

// AssertionError is an inline postcondition that did not hold. Message is
// the assertion library's failure text, including its diff when there is one.
type AssertionError struct {
	Op      string
	Message string
}

func (e *AssertionError) Error() string {
	return e.Op + ": " + e.Message
}

// failureRecorder collects assertion failures instead of failing a test
type failureRecorder struct {
	failures []string
}

func (r *failureRecorder) Errorf(format string, args ...interface{}) {
	r.failures = append(r.failures, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// check runs fn against a recorder and converts a failed assertion into an *AssertionError
func check(op string, fn func(t assert.TestingT) bool) error {
	rec := &failureRecorder{}
	if fn(rec) {
		return nil
	}
	return &AssertionError{Op: op, Message: strings.Join(rec.failures, "\n")}
}
