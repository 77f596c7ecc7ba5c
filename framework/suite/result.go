package suite

import (
	"strings"
	"time"
)

// Results is the outcome of a whole test run.
type Results struct {
	Tests       []TestResult
	Failures    []TestResult
	SetupErrors []TestResult
}

// TestResult is the outcome of one test scope. Skipped tests do not produce a TestResult.
type TestResult struct {
	TestID     TestID
	Errors     []error
	SetupError bool
	Duration   time.Duration
}

// OK returns true if no test failed and no test had a setup error.
func (r Results) OK() bool {
	return len(r.Failures) == 0 && len(r.SetupErrors) == 0
}

// Failed returns true if the test failed or could not be set up.
func (r TestResult) Failed() bool {
	return r.SetupError || len(r.Errors) != 0
}

// TestID is the full name of a test: the names of all enclosing scopes followed by its own.
type TestID []string

func (t TestID) String() string {
	return strings.Join(t, "/")
}

// Plus returns a new TestID for a subtest, without modifying the original.
func (t TestID) Plus(name string) TestID {
	return append(append(TestID(nil), t...), name)
}
