package suite

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/oamg/c2r-test-harness/framework"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func withoutColor(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })
}

func TestConsoleTestLogger(t *testing.T) {
	withoutColor(t)
	var buf bytes.Buffer
	c := ConsoleTestLogger{DebugOutputOnFailure: true, Output: &buf}
	id := TestID{"transaction validation", "package download error"}
	output := framework.CapturedOutput{{Message: "spawned convert2rhel"}}

	c.TestStarted(id)
	c.TestError(id, errors.New("timed out\nwaiting for output"))
	c.TestFinished(id, TestResult{TestID: id, Errors: []error{errors.New("x")}}, output)
	c.TestSkipped(id, "")
	c.TestSkipped(id, "no reboot")

	s := buf.String()
	assert.Contains(t, s, "[transaction validation/package download error]\n")
	assert.Contains(t, s, "  timed out\n  waiting for output\n")
	assert.Contains(t, s, "  FAILED: transaction validation/package download error\n")
	assert.Contains(t, s, "DEBUG [")
	assert.Contains(t, s, "spawned convert2rhel")
	assert.Contains(t, s, "  SKIPPED: transaction validation/package download error\n")
	assert.Contains(t, s, "(no reboot)")
}

func TestConsoleTestLoggerHidesDebugOutputOnSuccess(t *testing.T) {
	withoutColor(t)
	var buf bytes.Buffer
	c := ConsoleTestLogger{DebugOutputOnFailure: true, Output: &buf}
	c.TestFinished(TestID{"a"}, TestResult{}, framework.CapturedOutput{{Message: "hidden"}})
	assert.NotContains(t, buf.String(), "hidden")

	c.TestFinished(TestID{"a"}, TestResult{SetupError: true}, nil)
	assert.Contains(t, buf.String(), "SETUP ERROR: a")
}

func TestMultiTestLoggerReturnsFirstError(t *testing.T) {
	first := errors.New("first")
	m := &MultiTestLogger{Loggers: []TestLogger{
		failingEndLogger{err: first},
		failingEndLogger{err: errors.New("second")},
	}}
	assert.Equal(t, first, m.EndLog(Results{}))
}

type failingEndLogger struct {
	nullTestLogger
	err error
}

func (f failingEndLogger) EndLog(Results) error { return f.err }

func TestWriteResultsTable(t *testing.T) {
	var buf bytes.Buffer
	results := Run(TestConfiguration{}, func(st *T) {
		st.Run("suite", func(st0 *T) {
			st0.Run("ok", func(*T) {})
			st0.Run("bad", func(st1 *T) { st1.Errorf("nope") })
		})
	})
	WriteResultsTable(&buf, results)

	s := buf.String()
	assert.Contains(t, s, "suite/ok")
	assert.Contains(t, s, "PASSED")
	assert.Contains(t, s, "suite/bad")
	assert.Contains(t, s, "FAILED")
	assert.Contains(t, strings.ToUpper(s), "2 TESTS")
	assert.NotContains(t, s, "│ suite ")
}

func TestWriteResultsTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	WriteResultsTable(&buf, Results{})
	assert.Equal(t, "", buf.String())
}
