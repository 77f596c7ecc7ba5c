package c2rtests

import (
	"context"
	"time"

	"github.com/oamg/c2r-test-harness/config"
	"github.com/oamg/c2r-test-harness/framework/expect"
	"github.com/oamg/c2r-test-harness/framework/harness"
	"github.com/oamg/c2r-test-harness/framework/suite"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/require"
)

// Exit statuses of the tool.
const (
	exitSuccess         = 0
	exitValidationError = 2 // the pre-conversion checks failed and the system was rolled back
)

// registrationArgs are the arguments that make the tool register the system with the
// subscription service.
func registrationArgs(c config.Credentials) []string {
	return []string{
		"--serverurl", c.ServerURL,
		"--username", c.Username,
		"--password", c.Password,
		"--pool", c.Pool,
		"--debug",
	}
}

// conversionArgs builds a command line of the form "<before> <registration args> <after>".
func conversionArgs(s config.Session, before []string, after ...string) []string {
	args := append([]string(nil), before...)
	args = append(args, registrationArgs(s.Credentials)...)
	return append(args, after...)
}

// conversion is one run of the tool within a test scope.
type conversion struct {
	t       *suite.T
	process *harness.ToolProcess
	session config.Session
}

// startConversion spawns the tool. It is terminated when the test scope ends, however it ends.
func startConversion(t *suite.T, args []string) *conversion {
	t.Helper()
	c := requireContext(t)
	p, err := c.harness.SpawnTool(context.Background(), t.ID().String(), args, t.DebugLogger())
	require.NoError(t, err, "could not start the conversion")
	t.Defer(func() {
		if err := p.Close(); err != nil {
			t.Debug("error closing %s: %s", p.Command(), err)
		}
	})
	return &conversion{t: t, process: p, session: c.session()}
}

// expect waits for text to appear in the output after whatever was matched before, and returns
// which of the alternatives it was.
func (c *conversion) expect(timeout time.Duration, texts ...string) int {
	c.t.Helper()
	patterns := make([]expect.Pattern, 0, len(texts))
	for _, s := range texts {
		patterns = append(patterns, expect.Exact(s))
	}
	index, err := c.process.Expect(timeout, patterns...)
	require.NoError(c.t, err)
	return index
}

// expectText is expect with the session's default timeout.
func (c *conversion) expectText(text string) {
	c.t.Helper()
	c.expect(c.session.Timeouts.Default, text)
}

func (c *conversion) sendLine(text string) {
	c.t.Helper()
	require.NoError(c.t, c.process.SendLine(text))
}

// requireExitStatus waits for the tool to exit and checks its exit status. Any status other than
// success or a validation error means the tool broke in a way that no scenario expects.
func (c *conversion) requireExitStatus(expected int) {
	c.t.Helper()
	status, err := c.process.Wait(c.session.Timeouts.Exit)
	require.NoError(c.t, err, "the conversion did not exit")
	m.In(c.t).Require(status, m.AnyOf(m.Equal(exitSuccess), m.Equal(exitValidationError)))
	m.In(c.t).Assert(status, m.Equal(expected))
}
