package fixtures

import (
	"context"
	"time"

	"github.com/oamg/c2r-test-harness/framework/shell"
	"github.com/oamg/c2r-test-harness/framework/suite"
)

// Host commands that take longer than this are treated as hung.
const commandTimeout = 30 * time.Minute

func run(sh shell.Executor, command string) (*shell.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return sh.Run(ctx, command)
}

// mustRun runs a setup command and ends the test with a setup error unless it succeeds.
func mustRun(t *suite.T, sh shell.Executor, command string) *shell.Result {
	t.Helper()
	result, err := run(sh, command)
	if err != nil {
		t.SetupFailed("%s", err)
	}
	if !result.Succeeded() {
		t.SetupFailed("%s: %s", result, result.Output)
	}
	return result
}

// tryRun runs a command whose failure does not affect the test, such as a teardown step.
func tryRun(t *suite.T, sh shell.Executor, command string) {
	result, err := run(sh, command)
	switch {
	case err != nil:
		t.Debug("%s", err)
	case !result.Succeeded():
		t.Debug("%s", result)
	}
}
