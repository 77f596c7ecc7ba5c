package fixtures

import (
	"testing"

	"github.com/oamg/c2r-test-harness/framework/shell"
	"github.com/oamg/c2r-test-harness/framework/suite"

	"github.com/stretchr/testify/assert"
)

func TestInstallPackagesRemovesThemAfterwards(t *testing.T) {
	s := testSession(t, "oracle-8.9")
	exec := &shell.RecordingExecutor{}
	h := testHarness(t, s, exec)

	var duringTest []string
	results := runScope(s, func(t *suite.T) {
		InstallPackages(t, h, "python3.11", "java-1.8.0-openjdk-headless")
		duringTest = commandsAfterProbe(exec)
	})
	assert.True(t, results.OK())
	assert.Equal(t, []string{
		"dnf install -y python3.11",
		"dnf install -y java-1.8.0-openjdk-headless",
	}, duringTest)
	assert.Equal(t, []string{
		"dnf install -y python3.11",
		"dnf install -y java-1.8.0-openjdk-headless",
		"dnf remove -y python3.11",
		"dnf remove -y java-1.8.0-openjdk-headless",
	}, commandsAfterProbe(exec))
}

func TestInstallPackagesRemovesEvenIfTestFails(t *testing.T) {
	s := testSession(t, "centos-7")
	exec := &shell.RecordingExecutor{Responses: map[string]shell.Result{
		"yum install": {ExitCode: 1, Output: "No package python3.11 available."},
	}}
	h := testHarness(t, s, exec)

	results := runScope(s, func(t *suite.T) {
		InstallPackages(t, h, "python3.11")
		t.Errorf("scenario failed")
		t.FailNow()
	})
	assert.Len(t, results.Failures, 1)
	assert.Equal(t, []string{"yum install -y python3.11", "yum remove -y python3.11"}, commandsAfterProbe(exec))
}
