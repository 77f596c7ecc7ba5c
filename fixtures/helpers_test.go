package fixtures

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/oamg/c2r-test-harness/config"
	"github.com/oamg/c2r-test-harness/framework/harness"
	"github.com/oamg/c2r-test-harness/framework/shell"
	"github.com/oamg/c2r-test-harness/framework/suite"

	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T, release string) config.Session {
	t.Helper()
	root := t.TempDir()
	s := config.Default()
	s.Release, _ = config.ParseRelease(release)
	s.Credentials = config.Credentials{ServerURL: "https://rhsm.example.com", Username: "u", Password: "p", Pool: "x"}
	s.Paths = config.Paths{
		EntitlementDir:       filepath.Join(root, "pki", "entitlement"),
		PackageCacheRoot:     filepath.Join(root, "cache"),
		PackageManagerConfig: filepath.Join(root, "yum.conf"),
		ServerRepoMetadata:   filepath.Join(root, "cache", "yum", "repomd.xml"),
		StateDir:             filepath.Join(root, "state"),
	}
	s.OlderKernel = "kernel-3.10.0-1160.el7"
	return s
}

func testHarness(t *testing.T, s config.Session, exec *shell.RecordingExecutor) *harness.TestHarness {
	t.Helper()
	h, err := harness.NewTestHarness(s, exec, "", time.Second, nil, io.Discard)
	require.NoError(t, err)
	return h
}

// runScope runs action as a single test scope and returns the results.
func runScope(s config.Session, action func(*suite.T)) suite.Results {
	return suite.Run(suite.TestConfiguration{Capabilities: s.Capabilities()}, func(t *suite.T) {
		t.Run("fixture", action)
	})
}

// commandsAfterProbe drops the tool version check that the harness runs on startup.
func commandsAfterProbe(exec *shell.RecordingExecutor) []string {
	return exec.Commands()[1:]
}
