package c2rtests

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oamg/c2r-test-harness/config"
	"github.com/oamg/c2r-test-harness/framework"
	"github.com/oamg/c2r-test-harness/framework/expect"
	"github.com/oamg/c2r-test-harness/framework/harness"
	"github.com/oamg/c2r-test-harness/framework/shell"
	"github.com/oamg/c2r-test-harness/framework/suite"

	"github.com/stretchr/testify/require"
)

const (
	downloadErrorTest   = "single yum transaction validation/package download error"
	validationErrorTest = "single yum transaction validation/transaction validation error"
	periodPackagesTest  = "single yum transaction validation/packages with period in name"
	excludeListTest     = "single yum transaction validation/override exclude list in package manager config"
)

func requirePty(t *testing.T) {
	t.Helper()
	p, err := expect.Spawn(context.Background(), "/bin/sh", []string{"-c", "true"})
	var launchErr *expect.LaunchError
	if errors.As(err, &launchErr) {
		t.Skipf("cannot run programs on a pseudo-terminal here: %s", err)
	}
	require.NoError(t, err)
	_ = p.Close()
}

type testHost struct {
	session config.Session
	exec    *shell.RecordingExecutor
	harness *harness.TestHarness
}

// newTestHost sets up a session whose paths all live in a temporary directory, with a fake tool
// made from the given shell script body. The script can refer to $CERT_DIR, $REPOMD and
// $PKG_CONF. Like the real tool, the fake one downloads the server repository metadata when it
// starts.
func newTestHost(t *testing.T, release, script string) *testHost {
	t.Helper()
	requirePty(t)
	root := t.TempDir()
	s := config.Default()
	s.Release, _ = config.ParseRelease(release)
	s.Credentials = config.Credentials{ServerURL: "https://rhsm.example.com", Username: "tester", Password: "pw", Pool: "pool1"}
	s.Paths = config.Paths{
		EntitlementDir:       filepath.Join(root, "pki", "entitlement"),
		PackageCacheRoot:     filepath.Join(root, "cache"),
		PackageManagerConfig: filepath.Join(root, "yum.conf"),
		ServerRepoMetadata:   filepath.Join(root, "cache", "yum", "x86_64", "7Server", "rhel-7-server-rpms", "repomd.xml"),
		StateDir:             filepath.Join(root, "state"),
	}
	s.Timeouts = config.Timeouts{Default: 3 * time.Second, Long: 3 * time.Second, Prompt: 3 * time.Second, Exit: 3 * time.Second}
	s.OlderKernel = "kernel-3.10.0-1160.el7"

	require.NoError(t, os.MkdirAll(s.Paths.EntitlementDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Paths.EntitlementDir, "123.pem"), []byte("cert"), 0600))
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Paths.ServerRepoMetadata), 0755))
	require.NoError(t, os.WriteFile(s.Paths.ServerRepoMetadata, []byte("<repomd/>"), 0600))

	tool := filepath.Join(root, "convert2rhel")
	header := fmt.Sprintf("#!/bin/sh\nCERT_DIR=%q\nREPOMD=%q\nPKG_CONF=%q\n",
		s.Paths.EntitlementDir, s.Paths.ServerRepoMetadata, s.Paths.PackageManagerConfig) +
		"mkdir -p \"$(dirname \"$REPOMD\")\" && echo '<repomd/>' > \"$REPOMD\"\n"
	require.NoError(t, os.WriteFile(tool, []byte(header+script), 0700)) //nolint:gosec
	s.ToolPath = tool

	return &testHost{session: s}
}

func (h *testHost) start(t *testing.T) {
	t.Helper()
	h.exec = &shell.RecordingExecutor{}
	th, err := harness.NewTestHarness(h.session, h.exec, "", time.Second, nil, io.Discard)
	require.NoError(t, err)
	h.harness = th
}

func (h *testHost) run(t *testing.T, testName string) (suite.Results, *recordingTestLogger) {
	t.Helper()
	if h.harness == nil {
		h.start(t)
	}
	var filters suite.RegexFilters
	filters.MustMatch.AddExactID(testName)
	logger := &recordingTestLogger{}
	return RunTestSuite(h.harness, filters, logger), logger
}

type recordingTestLogger struct {
	started []string
	skipped []string
	errors  []string
}

func (r *recordingTestLogger) TestStarted(id suite.TestID) {
	r.started = append(r.started, id.String())
}

func (r *recordingTestLogger) TestError(id suite.TestID, err error) {
	r.errors = append(r.errors, id.String()+": "+err.Error())
}

func (r *recordingTestLogger) TestFinished(suite.TestID, suite.TestResult, framework.CapturedOutput) {
}

func (r *recordingTestLogger) TestSkipped(id suite.TestID, reason string) {
	r.skipped = append(r.skipped, id.String()+": "+reason)
}

func (r *recordingTestLogger) EndLog(suite.Results) error { return nil }

func requireOK(t *testing.T, results suite.Results, logger *recordingTestLogger) {
	t.Helper()
	require.True(t, results.OK(), "errors: %v", logger.errors)
}
