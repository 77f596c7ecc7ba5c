package fixtures

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/oamg/c2r-test-harness/framework/harness"
	"github.com/oamg/c2r-test-harness/framework/suite"
)

// CleanCacheCommand drops the metadata and packages of every repository, enabled or not.
const CleanCacheCommand = "yum clean all --enablerepo=* --quiet"

// ClearPackageCache removes everything the package manager has cached, so that the tool has to
// download repository metadata and packages again. A failure is a setup error.
func ClearPackageCache(t *suite.T, h *harness.TestHarness) {
	t.Helper()
	mustRun(t, h.Shell(t.DebugLogger()), CleanCacheCommand)

	s := h.Session()
	dir := filepath.Join(s.Paths.PackageCacheRoot, s.Release.PackageManager())
	if err := os.RemoveAll(dir); err != nil {
		t.SetupFailed("could not remove %s: %s", dir, err)
	}
	t.Debug("Removed %s", dir)
}

// RemoveServerRepoMetadata deletes the cached repository metadata of the RHEL server repository
// on releases where the package manager keeps it, so that loading that repository fails. On other
// releases it does nothing and returns false.
func RemoveServerRepoMetadata(t *suite.T, h *harness.TestHarness) bool {
	t.Helper()
	s := h.Session()
	if !s.Release.UsesServerRepoCache() {
		return false
	}
	err := os.Remove(s.Paths.ServerRepoMetadata)
	switch {
	case err == nil:
		t.Debug("Removed %s", s.Paths.ServerRepoMetadata)
	case errors.Is(err, os.ErrNotExist):
		t.Errorf("expected %s to exist at this point of the conversion", s.Paths.ServerRepoMetadata)
		t.FailNow()
	default:
		t.Errorf("could not remove %s: %s", s.Paths.ServerRepoMetadata, err)
		t.FailNow()
	}
	return true
}
