package fixtures

import (
	"github.com/oamg/c2r-test-harness/framework/harness"
	"github.com/oamg/c2r-test-harness/framework/shell"
	"github.com/oamg/c2r-test-harness/framework/suite"
)

// InstallPackages installs packages with the session's package manager and removes them again
// when the test scope ends, whether or not the installation worked. Failures of either step are
// logged; a scenario that depends on a package notices for itself when it is missing.
func InstallPackages(t *suite.T, h *harness.TestHarness, packages ...string) {
	t.Helper()
	sh := h.Shell(t.DebugLogger())
	pm := h.Session().Release.PackageManager()

	t.Defer(func() {
		for _, p := range packages {
			tryRun(t, sh, pm+" remove -y "+shell.Quote(p))
		}
	})
	for _, p := range packages {
		tryRun(t, sh, pm+" install -y "+shell.Quote(p))
	}
}
