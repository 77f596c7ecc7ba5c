package fixtures

import (
	"github.com/oamg/c2r-test-harness/framework/harness"
	"github.com/oamg/c2r-test-harness/framework/shell"
	"github.com/oamg/c2r-test-harness/framework/suite"
)

// ReportResultOnFailure tells tmt that the named test failed, if the test scope fails. A test that
// reboots the host runs in several tmt phases, and only this call reports the outcome of the last
// one. Outside of tmt it does nothing.
func ReportResultOnFailure(t *suite.T, h *harness.TestHarness, name string) {
	s := h.Session()
	if !s.UnderTMT || s.ReportCommand == "" {
		return
	}
	t.Defer(func() {
		if !t.Failed() {
			return
		}
		tryRun(t, h.Shell(t.DebugLogger()), s.ReportCommand+" "+shell.Quote(name)+" FAIL")
	})
}
