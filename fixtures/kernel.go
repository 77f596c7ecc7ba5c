package fixtures

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/oamg/c2r-test-harness/config"
	"github.com/oamg/c2r-test-harness/framework/harness"
	"github.com/oamg/c2r-test-harness/framework/shell"
	"github.com/oamg/c2r-test-harness/framework/suite"
)

const defaultKernelStateFile = "default-kernel"

// BootOlderKernel makes the host run an older kernel than the newest one installed, which the
// conversion tool would otherwise complain about. This takes a reboot, so it only works as a tmt
// test and is skipped elsewhere.
//
// Before the reboot it records the current default kernel, installs the older kernel, makes it
// the default and asks tmt to reboot; the test is then skipped for this boot. When tmt runs the
// test again after the reboot, the fixture arranges for the recorded default kernel to be
// restored when the test scope ends.
func BootOlderKernel(t *suite.T, h *harness.TestHarness) {
	t.Helper()
	t.RequireCapability(config.CapabilityReboot)
	s := h.Session()
	sh := h.Shell(t.DebugLogger())
	statePath := filepath.Join(s.Paths.StateDir, defaultKernelStateFile)

	if s.RebootCount == 0 {
		if s.OlderKernel == "" {
			t.SetupFailed("no older kernel is configured for %s", s.Release)
		}
		current := strings.TrimSpace(mustRun(t, sh, "grubby --default-kernel").Output)
		if err := os.MkdirAll(s.Paths.StateDir, 0755); err != nil { //nolint:gosec
			t.SetupFailed("cannot create %s: %s", s.Paths.StateDir, err)
		}
		if err := os.WriteFile(statePath, []byte(current+"\n"), 0644); err != nil { //nolint:gosec
			t.SetupFailed("cannot record the default kernel: %s", err)
		}

		mustRun(t, sh, s.Release.PackageManager()+" install -y "+shell.Quote(s.OlderKernel))
		kernelVersion := strings.TrimSpace(mustRun(t, sh,
			"rpm -q --qf '%{VERSION}-%{RELEASE}.%{ARCH}' "+shell.Quote(s.OlderKernel)).Output)
		mustRun(t, sh, "grubby --set-default "+shell.Quote("/boot/vmlinuz-"+kernelVersion))
		mustRun(t, sh, s.RebootCommand)
		t.SkipWithReason("rebooting into " + s.OlderKernel)
	}

	data, err := os.ReadFile(statePath)
	if err != nil {
		t.SetupFailed("the default kernel was not recorded before rebooting: %s", err)
	}
	previous := strings.TrimSpace(string(data))
	t.Defer(func() {
		tryRun(t, sh, "grubby --set-default "+shell.Quote(previous))
		if err := os.Remove(statePath); err != nil {
			t.Debug("could not remove %s: %s", statePath, err)
		}
	})
}
