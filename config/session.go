// Package config builds the immutable description of a test session: who to register as, which
// release the host runs, where the tool and the files the tests touch live, and how long to wait.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/oamg/c2r-test-harness/framework"
)

// CleanupMode decides what happens when entitlement certificates cannot be removed.
type CleanupMode string

const (
	// Lenient logs removal problems, including a missing directory, and carries on.
	Lenient CleanupMode = "lenient"
	// Strict reports them as errors.
	Strict CleanupMode = "strict"
)

func (m CleanupMode) valid() bool { return m == Lenient || m == Strict }

// Capability names reported by Session.Capabilities, in addition to the package manager name,
// the distribution name and "el<major>".
const (
	CapabilityReboot          = "reboot"
	CapabilityServerRepoCache = "server-repo-cache"
)

// Credentials are used to register the system with the subscription service during conversion.
type Credentials struct {
	ServerURL string
	Username  string
	Password  string
	Pool      string
}

// Paths on the host that fixtures and scenarios read or modify.
type Paths struct {
	EntitlementDir       string
	PackageCacheRoot     string
	PackageManagerConfig string
	ServerRepoMetadata   string
	StateDir             string
}

// Timeouts for waiting on the tool's output.
type Timeouts struct {
	Default time.Duration // an ordinary milestone
	Long    time.Duration // anything that follows package downloads
	Prompt  time.Duration // interactive prompts near the start of a run
	Exit    time.Duration // the tool exiting after its last milestone
}

// Session is built once per run and passed by value. Tests never look at the environment
// themselves.
type Session struct {
	Credentials       Credentials
	Release           Release
	ToolPath          string
	ShellPath         string
	RebootCount       int
	UnderTMT          bool // running as a tmt test, which is what makes reboots possible
	Paths             Paths
	Timeouts          Timeouts
	CredentialCleanup CleanupMode
	EntitlementWait   time.Duration // 0 means do not wait for certificates to appear
	PeriodPackages    []string
	ExcludedPackages  []string
	OlderKernel       string
	ReportCommand     string
	RebootCommand     string
}

// Default returns a Session with every setting that has a sensible default filled in. Credentials
// and the release have no default.
func Default() Session {
	return Session{
		ToolPath:  "convert2rhel",
		ShellPath: "bash",
		Paths: Paths{
			EntitlementDir:       "/etc/pki/entitlement",
			PackageCacheRoot:     "/var/cache",
			PackageManagerConfig: "/etc/yum.conf",
			ServerRepoMetadata:   "/var/cache/yum/x86_64/7Server/rhel-7-server-rpms/repomd.xml",
			StateDir:             "/var/lib/c2r-test-harness",
		},
		Timeouts: Timeouts{
			Default: 30 * time.Second,
			Long:    600 * time.Second,
			Prompt:  300 * time.Second,
			Exit:    120 * time.Second,
		},
		CredentialCleanup: Lenient,
		PeriodPackages:    []string{"python3.11", "java-1.8.0-openjdk-headless"},
		ExcludedPackages:  []string{"redhat-release-server"},
		ReportCommand:     "tmt-report-result",
		RebootCommand:     "tmt-reboot",
	}
}

// Validate reports every problem with the session at once.
func (s Session) Validate() error {
	var errs []error
	for _, f := range []struct{ name, value string }{
		{"server URL", s.Credentials.ServerURL},
		{"username", s.Credentials.Username},
		{"password", s.Credentials.Password},
		{"pool", s.Credentials.Pool},
	} {
		if f.value == "" {
			errs = append(errs, fmt.Errorf("subscription %s is required", f.name))
		}
	}
	if s.Release.IsZero() {
		errs = append(errs, errors.New("release is required"))
	}
	if s.ToolPath == "" {
		errs = append(errs, errors.New("tool path is required"))
	}
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"default", s.Timeouts.Default},
		{"long", s.Timeouts.Long},
		{"prompt", s.Timeouts.Prompt},
		{"exit", s.Timeouts.Exit},
	} {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s timeout must be positive", d.name))
		}
	}
	if s.EntitlementWait < 0 {
		errs = append(errs, errors.New("entitlement wait must not be negative"))
	}
	if !s.CredentialCleanup.valid() {
		errs = append(errs, fmt.Errorf("credential cleanup must be %q or %q, not %q", Lenient, Strict, s.CredentialCleanup))
	}
	if s.RebootCount < 0 {
		errs = append(errs, errors.New("reboot count must not be negative"))
	}
	return errors.Join(errs...)
}

// Capabilities describes the host, for tests that only make sense on some hosts.
func (s Session) Capabilities() framework.Capabilities {
	var caps framework.Capabilities
	if !s.Release.IsZero() {
		caps = append(caps,
			s.Release.PackageManager(),
			string(s.Release.Distro),
			fmt.Sprintf("el%d", s.Release.Major),
		)
		if s.Release.UsesServerRepoCache() {
			caps = append(caps, CapabilityServerRepoCache)
		}
	}
	if s.UnderTMT && s.RebootCommand != "" {
		caps = append(caps, CapabilityReboot)
	}
	return caps
}

// Secrets returns the values that must not be written to transcripts.
func (s Session) Secrets() []string {
	if s.Credentials.Password == "" {
		return nil
	}
	return []string{s.Credentials.Password}
}
