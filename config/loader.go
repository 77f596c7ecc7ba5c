package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvServerURL   = "RHSM_SERVER_URL"
	EnvUsername    = "RHSM_USERNAME"
	EnvPassword    = "RHSM_PASSWORD"
	EnvPool        = "RHSM_POOL"
	EnvRelease     = "SYSTEM_RELEASE_ENV"
	EnvRebootCount = "TMT_REBOOT_COUNT"
	EnvTool        = "C2R_TOOL"
)

// ErrUnsupportedFormat is returned for a config file that is neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("config file must have a .yaml, .yml or .toml extension")

// an older kernel that is still available from the base repositories of each major release
var defaultOlderKernels = map[int]string{ //nolint:gochecknoglobals
	7: "kernel-3.10.0-1160.el7",
	8: "kernel-4.18.0-372.9.1.el8",
}

// Overrides are settings given on the command line, which take precedence over everything else.
type Overrides struct {
	ToolPath      string
	Release       string
	StrictCleanup bool
}

// LookupEnvFunc has the signature of os.LookupEnv.
type LookupEnvFunc func(name string) (string, bool)

// fileSession is the layout of a config file. Durations are Go duration strings such as "10m".
type fileSession struct {
	Release     string `yaml:"release" toml:"release"`
	Tool        string `yaml:"tool" toml:"tool"`
	Shell       string `yaml:"shell" toml:"shell"`
	Credentials struct {
		ServerURL string `yaml:"server_url" toml:"server_url"`
		Username  string `yaml:"username" toml:"username"`
		Password  string `yaml:"password" toml:"password"`
		Pool      string `yaml:"pool" toml:"pool"`
	} `yaml:"credentials" toml:"credentials"`
	Paths struct {
		EntitlementDir       string `yaml:"entitlement_dir" toml:"entitlement_dir"`
		PackageCacheRoot     string `yaml:"package_cache_root" toml:"package_cache_root"`
		PackageManagerConfig string `yaml:"package_manager_config" toml:"package_manager_config"`
		ServerRepoMetadata   string `yaml:"server_repo_metadata" toml:"server_repo_metadata"`
		StateDir             string `yaml:"state_dir" toml:"state_dir"`
	} `yaml:"paths" toml:"paths"`
	Timeouts struct {
		Default string `yaml:"default" toml:"default"`
		Long    string `yaml:"long" toml:"long"`
		Prompt  string `yaml:"prompt" toml:"prompt"`
		Exit    string `yaml:"exit" toml:"exit"`
	} `yaml:"timeouts" toml:"timeouts"`
	CredentialCleanup string   `yaml:"credential_cleanup" toml:"credential_cleanup"`
	EntitlementWait   string   `yaml:"entitlement_wait" toml:"entitlement_wait"`
	PeriodPackages    []string `yaml:"period_packages" toml:"period_packages"`
	ExcludedPackages  []string `yaml:"excluded_packages" toml:"excluded_packages"`
	OlderKernel       string   `yaml:"older_kernel" toml:"older_kernel"`
	ReportCommand     string   `yaml:"report_command" toml:"report_command"`
	RebootCommand     string   `yaml:"reboot_command" toml:"reboot_command"`
}

// Load builds a Session from, in increasing order of precedence: the defaults, the config file at
// path (if path is not empty), the environment, and the command-line overrides. The result is
// validated.
func Load(path string, lookupEnv LookupEnvFunc, overrides Overrides) (Session, error) {
	s := Default()
	if path != "" {
		if err := applyFile(&s, path); err != nil {
			return Session{}, err
		}
	}
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	if err := applyEnv(&s, lookupEnv); err != nil {
		return Session{}, err
	}
	if err := applyOverrides(&s, overrides); err != nil {
		return Session{}, err
	}
	if s.OlderKernel == "" {
		s.OlderKernel = defaultOlderKernels[s.Release.Major]
	}
	if err := s.Validate(); err != nil {
		return Session{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

func applyFile(s *Session, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config file: %w", err)
	}
	var f fileSession
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("error loading config from %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return fmt.Errorf("error loading config from %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err := f.applyTo(s); err != nil {
		return fmt.Errorf("error in config file %s: %w", path, err)
	}
	return nil
}

func (f fileSession) applyTo(s *Session) error {
	if f.Release != "" {
		r, err := ParseRelease(f.Release)
		if err != nil {
			return err
		}
		s.Release = r
	}
	setString(&s.ToolPath, f.Tool)
	setString(&s.ShellPath, f.Shell)
	setString(&s.Credentials.ServerURL, f.Credentials.ServerURL)
	setString(&s.Credentials.Username, f.Credentials.Username)
	setString(&s.Credentials.Password, f.Credentials.Password)
	setString(&s.Credentials.Pool, f.Credentials.Pool)
	setString(&s.Paths.EntitlementDir, f.Paths.EntitlementDir)
	setString(&s.Paths.PackageCacheRoot, f.Paths.PackageCacheRoot)
	setString(&s.Paths.PackageManagerConfig, f.Paths.PackageManagerConfig)
	setString(&s.Paths.ServerRepoMetadata, f.Paths.ServerRepoMetadata)
	setString(&s.Paths.StateDir, f.Paths.StateDir)
	setString(&s.OlderKernel, f.OlderKernel)
	setString(&s.ReportCommand, f.ReportCommand)
	setString(&s.RebootCommand, f.RebootCommand)
	if f.CredentialCleanup != "" {
		s.CredentialCleanup = CleanupMode(f.CredentialCleanup)
	}
	if f.PeriodPackages != nil {
		s.PeriodPackages = f.PeriodPackages
	}
	if f.ExcludedPackages != nil {
		s.ExcludedPackages = f.ExcludedPackages
	}
	for _, d := range []struct {
		name   string
		value  string
		target *time.Duration
	}{
		{"timeouts.default", f.Timeouts.Default, &s.Timeouts.Default},
		{"timeouts.long", f.Timeouts.Long, &s.Timeouts.Long},
		{"timeouts.prompt", f.Timeouts.Prompt, &s.Timeouts.Prompt},
		{"timeouts.exit", f.Timeouts.Exit, &s.Timeouts.Exit},
		{"entitlement_wait", f.EntitlementWait, &s.EntitlementWait},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.target = parsed
	}
	return nil
}

func applyEnv(s *Session, lookupEnv LookupEnvFunc) error {
	for _, e := range []struct {
		name   string
		target *string
	}{
		{EnvServerURL, &s.Credentials.ServerURL},
		{EnvUsername, &s.Credentials.Username},
		{EnvPassword, &s.Credentials.Password},
		{EnvPool, &s.Credentials.Pool},
		{EnvTool, &s.ToolPath},
	} {
		if value, ok := lookupEnv(e.name); ok {
			setString(e.target, value)
		}
	}
	if value, ok := lookupEnv(EnvRelease); ok && value != "" {
		r, err := ParseRelease(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRelease, err)
		}
		s.Release = r
	}
	if value, ok := lookupEnv(EnvRebootCount); ok {
		count, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s must be a number, not %q", EnvRebootCount, value)
		}
		s.RebootCount = count
		s.UnderTMT = true
	}
	return nil
}

func applyOverrides(s *Session, o Overrides) error {
	setString(&s.ToolPath, o.ToolPath)
	if o.Release != "" {
		r, err := ParseRelease(o.Release)
		if err != nil {
			return err
		}
		s.Release = r
	}
	if o.StrictCleanup {
		s.CredentialCleanup = Strict
	}
	return nil
}

func setString(target *string, value string) {
	if value != "" {
		*target = value
	}
}
