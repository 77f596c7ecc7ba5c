package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Distro identifies the operating system that is being converted.
type Distro string

const (
	CentOS Distro = "centos"
	Oracle Distro = "oracle"
	Alma   Distro = "alma"
	Rocky  Distro = "rocky"
	Stream Distro = "stream"
)

var vendors = map[Distro]string{ //nolint:gochecknoglobals
	CentOS: "CentOS Linux",
	Oracle: "Oracle Linux Server",
	Alma:   "AlmaLinux",
	Rocky:  "Rocky Linux",
	Stream: "CentOS Stream",
}

var releasePattern = regexp.MustCompile(`^([a-z]+)-(\d+)(?:\.(\d+))?$`) //nolint:gochecknoglobals

// Release is the system that the tests run on, resolved once from an identifier such as
// "centos-7" or "oracle-8.9". Everything that depends on the distribution or its major version
// is derived from it.
type Release struct {
	Distro  Distro
	Version string // "7", "8.9"
	Major   int
}

// ParseRelease parses a release identifier.
func ParseRelease(id string) (Release, error) {
	m := releasePattern.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return Release{}, fmt.Errorf("malformed release identifier %q, expected something like \"centos-7\" or \"alma-8.8\"", id)
	}
	distro := Distro(m[1])
	if _, ok := vendors[distro]; !ok {
		return Release{}, fmt.Errorf("unknown distribution %q in release identifier %q", m[1], id)
	}
	major, _ := strconv.Atoi(m[2])
	if major < 7 {
		return Release{}, fmt.Errorf("unsupported major version %d in release identifier %q", major, id)
	}
	version := m[2]
	if m[3] != "" {
		version += "." + m[3]
	}
	return Release{Distro: distro, Version: version, Major: major}, nil
}

// IsZero is true if the release has not been set.
func (r Release) IsZero() bool { return r.Distro == "" }

// String returns the release identifier.
func (r Release) String() string {
	if r.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s-%s", r.Distro, r.Version)
}

// Vendor is the name the conversion tool uses for the original distribution's packages.
func (r Release) Vendor() string { return vendors[r.Distro] }

// PackageManager is "yum" on 7-series releases and "dnf" on anything newer.
func (r Release) PackageManager() string {
	if r.Major == 7 {
		return "yum"
	}
	return "dnf"
}

// UsesServerRepoCache is true for the releases where the package manager keeps repository
// metadata for the RHEL server repositories in its cache, so that deleting that metadata forces a
// repository loading failure.
func (r Release) UsesServerRepoCache() bool {
	return r.Major == 7 && r.Version == "7" && (r.Distro == CentOS || r.Distro == Oracle)
}

// MarshalText and UnmarshalText let a release appear as a plain string in config files.
func (r Release) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Release) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*r = Release{}
		return nil
	}
	parsed, err := ParseRelease(string(data))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
