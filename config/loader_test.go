package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(vars map[string]string) LookupEnvFunc {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func fullEnv() map[string]string {
	return map[string]string{
		EnvServerURL: "https://subscription.example.com",
		EnvUsername:  "tester",
		EnvPassword:  "hunter2",
		EnvPool:      "8a85f99",
		EnvRelease:   "centos-7",
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFromEnvironment(t *testing.T) {
	s, err := Load("", envFrom(fullEnv()), Overrides{})
	require.NoError(t, err)

	assert.Equal(t, Credentials{
		ServerURL: "https://subscription.example.com",
		Username:  "tester",
		Password:  "hunter2",
		Pool:      "8a85f99",
	}, s.Credentials)
	assert.Equal(t, "centos-7", s.Release.String())
	assert.Equal(t, "convert2rhel", s.ToolPath)
	assert.Equal(t, Lenient, s.CredentialCleanup)
	assert.Equal(t, "kernel-3.10.0-1160.el7", s.OlderKernel)
	assert.False(t, s.UnderTMT)
	assert.Equal(t, []string{"hunter2"}, s.Secrets())
}

func TestLoadRebootCount(t *testing.T) {
	env := fullEnv()
	env[EnvRebootCount] = "1"
	s, err := Load("", envFrom(env), Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.RebootCount)
	assert.True(t, s.UnderTMT)
	assert.True(t, s.Capabilities().Has(CapabilityReboot))

	env[EnvRebootCount] = "one"
	_, err = Load("", envFrom(env), Overrides{})
	assert.Error(t, err)
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeFile(t, "session.yaml", `
release: oracle-8.9
tool: /usr/bin/convert2rhel
credentials:
  server_url: https://file.example.com
  username: from-file
  password: file-password
  pool: file-pool
paths:
  entitlement_dir: /tmp/entitlement
timeouts:
  long: 15m
credential_cleanup: strict
entitlement_wait: 30s
period_packages: [python3.11]
`)
	env := map[string]string{EnvUsername: "from-env"}
	s, err := Load(path, envFrom(env), Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "oracle-8.9", s.Release.String())
	assert.Equal(t, "/usr/bin/convert2rhel", s.ToolPath)
	assert.Equal(t, "from-env", s.Credentials.Username)
	assert.Equal(t, "file-password", s.Credentials.Password)
	assert.Equal(t, "/tmp/entitlement", s.Paths.EntitlementDir)
	assert.Equal(t, "/var/cache", s.Paths.PackageCacheRoot)
	assert.Equal(t, 15*time.Minute, s.Timeouts.Long)
	assert.Equal(t, 30*time.Second, s.Timeouts.Default)
	assert.Equal(t, Strict, s.CredentialCleanup)
	assert.Equal(t, 30*time.Second, s.EntitlementWait)
	assert.Equal(t, []string{"python3.11"}, s.PeriodPackages)
	assert.Equal(t, "kernel-4.18.0-372.9.1.el8", s.OlderKernel)
}

func TestLoadTOMLFile(t *testing.T) {
	path := writeFile(t, "session.toml", `
release = "alma-8.8"
older_kernel = "kernel-4.18.0-80.el8"

[credentials]
server_url = "https://file.example.com"
username = "u"
password = "p"
pool = "x"

[timeouts]
prompt = "2m"
`)
	s, err := Load(path, envFrom(nil), Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "alma-8.8", s.Release.String())
	assert.Equal(t, "kernel-4.18.0-80.el8", s.OlderKernel)
	assert.Equal(t, 2*time.Minute, s.Timeouts.Prompt)
	assert.Equal(t, "dnf", s.Release.PackageManager())
}

func TestLoadOverridesWin(t *testing.T) {
	path := writeFile(t, "session.yml", "release: centos-7\ntool: /from/file\n")
	env := fullEnv()
	env[EnvTool] = "/from/env"
	s, err := Load(path, envFrom(env), Overrides{ToolPath: "/from/flag", Release: "rocky-8.9", StrictCleanup: true})
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", s.ToolPath)
	assert.Equal(t, "rocky-8.9", s.Release.String())
	assert.Equal(t, Strict, s.CredentialCleanup)
}

func TestLoadFileErrors(t *testing.T) {
	for name, p := range map[string]struct{ file, content string }{
		"unknown key":      {"a.yaml", "relase: centos-7\n"},
		"bad release":      {"a.yaml", "release: debian-12\n"},
		"bad duration":     {"a.toml", "[timeouts]\nlong = \"ten minutes\"\n"},
		"unknown toml key": {"a.toml", "colour = true\n"},
		"bad extension":    {"a.json", "{}"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, p.file, p.content), envFrom(fullEnv()), Overrides{})
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), envFrom(fullEnv()), Overrides{})
	assert.Error(t, err)
}

func TestValidateReportsEverything(t *testing.T) {
	s := Default()
	s.Timeouts.Long = 0
	s.CredentialCleanup = "sometimes"
	err := s.Validate()
	require.Error(t, err)
	for _, msg := range []string{
		"subscription server URL is required",
		"subscription password is required",
		"release is required",
		"long timeout must be positive",
		`credential cleanup must be "lenient" or "strict", not "sometimes"`,
	} {
		assert.Contains(t, err.Error(), msg)
	}
}

func TestCapabilities(t *testing.T) {
	s, err := Load("", envFrom(fullEnv()), Overrides{})
	require.NoError(t, err)
	caps := s.Capabilities()
	assert.Subset(t, caps, []string{"yum", "centos", "el7", CapabilityServerRepoCache})
	assert.False(t, caps.Has(CapabilityReboot))

	s.Release, _ = ParseRelease("stream-8")
	caps = s.Capabilities()
	assert.Subset(t, caps, []string{"dnf", "stream", "el8"})
	assert.False(t, caps.Has(CapabilityServerRepoCache))
}
