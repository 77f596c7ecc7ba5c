package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oamg/c2r-test-harness/framework/suite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yumConf = `[main]
cachedir=/var/cache/yum/$basearch/$releasever
keepcache=0

[extra]
exclude=kernel*
`

func TestExcludePackagesRestoresFile(t *testing.T) {
	s := testSession(t, "centos-7")
	path := s.Paths.PackageManagerConfig
	require.NoError(t, os.WriteFile(path, []byte(yumConf), 0640))

	// running it twice leaves the file the same as running it once
	for i := 0; i < 2; i++ {
		var during string
		results := runScope(s, func(t *suite.T) {
			ExcludePackages(t, path, "redhat-release-server")
			data, _ := os.ReadFile(path)
			during = string(data)
		})
		require.True(t, results.OK())
		assert.Equal(t, "[main]\nexclude=redhat-release-server\ncachedir=/var/cache/yum/$basearch/$releasever\nkeepcache=0\n\n[extra]\nexclude=kernel*\n", during)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, yumConf, string(data))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
	}
}

func TestExcludePackagesRemovesCreatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dnf.conf")
	s := testSession(t, "alma-8.8")

	results := runScope(s, func(t *suite.T) {
		ExcludePackages(t, path, "a", "b")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("%s", err)
		}
		if string(data) != "[main]\nexclude=a b\n" {
			t.Errorf("unexpected content %q", string(data))
		}
	})
	assert.True(t, results.OK())
	assert.NoFileExists(t, path)
}

func TestSetExcludeList(t *testing.T) {
	for name, p := range map[string]struct{ in, out string }{
		"replaces existing": {
			"[main]\nexclude=foo\ngpgcheck=1\n",
			"[main]\nexclude=bar\ngpgcheck=1\n",
		},
		"replaces with spaces": {
			"[main]\n  exclude = foo\n",
			"[main]\nexclude=bar\n",
		},
		"ignores other sections": {
			"[repo]\nexclude=foo\n[main]\ngpgcheck=1\n",
			"[repo]\nexclude=foo\n[main]\nexclude=bar\ngpgcheck=1\n",
		},
		"adds main section": {
			"[repo]\nname=x\n",
			"[main]\nexclude=bar\n\n[repo]\nname=x\n",
		},
		"empty file": {"", "[main]\nexclude=bar\n"},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, p.out, setExcludeList(p.in, "bar"))
		})
	}
}
