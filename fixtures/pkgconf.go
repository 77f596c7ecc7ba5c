package fixtures

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/oamg/c2r-test-harness/framework/suite"
)

//nolint:gochecknoglobals
var (
	mainSectionHeader = regexp.MustCompile(`^\s*\[main\]\s*$`)
	sectionHeader     = regexp.MustCompile(`^\s*\[[^\]]+\]\s*$`)
	excludeOption     = regexp.MustCompile(`^\s*exclude\s*=`)
)

// ExcludePackages sets the exclude list in the [main] section of the package manager's config
// file, replacing any exclude list that is already there. When the test scope ends the file is
// restored byte for byte, or deleted if it did not exist before.
func ExcludePackages(t *suite.T, path string, packages ...string) {
	t.Helper()
	original, err := os.ReadFile(path)
	existed := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		t.SetupFailed("cannot read %s: %s", path, err)
	}
	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	t.Defer(func() {
		var err error
		if existed {
			err = os.WriteFile(path, original, mode)
		} else {
			err = os.Remove(path)
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("could not restore %s: %s", path, err)
		}
	})

	updated := setExcludeList(string(original), strings.Join(packages, " "))
	if err := os.WriteFile(path, []byte(updated), mode); err != nil {
		t.SetupFailed("cannot write %s: %s", path, err)
	}
	t.Debug("Set exclude=%s in %s", strings.Join(packages, " "), path)
}

// setExcludeList returns the config file content with "exclude=<value>" in its [main] section.
func setExcludeList(content, value string) string {
	line := "exclude=" + value
	lines := strings.Split(content, "\n")
	inMain := false
	mainAt := -1
	for i, l := range lines {
		switch {
		case mainSectionHeader.MatchString(l):
			inMain, mainAt = true, i
		case sectionHeader.MatchString(l):
			inMain = false
		case inMain && excludeOption.MatchString(l):
			lines[i] = line
			return strings.Join(lines, "\n")
		}
	}
	if mainAt < 0 {
		prefix := "[main]\n" + line + "\n"
		if content != "" {
			prefix += "\n"
		}
		return prefix + content
	}
	lines = append(lines[:mainAt+1], append([]string{line}, lines[mainAt+1:]...)...)
	return strings.Join(lines, "\n")
}
