package fixtures

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oamg/c2r-test-harness/config"
	"github.com/oamg/c2r-test-harness/framework"
	"github.com/oamg/c2r-test-harness/framework/harness"
	"github.com/oamg/c2r-test-harness/framework/suite"

	"github.com/fsnotify/fsnotify"
)

// RemoveEntitlementCerts deletes every file in the entitlement certificate directory and returns
// the paths it deleted.
//
// The directory only exists once the conversion has installed subscription-manager and registered
// the system, and nothing is backed up: a clean host has no certificates. In lenient mode a
// missing directory or a file that cannot be deleted is logged and otherwise ignored. In strict
// mode they are returned as errors, joined together.
func RemoveEntitlementCerts(logger framework.Logger, dir string, mode config.CleanupMode) ([]string, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if mode == config.Strict {
			return nil, fmt.Errorf("cannot list entitlement certificates: %w", err)
		}
		logger.Printf("Could not list %s, nothing to remove: %s", dir, err)
		return nil, nil
	}

	var removed []string
	var errs []error
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			logger.Printf("Failed to delete %s. Reason: %s", path, err)
			errs = append(errs, err)
			continue
		}
		logger.Printf("Deleted %s", path)
		removed = append(removed, path)
	}
	if mode == config.Strict {
		return removed, errors.Join(errs...)
	}
	return removed, nil
}

// WaitForEntitlementCerts blocks until the directory exists and contains at least one file, or
// the context ends. The directory's parent must already exist.
func WaitForEntitlementCerts(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot watch for entitlement certificates: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(dir)); err != nil {
		return fmt.Errorf("cannot watch %s: %w", filepath.Dir(dir), err)
	}
	watchingDir := false
	for {
		// the watches are in place before each check, so nothing created after the check is missed
		if !watchingDir && watcher.Add(dir) == nil {
			watchingDir = true
		}
		if hasFiles(dir) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("no entitlement certificate appeared in %s: %w", dir, ctx.Err())
		case _, ok := <-watcher.Events:
			if !ok {
				return errors.New("file watcher stopped unexpectedly")
			}
		case err, ok := <-watcher.Errors:
			if ok {
				return fmt.Errorf("error while watching %s: %w", dir, err)
			}
		}
	}
}

func hasFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() {
			return true
		}
	}
	return false
}

// RemoveEntitlement deletes the entitlement certificates in the middle of a conversion, to cut
// the tool off from the repositories. If the session has an entitlement wait, it first waits that
// long for the certificates to appear.
func RemoveEntitlement(t *suite.T, h *harness.TestHarness) {
	t.Helper()
	s := h.Session()
	dir := s.Paths.EntitlementDir

	if s.EntitlementWait > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.EntitlementWait)
		err := WaitForEntitlementCerts(ctx, dir)
		cancel()
		if err != nil {
			if s.CredentialCleanup == config.Strict {
				t.Errorf("%s", err)
				t.FailNow()
			}
			t.Debug("%s", err)
		}
	}

	removed, err := RemoveEntitlementCerts(t.DebugLogger(), dir, s.CredentialCleanup)
	if err != nil {
		t.Errorf("%s", err)
		t.FailNow()
	}
	t.Debug("Removed %d entitlement certificate(s) from %s", len(removed), dir)
}
