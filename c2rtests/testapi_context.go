package c2rtests

import (
	"github.com/oamg/c2r-test-harness/config"
	"github.com/oamg/c2r-test-harness/framework/harness"
	"github.com/oamg/c2r-test-harness/framework/suite"
)

type C2RTestContext struct {
	harness *harness.TestHarness
}

func requireContext(t *suite.T) C2RTestContext {
	if c, ok := t.Context().(C2RTestContext); ok {
		return c
	}
	panic("C2RTestContext was not included in the global test configuration!" +
		" This is a basic mistake in the initialization logic.")
}

func (c C2RTestContext) session() config.Session {
	return c.harness.Session()
}
