// Package c2rtests contains the integration test scenarios for convert2rhel.
package c2rtests

import (
	"fmt"
	"os"

	"github.com/oamg/c2r-test-harness/framework/harness"
	"github.com/oamg/c2r-test-harness/framework/suite"
)

// RunTestSuite runs every scenario against the tool managed by the harness.
func RunTestSuite(
	harness *harness.TestHarness,
	filters suite.RegexFilters,
	testLogger suite.TestLogger,
) suite.Results {
	session := harness.Session()
	fmt.Printf("Running convert2rhel integration test suite on %s (%s, %s)\n",
		session.Release, session.Release.Vendor(), session.Release.PackageManager())
	if v := harness.ToolInfo().Version; v != "" {
		fmt.Printf("Tool version: %s\n", v)
	}
	fmt.Printf("Host capabilities: %v\n", session.Capabilities().Sorted())
	fmt.Println()
	filters.Describe(os.Stdout)

	config := suite.TestConfiguration{
		Filter:       filters.Match,
		Capabilities: session.Capabilities(),
		TestLogger:   testLogger,
		Context: C2RTestContext{
			harness: harness,
		},
	}

	return suite.Run(config, doAllTests)
}

func doAllTests(t *suite.T) {
	t.Run("single yum transaction validation", doSingleTransactionValidationTests)
}
