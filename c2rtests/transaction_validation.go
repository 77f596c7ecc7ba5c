package c2rtests

import (
	"fmt"

	"github.com/oamg/c2r-test-harness/config"
	"github.com/oamg/c2r-test-harness/fixtures"
	"github.com/oamg/c2r-test-harness/framework/suite"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

const (
	analysisReportHeader = "Pre-conversion analysis report"
	mustFixSection       = "Must fix before conversion"
	validationSucceeded  = "VALIDATE_PACKAGE_MANAGER_TRANSACTION has succeeded"
	failedToLoadRepos    = "VALIDATE_PACKAGE_MANAGER_TRANSACTION::FAILED_TO_LOAD_REPOSITORIES"
	failedToDownload     = "VALIDATE_PACKAGE_MANAGER_TRANSACTION::FAILED_TO_DOWNLOAD_TRANSACTION_PACKAGE"
	failedToValidate     = "VALIDATE_PACKAGE_MANAGER_TRANSACTION::FAILED_TO_VALIDATE_TRANSACTION"

	excludeListTestName = "/tests/integration/tier0/non-destructive/single-yum-transaction-validation/override_exclude_list_in_yum_config"
)

func doSingleTransactionValidationTests(t *suite.T) {
	t.Run("package download error", doPackageDownloadErrorTest)
	t.Run("transaction validation error", doTransactionValidationErrorTest)
	t.Run("packages with period in name", doPackagesWithPeriodInNameTest)
	t.Run("override exclude list in package manager config", doOverrideExcludeListTest)
}

// The entitlement certificates disappear while the transaction's packages are being downloaded,
// which yum does while processing the transaction and dnf does in a separate step. Either way
// the tool has to report the failure and roll back.
func doPackageDownloadErrorTest(t *suite.T) {
	c := requireContext(t)
	s := c.session()
	fixtures.ClearPackageCache(t, c.harness)

	conv := startConversion(t, conversionArgs(s, []string{"-y"}))
	pm := s.Release.PackageManager()
	conv.expectText(fmt.Sprintf("Validate the %s transaction", pm))
	conv.expectText(fmt.Sprintf("Adding %s packages to the %s transaction set.", s.Release.Vendor(), pm))

	fixtures.RemoveServerRepoMetadata(t, c.harness)
	fixtures.RemoveEntitlement(t, c.harness)

	conv.expect(s.Timeouts.Long, analysisReportHeader)
	conv.expectText(mustFixSection)
	conv.expectText(downloadFailureCode(s.Release))

	conv.requireExitStatus(exitValidationError)
}

// downloadFailureCode is what the tool reports when it loses access to the repositories in the
// middle of downloading. On 7-series releases it cannot even load the repositories again.
func downloadFailureCode(r config.Release) string {
	// dnf reports FAILED_TO_DOWNLOAD_TRANSACTION_PACKAGES in the plural, but the message wraps
	// onto another line after the singular form.
	if r.Major >= 8 {
		return failedToDownload
	}
	return failedToLoadRepos
}

// The entitlement certificates disappear while the transaction is being processed, which makes
// yum raise a download error inside transaction validation.
func doTransactionValidationErrorTest(t *suite.T) {
	c := requireContext(t)
	s := c.session()
	fixtures.ClearPackageCache(t, c.harness)

	conv := startConversion(t, conversionArgs(s, []string{"-y"}))
	conv.expectText("Downloading and validating the yum transaction set, no modifications to the system will happen this time.")

	fixtures.RemoveServerRepoMetadata(t, c.harness)
	fixtures.RemoveEntitlement(t, c.harness)

	conv.expect(s.Timeouts.Long, "Failed to validate the yum transaction.")
	conv.expect(s.Timeouts.Long, analysisReportHeader)
	conv.expectText(mustFixSection)
	conv.expect(s.Timeouts.Long, failedToValidate)

	conv.requireExitStatus(exitValidationError)
}

// Packages with a period in their name, such as python3.11-3.11.2-2.el8.x86_64, used to be split
// in the wrong place when the tool parsed the transaction.
func doPackagesWithPeriodInNameTest(t *suite.T) {
	c := requireContext(t)
	s := c.session()
	fixtures.InstallPackages(t, c.harness, s.PeriodPackages...)

	conv := startConversion(t, conversionArgs(s, []string{"analyze"}))

	// the data collection warning comes before anything else
	index := conv.expect(s.Timeouts.Prompt, "Prepare: Inform about data collection")
	m.In(t).Assert(index, m.Equal(0))
	index = conv.expect(s.Timeouts.Prompt, "The convert2rhel utility generates a /etc/rhsm/facts/convert2rhel.facts file that contains the below data about the system conversion.")
	m.In(t).Assert(index, m.Equal(0))
	conv.expect(s.Timeouts.Prompt, "Continue with the system conversion")
	conv.sendLine("y")

	conv.expectText(validationSucceeded)
	conv.requireExitStatus(exitSuccess)
}

// A package that the package manager config excludes, such as redhat-release-server, must not
// end up in the transaction and cause dependency problems. The host runs an older kernel so that
// the analysis gets as far as the transaction despite the kernel currency check.
func doOverrideExcludeListTest(t *suite.T) {
	c := requireContext(t)
	s := c.session()
	t.RequireCapability(config.CapabilityReboot)
	fixtures.ReportResultOnFailure(t, c.harness, excludeListTestName)
	fixtures.BootOlderKernel(t, c.harness)
	fixtures.ExcludePackages(t, s.Paths.PackageManagerConfig, s.ExcludedPackages...)

	conv := startConversion(t, conversionArgs(s, []string{"analyze"}, "-y"))
	conv.expectText(validationSucceeded)
	conv.requireExitStatus(exitSuccess)
}
