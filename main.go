package main

import (
	"bufio"
	_ "embed" // this is required in order for go:embed to work
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/oamg/c2r-test-harness/c2rtests"
	"github.com/oamg/c2r-test-harness/config"
	"github.com/oamg/c2r-test-harness/framework"
	"github.com/oamg/c2r-test-harness/framework/harness"
	"github.com/oamg/c2r-test-harness/framework/suite"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const toolProbeTimeout = time.Second * 30

const jUnitSuiteName = "convert2rhel integration tests"

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func main() {
	fmt.Printf("c2r-test-harness v%s\n", strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}
	setColorMode(params.colorMode)

	results, err := run(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !results.OK() {
		os.Exit(1)
	}
}

func setColorMode(mode string) {
	switch mode {
	case colorAlways:
		color.NoColor = false
	case colorNever:
		color.NoColor = true
	default:
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	}
}

func run(params commandParams) (*suite.Results, error) {
	if params.skipFile != "" {
		if err := loadSuppressions(&params); err != nil {
			return nil, err
		}
	}

	session, err := config.Load(params.configFile, os.LookupEnv, params.overrides)
	if err != nil {
		return nil, err
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	harness, err := harness.NewTestHarness(
		session,
		nil,
		params.transcriptDir,
		toolProbeTimeout,
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		return nil, err
	}

	var testLogger suite.TestLogger
	consoleLogger := suite.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	if params.jUnitFile == "" {
		testLogger = consoleLogger
	} else {
		testLogger = &suite.MultiTestLogger{Loggers: []suite.TestLogger{
			consoleLogger,
			suite.NewJUnitTestLogger(params.jUnitFile, jUnitSuiteName, jUnitProperties(harness)),
		}}
	}

	results := c2rtests.RunTestSuite(harness, params.filters, testLogger)

	fmt.Println()
	if logErr := testLogger.EndLog(results); logErr != nil {
		return nil, fmt.Errorf("error writing log: %w", logErr)
	}

	if params.recordFailures != "" {
		if err := recordFailures(params.recordFailures, results); err != nil {
			return nil, err
		}
	}

	return &results, nil
}

func jUnitProperties(h *harness.TestHarness) map[string]string {
	props := map[string]string{
		"release": h.Session().Release.String(),
		"run_id":  h.RunID(),
		"tool":    h.ToolInfo().Path,
	}
	if v := h.ToolInfo().Version; v != "" {
		props["tool_version"] = v
	}
	return props
}

// recordFailures writes the full name of every test that failed or could not be set up, in a
// form that loadSuppressions accepts.
func recordFailures(path string, results suite.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create suppression file: %w", err)
	}
	defer func() { _ = f.Close() }()
	for _, test := range results.Failures {
		fmt.Fprintln(f, test.TestID)
	}
	for _, test := range results.SetupErrors {
		fmt.Fprintln(f, test.TestID)
	}
	return nil
}

func loadSuppressions(params *commandParams) error {
	file, err := os.Open(params.skipFile)
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %w", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Ignore blank lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		params.filters.MustNotMatch.AddExactID(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %w", err)
	}
	return nil
}
