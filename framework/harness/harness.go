package harness

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/oamg/c2r-test-harness/config"
	"github.com/oamg/c2r-test-harness/framework"
	"github.com/oamg/c2r-test-harness/framework/expect"
	"github.com/oamg/c2r-test-harness/framework/shell"

	"github.com/google/uuid"
)

var unsafeFileNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`) //nolint:gochecknoglobals

// TestHarness is the main component that manages the conversion tool under test.
//
// It checks that the tool can be run when it starts (ToolInfo), and can then spawn any number of
// runs of the tool (SpawnTool), each with its own transcript. It also gives fixtures access to a
// shell on the test host (Shell).
//
// It contains no scenario-specific test logic, but only provides a general mechanism for test
// suites to build on.
type TestHarness struct {
	session       config.Session
	executor      shell.Executor
	toolInfo      ToolInfo
	runID         string
	transcriptDir string
	logger        framework.Logger
}

// NewTestHarness creates a TestHarness instance, and verifies that the tool can be run by asking
// it for its version. If executor is nil, commands run with the shell named in the session.
// If transcriptDir is not empty, the output of every run of the tool is saved in a subdirectory
// of it named after the run ID.
func NewTestHarness(
	session config.Session,
	executor shell.Executor,
	transcriptDir string,
	probeTimeout time.Duration,
	debugLogger framework.Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	if executor == nil {
		executor = shell.BashExecutor{Shell: session.ShellPath, Logger: debugLogger}
	}

	h := &TestHarness{
		session:  session,
		executor: executor,
		runID:    uuid.NewString(),
		logger:   debugLogger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	toolInfo, err := queryToolInfo(ctx, executor, session.ToolPath, startupOutput)
	if err != nil {
		return nil, err
	}
	h.toolInfo = toolInfo

	if transcriptDir != "" {
		h.transcriptDir = filepath.Join(transcriptDir, h.runID)
		if err := os.MkdirAll(h.transcriptDir, 0755); err != nil { //nolint:gosec
			return nil, fmt.Errorf("cannot create transcript directory: %w", err)
		}
		fmt.Fprintf(startupOutput, "Saving transcripts in %s\n", h.transcriptDir)
	}

	return h, nil
}

// ToolInfo returns what was learned about the tool on startup.
func (h *TestHarness) ToolInfo() ToolInfo {
	return h.toolInfo
}

// Session returns the configuration of the test session.
func (h *TestHarness) Session() config.Session {
	return h.session
}

// RunID identifies this run of the harness in reports and transcript paths.
func (h *TestHarness) RunID() string {
	return h.runID
}

// Shell returns an executor for commands on the test host that writes to the given logger.
func (h *TestHarness) Shell(logger framework.Logger) shell.Executor {
	if logger == nil {
		logger = h.logger
	}
	return shell.ForLogger(h.executor, logger)
}

// TranscriptPath returns where the transcript for the named test is saved, or "" if transcripts
// are not being saved.
func (h *TestHarness) TranscriptPath(testName string) string {
	if h.transcriptDir == "" {
		return ""
	}
	name := strings.Trim(unsafeFileNameChars.ReplaceAllString(testName, "_"), "_")
	if name == "" {
		name = "run"
	}
	return filepath.Join(h.transcriptDir, name+".log")
}

// SpawnTool starts the tool with the given arguments on a new pseudo-terminal. Its output goes to
// the logger a line at a time, and to the test's transcript file if there is one. Credentials
// are masked in both.
//
// The caller owns the returned process and must Close it.
func (h *TestHarness) SpawnTool(
	ctx context.Context,
	testName string,
	args []string,
	logger framework.Logger,
) (*ToolProcess, error) {
	if logger == nil {
		logger = h.logger
	}
	secrets := h.session.Secrets()
	logger = newRedactingLogger(logger, secrets)

	opts := []expect.Option{expect.WithLogger(logger)}
	var transcript *os.File
	if path := h.TranscriptPath(testName); path != "" {
		f, err := os.Create(path) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("cannot create transcript file: %w", err)
		}
		logger.Printf("Saving transcript to %s", path)
		transcript = f
		opts = append(opts, expect.WithTranscript(newRedactingWriter(f, secrets)))
	}

	p, err := expect.Spawn(ctx, h.session.ToolPath, args, opts...)
	if err != nil {
		if transcript != nil {
			_ = transcript.Close()
		}
		return nil, redactError(err, secrets)
	}
	return &ToolProcess{Process: p, transcript: transcript, secrets: secrets}, nil
}

// ToolProcess is a run of the tool. Closing it also closes its transcript file.
//
// The command line and the errors it returns have credentials masked, since they end up in test
// failure messages. Output, Before and Match return what the tool printed, unmasked.
type ToolProcess struct {
	*expect.Process
	transcript *os.File
	secrets    []string
}

func (p *ToolProcess) Command() string {
	return redact(p.Process.Command(), p.secrets)
}

func (p *ToolProcess) Expect(timeout time.Duration, patterns ...expect.Pattern) (int, error) {
	index, err := p.Process.Expect(timeout, patterns...)
	return index, redactError(err, p.secrets)
}

func (p *ToolProcess) ExpectExact(timeout time.Duration, s string) error {
	_, err := p.Expect(timeout, expect.Exact(s))
	return err
}

func (p *ToolProcess) ExpectRegexp(timeout time.Duration, expr string) error {
	_, err := p.Expect(timeout, expect.Regexp(expr))
	return err
}

func (p *ToolProcess) Send(text string) error {
	return redactError(p.Process.Send(text), p.secrets)
}

func (p *ToolProcess) SendLine(text string) error {
	return redactError(p.Process.SendLine(text), p.secrets)
}

func (p *ToolProcess) Wait(timeout time.Duration) (int, error) {
	status, err := p.Process.Wait(timeout)
	return status, redactError(err, p.secrets)
}

func (p *ToolProcess) Close() error {
	err := redactError(p.Process.Close(), p.secrets)
	if p.transcript != nil {
		if cerr := p.transcript.Close(); cerr != nil && err == nil {
			err = cerr
		}
		p.transcript = nil
	}
	return err
}
