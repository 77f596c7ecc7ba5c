// Package shell runs command lines on the test host on behalf of fixtures and scenarios.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/oamg/c2r-test-harness/framework"
)

// DefaultShell is the interpreter used when a BashExecutor does not specify one.
const DefaultShell = "bash"

// ExitCodeUnknown is reported when a command was started but no exit status could be obtained.
const ExitCodeUnknown = -1

// ErrEmptyCommand is returned when Run is called with a blank command line.
var ErrEmptyCommand = errors.New("empty command")

// Executor runs a command line and reports how it ended.
type Executor interface {
	// Run executes the command line. A non-zero exit status is not an error: it is reported in
	// Result.ExitCode. The error is non-nil only if the command could not be run at all.
	Run(ctx context.Context, command string) (*Result, error)
}

// Result describes a finished command.
type Result struct {
	Command  string
	ExitCode int
	Output   string // stdout and stderr, interleaved
	Duration time.Duration
}

// Succeeded is true if the command exited with status 0.
func (r *Result) Succeeded() bool {
	return r != nil && r.ExitCode == 0
}

func (r *Result) String() string {
	return fmt.Sprintf("%q exited with status %d", r.Command, r.ExitCode)
}

// BashExecutor runs each command line with "<shell> -c".
type BashExecutor struct {
	Shell  string
	Env    []string // appended to the harness's own environment
	Logger framework.Logger
}

func (e BashExecutor) Run(ctx context.Context, command string) (*Result, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrEmptyCommand
	}
	logger := e.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}
	shell := e.Shell
	if shell == "" {
		shell = DefaultShell
	}

	path, err := exec.LookPath(shell)
	if err != nil {
		return nil, fmt.Errorf("failed to find shell %q: %w", shell, err)
	}
	cmd := exec.CommandContext(ctx, path, "-c", command) //nolint:gosec
	if len(e.Env) != 0 {
		cmd.Env = append(cmd.Environ(), e.Env...)
	}
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	logger.Printf("$ %s", command)
	start := time.Now()
	runErr := cmd.Run()
	result := &Result{
		Command:  command,
		Output:   output.String(),
		Duration: time.Since(start),
		ExitCode: ExitCodeUnknown,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("command %q was interrupted: %w", command, ctx.Err())
	}
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return result, fmt.Errorf("command %q could not be run: %w", command, runErr)
	}

	if out := strings.TrimRight(result.Output, "\n"); out != "" {
		logger.Println(out)
	}
	logger.Printf("exit status %d (%s)", result.ExitCode, result.Duration.Round(time.Millisecond))
	return result, nil
}

// WithLogger returns a copy of the executor that writes to the given logger.
func (e BashExecutor) WithLogger(logger framework.Logger) Executor {
	e.Logger = logger
	return e
}

// ForLogger returns an executor that writes to the given logger, if the executor supports
// changing its logger, or the executor itself otherwise.
func ForLogger(e Executor, logger framework.Logger) Executor {
	if l, ok := e.(interface {
		WithLogger(framework.Logger) Executor
	}); ok {
		return l.WithLogger(logger)
	}
	return e
}

// Quote returns s quoted for use as a single word in a POSIX shell command line.
func Quote(s string) string {
	if s != "" && strings.Trim(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-.,:/=+@") == "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
