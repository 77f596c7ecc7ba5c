package expect

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is matched by errors.Is for every *TimeoutError.
var ErrTimeout = errors.New("timed out")

// ErrEOF is matched by errors.Is for every *EOFError.
var ErrEOF = errors.New("end of output")

// ErrStillRunning is returned by ExitStatus when the process has not terminated yet.
var ErrStillRunning = errors.New("process is still running")

const maxUnconsumedInError = 2000

// LaunchError means that the program could not be started at all.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("could not start %s: %s", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// TimeoutError means that the expected output did not arrive, or the process did not exit, in time.
type TimeoutError struct {
	Timeout    time.Duration
	Patterns   []Pattern // empty if the caller was waiting for the process to exit
	Unconsumed string
}

func (e *TimeoutError) Error() string {
	if len(e.Patterns) == 0 {
		return fmt.Sprintf("timed out after %s waiting for the process to exit", e.Timeout)
	}
	return fmt.Sprintf("timed out after %s waiting for %s; unconsumed output:\n%s",
		e.Timeout, describePatterns(e.Patterns), tail(e.Unconsumed))
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// EOFError means that the process closed its output before any of the patterns appeared.
type EOFError struct {
	Patterns   []Pattern
	Unconsumed string
}

func (e *EOFError) Error() string {
	return fmt.Sprintf("process output ended while waiting for %s; unconsumed output:\n%s",
		describePatterns(e.Patterns), tail(e.Unconsumed))
}

func (e *EOFError) Is(target error) bool { return target == ErrEOF }

func tail(s string) string {
	if len(s) <= maxUnconsumedInError {
		return s
	}
	return "..." + s[len(s)-maxUnconsumedInError:]
}
