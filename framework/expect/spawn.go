package expect

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/oamg/c2r-test-harness/framework"
	"github.com/oamg/c2r-test-harness/framework/helpers"

	"github.com/creack/pty"
)

const (
	defaultRows      = 24
	defaultCols      = 200
	defaultKillGrace = 5 * time.Second
)

type spawnConfig struct {
	env        []string
	dir        string
	transcript io.Writer
	logger     framework.Logger
	rows, cols uint16
	killGrace  time.Duration
}

// Option is an optional setting for Spawn.
type Option func(*spawnConfig) error

func (o Option) Configure(c *spawnConfig) error { return o(c) }

// WithEnv adds "NAME=value" variables to the environment inherited from the harness.
func WithEnv(vars ...string) Option {
	return func(c *spawnConfig) error {
		c.env = append(c.env, vars...)
		return nil
	}
}

// WithDir sets the working directory of the process.
func WithDir(dir string) Option {
	return func(c *spawnConfig) error {
		c.dir = dir
		return nil
	}
}

// WithTranscript copies every byte the process writes to w, as soon as it is read.
func WithTranscript(w io.Writer) Option {
	return func(c *spawnConfig) error {
		c.transcript = w
		return nil
	}
}

// WithLogger sends the process's output to a logger one line at a time, along with lines sent
// to it and lifecycle messages.
func WithLogger(logger framework.Logger) Option {
	return func(c *spawnConfig) error {
		c.logger = logger
		return nil
	}
}

// WithWindowSize sets the size of the terminal. The default is 24 rows by 200 columns, wide
// enough that long diagnostic lines are not wrapped by programs that format for the terminal.
func WithWindowSize(rows, cols uint16) Option {
	return func(c *spawnConfig) error {
		if rows == 0 || cols == 0 {
			return errors.New("window size must be non-zero")
		}
		c.rows, c.cols = rows, cols
		return nil
	}
}

// WithKillGrace sets how long Close waits after each signal for the process to exit.
func WithKillGrace(d time.Duration) Option {
	return func(c *spawnConfig) error {
		if d <= 0 {
			return errors.New("kill grace period must be positive")
		}
		c.killGrace = d
		return nil
	}
}

// Spawn starts a program attached to a new pseudo-terminal. The program becomes the leader of a
// new session and process group, so Close and context cancellation can reach anything it starts.
func Spawn(ctx context.Context, name string, args []string, opts ...Option) (*Process, error) {
	cfg := spawnConfig{rows: defaultRows, cols: defaultCols, killGrace: defaultKillGrace}
	if err := helpers.ApplyOptions(&cfg, opts...); err != nil {
		return nil, err
	}
	command := commandLine(name, args)

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.Env = append(os.Environ(), cfg.env...)
	cmd.Dir = cfg.dir

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: cfg.rows, Cols: cfg.cols})
	if err != nil {
		return nil, &LaunchError{Command: command, Err: err}
	}
	if cfg.logger != nil {
		cfg.logger.Printf("spawned %s (pid %d)", command, cmd.Process.Pid)
	}
	return newProcess(command, ptmx, &osChild{cmd: cmd}, cfg), nil
}

type osChild struct {
	cmd *exec.Cmd
}

func (c *osChild) Wait() (int, error) {
	err := c.cmd.Wait()
	state := c.cmd.ProcessState
	if state == nil {
		return -1, err
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), nil
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return state.ExitCode(), err
	}
	return state.ExitCode(), nil
}

func (c *osChild) Signal(sig syscall.Signal) error {
	// the child is a session leader, so its pid is also its process group id
	return syscall.Kill(-c.cmd.Process.Pid, sig)
}

func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
