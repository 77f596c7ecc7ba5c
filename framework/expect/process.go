package expect

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"syscall"
	"time"

	"github.com/oamg/c2r-test-harness/framework"
	"github.com/oamg/c2r-test-harness/framework/helpers"
	"github.com/oamg/c2r-test-harness/framework/opt"
)

const readBufferSize = 4096

// console is the harness's side of the terminal the child is attached to.
type console interface {
	io.ReadWriteCloser
}

// child is the spawned program.
type child interface {
	// Wait blocks until the program terminates and returns its exit status.
	Wait() (int, error)
	// Signal sends a signal to the program's whole process group.
	Signal(sig syscall.Signal) error
}

// Process is a running (or finished) program spawned by Spawn.
type Process struct {
	command   string
	con       console
	ch        child
	logger    framework.Logger
	killGrace time.Duration

	chunks chan []byte
	closed chan struct{}
	done   chan struct{}

	// set by the waiter goroutine before done is closed
	exitStatus opt.Maybe[int]
	waitErr    error

	output []byte
	cursor int
	before string
	match  string
	eof    bool

	closeOnce sync.Once
	closeErr  error
}

func newProcess(command string, con console, ch child, cfg spawnConfig) *Process {
	p := &Process{
		command:   command,
		con:       con,
		ch:        ch,
		logger:    cfg.logger,
		killGrace: cfg.killGrace,
		chunks:    make(chan []byte, 64),
		closed:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	if p.logger == nil {
		p.logger = framework.NullLogger()
	}
	sinks := []io.Writer{}
	if cfg.transcript != nil {
		sinks = append(sinks, cfg.transcript)
	}
	lines := framework.NewLineWriter(p.logger, "| ")
	sinks = append(sinks, lines)

	go p.readLoop(io.MultiWriter(sinks...), lines)
	go p.waitLoop()
	return p
}

func (p *Process) readLoop(sink io.Writer, lines *framework.LineWriter) {
	defer close(p.chunks)
	defer lines.Flush()
	buf := make([]byte, readBufferSize)
	for {
		n, err := p.con.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			_, _ = sink.Write(chunk)
			select {
			case p.chunks <- chunk:
			case <-p.closed:
				return
			}
		}
		if err != nil {
			// a Linux pty reports EIO rather than EOF once the child side is gone
			return
		}
	}
}

func (p *Process) waitLoop() {
	status, err := p.ch.Wait()
	p.exitStatus = opt.Some(status)
	p.waitErr = err
	p.logger.Printf("%s exited with status %d", p.command, status)
	close(p.done)
}

// Command returns the command line that the process was started with.
func (p *Process) Command() string { return p.command }

// Expect blocks until one of the patterns matches the output that has not been consumed yet, and
// returns the index of that pattern. If more than one pattern matches, the one whose match starts
// earliest in the output wins, and a tie goes to the pattern listed first. The output up to the
// end of the match is consumed.
//
// If the timeout elapses first, the error is a *TimeoutError; if the process closes its output
// first, it is an *EOFError.
func (p *Process) Expect(timeout time.Duration, patterns ...Pattern) (int, error) {
	if len(patterns) == 0 {
		return -1, errors.New("no patterns to expect")
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		unconsumed := string(p.output[p.cursor:])
		if index, start, end := earliestMatch(unconsumed, patterns); index >= 0 {
			p.before = unconsumed[:start]
			p.match = unconsumed[start:end]
			p.cursor += end
			return index, nil
		}
		if p.eof {
			return -1, &EOFError{Patterns: patterns, Unconsumed: unconsumed}
		}
		select {
		case chunk, ok := <-p.chunks:
			if !ok {
				p.eof = true
				continue
			}
			p.output = append(p.output, chunk...)
		case <-deadline.C:
			return -1, &TimeoutError{Timeout: timeout, Patterns: patterns, Unconsumed: unconsumed}
		}
	}
}

// ExpectExact is shorthand for Expect(timeout, Exact(s)).
func (p *Process) ExpectExact(timeout time.Duration, s string) error {
	_, err := p.Expect(timeout, Exact(s))
	return err
}

// ExpectRegexp is shorthand for Expect(timeout, Regexp(expr)).
func (p *Process) ExpectRegexp(timeout time.Duration, expr string) error {
	_, err := p.Expect(timeout, Regexp(expr))
	return err
}

// Send writes text to the process's input.
func (p *Process) Send(text string) error {
	if _, err := io.WriteString(p.con, text); err != nil {
		return fmt.Errorf("could not write to %s: %w", p.command, err)
	}
	return nil
}

// SendLine writes text followed by a newline to the process's input.
func (p *Process) SendLine(text string) error {
	p.logger.Printf("> %s", text)
	return p.Send(text + "\n")
}

// Before returns the output that was skipped over by the last successful Expect.
func (p *Process) Before() string { return p.before }

// Match returns the text matched by the last successful Expect.
func (p *Process) Match() string { return p.match }

// Output returns everything the process has written that Expect or Wait has read so far.
func (p *Process) Output() string { return string(p.output) }

// Wait reads the remaining output until the process closes it, then waits for the process to exit
// and returns its exit status. Both steps together must finish within the timeout.
func (p *Process) Wait(timeout time.Duration) (int, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for !p.eof {
		select {
		case chunk, ok := <-p.chunks:
			if !ok {
				p.eof = true
				continue
			}
			p.output = append(p.output, chunk...)
		case <-deadline.C:
			return -1, &TimeoutError{Timeout: timeout}
		}
	}
	select {
	case <-p.done:
	case <-deadline.C:
		return -1, &TimeoutError{Timeout: timeout}
	}
	return p.ExitStatus()
}

// ExitStatus returns the exit status of the process, or ErrStillRunning if it has not terminated.
// A process that was killed by a signal reports 128 plus the signal number, as a shell would.
func (p *Process) ExitStatus() (int, error) {
	select {
	case <-p.done:
		return p.exitStatus.Value(), p.waitErr
	default:
		return -1, ErrStillRunning
	}
}

// Close terminates the process if it is still running and releases the terminal. The process
// group gets SIGTERM first, then SIGKILL if it has not exited after the kill grace period. Calling
// Close more than once has no further effect.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.terminate()
		close(p.closed)
		if err := p.con.Close(); err != nil && p.closeErr == nil {
			p.closeErr = err
		}
	})
	return p.closeErr
}

func (p *Process) terminate() error {
	if p.exited() {
		return nil
	}
	for _, sig := range []syscall.Signal{syscall.SIGTERM, syscall.SIGKILL} {
		p.logger.Printf("sending %s to %s", sig, p.command)
		if err := p.ch.Signal(sig); err != nil && !errors.Is(err, syscall.ESRCH) {
			p.logger.Printf("could not signal %s: %s", p.command, err)
		}
		if helpers.TryReceive[struct{}](p.done, p.killGrace).IsDefined() {
			return nil
		}
	}
	return fmt.Errorf("%s did not exit after SIGKILL", p.command)
}

func (p *Process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
