package expect

import (
	"io"
	"syscall"
	"time"

	"github.com/oamg/c2r-test-harness/framework/helpers"
)

// fakeConsole stands in for a pty: the test writes the child's output to childOut and reads what
// the process sent from childIn.
type fakeConsole struct {
	outR     *io.PipeReader
	childOut *io.PipeWriter
	childIn  *io.PipeReader
	inW      *io.PipeWriter
}

func newFakeConsole() *fakeConsole {
	outR, outW := io.Pipe()
	inR, inW := io.Pipe()
	return &fakeConsole{outR: outR, childOut: outW, childIn: inR, inW: inW}
}

func (c *fakeConsole) Read(p []byte) (int, error)  { return c.outR.Read(p) }
func (c *fakeConsole) Write(p []byte) (int, error) { return c.inW.Write(p) }
func (c *fakeConsole) Close() error {
	_ = c.outR.Close()
	return c.inW.Close()
}

// fakeChild exits when a status is sent to exit. Unless ignoreTerm is set, SIGTERM makes it exit
// with 128+15; SIGKILL always makes it exit with 128+9.
type fakeChild struct {
	exit       chan int
	signals    chan syscall.Signal
	ignoreTerm bool
}

func newFakeChild() *fakeChild {
	return &fakeChild{exit: make(chan int, 1), signals: make(chan syscall.Signal, 10)}
}

func (c *fakeChild) Wait() (int, error) { return <-c.exit, nil }

func (c *fakeChild) Signal(sig syscall.Signal) error {
	c.signals <- sig
	if sig == syscall.SIGKILL || !c.ignoreTerm {
		helpers.NonBlockingSend(c.exit, 128+int(sig))
	}
	return nil
}

func startFake(cfg spawnConfig) (*Process, *fakeConsole, *fakeChild) {
	if cfg.killGrace == 0 {
		cfg.killGrace = time.Second
	}
	con, ch := newFakeConsole(), newFakeChild()
	return newProcess("fake-tool --debug", con, ch, cfg), con, ch
}
