package harness

import (
	"fmt"
	"io"
	"strings"

	"github.com/oamg/c2r-test-harness/framework"
)

const redacted = "********"

// redactingWriter masks secrets in whatever is written through it. A secret that is split across
// two writes is not masked; the transcript writer receives whole reads from the terminal, which
// in practice keeps a short secret on one line together.
type redactingWriter struct {
	writer  io.Writer
	secrets []string
}

func newRedactingWriter(writer io.Writer, secrets []string) io.Writer {
	if len(secrets) == 0 {
		return writer
	}
	return &redactingWriter{writer, secrets}
}

func (w *redactingWriter) Write(data []byte) (int, error) {
	if _, err := io.WriteString(w.writer, redact(string(data), w.secrets)); err != nil {
		return 0, err
	}
	return len(data), nil
}

type redactingLogger struct {
	base    framework.Logger
	secrets []string
}

func newRedactingLogger(base framework.Logger, secrets []string) framework.Logger {
	if len(secrets) == 0 {
		return base
	}
	return redactingLogger{base, secrets}
}

func (l redactingLogger) Println(args ...interface{}) {
	l.base.Println(redact(strings.TrimSuffix(fmt.Sprintln(args...), "\n"), l.secrets))
}

func (l redactingLogger) Printf(message string, args ...interface{}) {
	l.base.Println(redact(fmt.Sprintf(message, args...), l.secrets))
}

func redact(s string, secrets []string) string {
	for _, secret := range secrets {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, redacted)
		}
	}
	return s
}

// redactedError has the message of err with secrets masked. errors.Is and errors.As still see
// err, so callers can tell a timeout from a launch failure.
type redactedError struct {
	message string
	err     error
}

func redactError(err error, secrets []string) error {
	if err == nil {
		return nil
	}
	message := redact(err.Error(), secrets)
	if message == err.Error() {
		return err
	}
	return &redactedError{message: message, err: err}
}

func (e *redactedError) Error() string { return e.message }

func (e *redactedError) Unwrap() error { return e.err }
