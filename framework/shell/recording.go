package shell

import (
	"context"
	"strings"
	"sync"
)

// RecordingExecutor is an Executor that does not run anything. It records each command line and
// answers with a canned Result, chosen by the longest key of Responses that the command line
// starts with. Commands with no matching response exit with status 0 and no output.
type RecordingExecutor struct {
	Responses map[string]Result
	commands  []string
	lock      sync.Mutex
}

func (r *RecordingExecutor) Run(ctx context.Context, command string) (*Result, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrEmptyCommand
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.commands = append(r.commands, command)

	result := Result{}
	best := -1
	for prefix, canned := range r.Responses {
		if strings.HasPrefix(command, prefix) && len(prefix) > best {
			result, best = canned, len(prefix)
		}
	}
	result.Command = command
	return &result, nil
}

// Commands returns every command line run so far, in order.
func (r *RecordingExecutor) Commands() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.commands...)
}
