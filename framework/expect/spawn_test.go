package expect

import (
	"bytes"
	"context"
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnShell(t *testing.T, script string, opts ...Option) *Process {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh on this host")
	}
	p, err := Spawn(context.Background(), "/bin/sh", []string{"-c", script}, opts...)
	var launchErr *LaunchError
	if errors.As(err, &launchErr) {
		t.Skipf("cannot allocate a pseudo-terminal here: %s", err)
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestSpawnedProcessDialogue(t *testing.T) {
	var transcript bytes.Buffer
	p := spawnShell(t, `echo "Continue with the system conversion? [y/n]"; read answer; echo "answer was $answer"; exit 3`,
		WithTranscript(&transcript))

	require.NoError(t, p.ExpectExact(longTimeout, "Continue with the system conversion"))
	require.NoError(t, p.SendLine("y"))
	require.NoError(t, p.ExpectExact(longTimeout, "answer was y"))

	status, err := p.Wait(longTimeout)
	require.NoError(t, err)
	assert.Equal(t, 3, status)
	assert.Contains(t, transcript.String(), "answer was y")
}

func TestSpawnedProcessSeesTerminal(t *testing.T) {
	p := spawnShell(t, `if [ -t 1 ]; then echo interactive; else echo piped; fi`)
	index, err := p.Expect(longTimeout, Exact("piped"), Exact("interactive"))
	require.NoError(t, err)
	assert.Equal(t, 1, index)
}

func TestSpawnedProcessEnvironment(t *testing.T) {
	p := spawnShell(t, `echo "release=$SYSTEM_RELEASE_ENV"`, WithEnv("SYSTEM_RELEASE_ENV=centos-7"))
	require.NoError(t, p.ExpectExact(longTimeout, "release=centos-7"))
}

func TestSignalExitStatus(t *testing.T) {
	p := spawnShell(t, `kill -TERM $$`)
	status, err := p.Wait(longTimeout)
	require.NoError(t, err)
	assert.Equal(t, 128+int(syscall.SIGTERM), status)
}

func TestCloseKillsProcessGroup(t *testing.T) {
	p := spawnShell(t, `sleep 60 & echo started; wait`, WithKillGrace(shortTimeout))
	require.NoError(t, p.ExpectExact(longTimeout, "started"))

	require.NoError(t, p.Close())
	status, err := p.ExitStatus()
	require.NoError(t, err)
	assert.Equal(t, 128+int(syscall.SIGTERM), status)
}

func TestSpawnMissingExecutable(t *testing.T) {
	_, err := Spawn(context.Background(), "/nonexistent/convert2rhel", nil)
	require.Error(t, err)
	var launchErr *LaunchError
	require.True(t, errors.As(err, &launchErr))
	assert.Equal(t, "/nonexistent/convert2rhel", launchErr.Command)
}

func TestSpawnRejectsBadOptions(t *testing.T) {
	_, err := Spawn(context.Background(), "/bin/sh", nil, WithWindowSize(0, 80))
	assert.Error(t, err)
	_, err = Spawn(context.Background(), "/bin/sh", nil, WithKillGrace(0))
	assert.Error(t, err)
}
