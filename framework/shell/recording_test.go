package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingExecutorPicksLongestPrefix(t *testing.T) {
	r := &RecordingExecutor{Responses: map[string]Result{
		"yum":            {ExitCode: 1},
		"yum clean all":  {ExitCode: 0, Output: "cleaned"},
		"grubby --info ": {Output: "kernel=x"},
	}}

	res, err := r.Run(context.Background(), "yum clean all --quiet")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "cleaned", res.Output)

	res, err = r.Run(context.Background(), "yum install -y foo")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)

	res, err = r.Run(context.Background(), "uname -r")
	require.NoError(t, err)
	assert.True(t, res.Succeeded())

	assert.Equal(t, []string{"yum clean all --quiet", "yum install -y foo", "uname -r"}, r.Commands())
}

func TestRecordingExecutorHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&RecordingExecutor{}).Run(ctx, "true")
	assert.Error(t, err)
	assert.Empty(t, (&RecordingExecutor{}).Commands())
}
