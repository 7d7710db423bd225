package parser

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerCapturesStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on posix echo")
	}
	r := execRunner{}
	out, _, err := r.Run(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := execRunner{}
	_, _, err := r.Run(context.Background(), "no-such-binary-on-any-path")
	require.Error(t, err)
}
