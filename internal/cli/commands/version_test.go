package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, runVersion(context.Background(), "1.0.0", env.opts()...))
	assert.Contains(t, env.out.String(), "taskflow version 1.0.0")
	assert.Contains(t, env.out.String(), "online (taskflow-api 1.0.0)")
}

func TestVersion_ServerUnreachable(t *testing.T) {
	env := newTestEnv(t)
	opts := append(env.opts(), WithBaseURL("http://127.0.0.1:1/api/"))

	require.NoError(t, runVersion(context.Background(), "dev", opts...))
	assert.Contains(t, env.out.String(), "unreachable")
}
