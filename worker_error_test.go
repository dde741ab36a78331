package handoff

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerError_NilPassesThrough(t *testing.T) {
	require.NoError(t, newWorkerError(nil, RoleProducer, 1))
}

func TestWorkerError_Format(t *testing.T) {
	err := newWorkerError(context.Canceled, RoleConsumer, 2)

	require.Equal(t, "consumer 2: context canceled", err.Error())
	require.Equal(t, "consumer 2: context canceled", fmt.Sprintf("%v", err))
	require.Equal(t, "consumer 2: context canceled", fmt.Sprintf("%s", err))
	require.Equal(t, `"consumer 2: context canceled"`, fmt.Sprintf("%q", err))
	require.Equal(t, "worker(role=consumer,id=2): context canceled", fmt.Sprintf("%+v", err))
}

func TestExtractWorker(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("outer: %w", newWorkerError(base, RoleProducer, 9))

	role, id, ok := ExtractWorker(err)
	require.True(t, ok)
	require.Equal(t, RoleProducer, role)
	require.Equal(t, 9, id)
	require.ErrorIs(t, err, base)

	_, _, ok = ExtractWorker(base)
	require.False(t, ok)
	_, _, ok = ExtractWorker(nil)
	require.False(t, ok)
}
