package local

import (
	"testing"

	coordinator "karmahub/internal/coordinator/iface"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLeadership(t *testing.T) {
	coord := NewLocalCoordinator()
	path := "/karmahub/reconciler/leader"

	_, err := coord.GetNode(path)
	assert.ErrorIs(t, err, coordinator.ErrNodeNotFound)

	acquired, err := coord.AcquireLeadership(path, "node-a")
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = coord.AcquireLeadership(path, "node-b")
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, coord.ReleaseLeadership(path, "node-b"))
	data, err := coord.GetNode(path)
	require.NoError(t, err)
	assert.Equal(t, "node-a", string(data))

	require.NoError(t, coord.ReleaseLeadership(path, "node-a"))
	acquired, err = coord.AcquireLeadership(path, "node-b")
	require.NoError(t, err)
	assert.True(t, acquired)

	assert.NoError(t, coord.Close())
}
