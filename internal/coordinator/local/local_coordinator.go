// Package local provides a single process coordinator for deployments without ZooKeeper
package local

import (
	"fmt"
	"sync"

	coordinator "karmahub/internal/coordinator/iface"
)

type localCoordinator struct {
	mu    sync.Mutex
	nodes map[string]string
}

// NewLocalCoordinator creates a coordinator whose leadership is held in memory
func NewLocalCoordinator() coordinator.Coordinator {
	return &localCoordinator{
		nodes: make(map[string]string),
	}
}

func (c *localCoordinator) AcquireLeadership(path, nodeID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	holder, ok := c.nodes[path]
	if !ok {
		c.nodes[path] = nodeID
		return true, nil
	}
	return holder == nodeID, nil
}

func (c *localCoordinator) ReleaseLeadership(path, nodeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nodes[path] == nodeID {
		delete(c.nodes, path)
	}
	return nil
}

func (c *localCoordinator) GetNode(path string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	holder, ok := c.nodes[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", coordinator.ErrNodeNotFound, path)
	}
	return []byte(holder), nil
}

func (c *localCoordinator) Close() error {
	return nil
}
