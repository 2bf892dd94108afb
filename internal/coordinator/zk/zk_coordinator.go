package zk

import (
	"errors"
	"fmt"
	"time"

	coordinator "karmahub/internal/coordinator/iface"
	"karmahub/internal/logger"

	"github.com/go-zookeeper/zk"
)

type zkCoordinator struct {
	conn   *zk.Conn
	logger logger.Logger
}

// NewZKCoordinator creates a new ZooKeeper coordinator. Leadership nodes are
// ephemeral, so they vanish with the session of the node holding them.
func NewZKCoordinator(servers []string, sessionTimeout time.Duration, log logger.Logger) (coordinator.Coordinator, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to zookeeper: %w", err)
	}

	log.Info("connected to zookeeper",
		logger.Any("servers", servers),
	)

	return &zkCoordinator{
		conn:   conn,
		logger: log.With(logger.String("component", "zk_coordinator")),
	}, nil
}

func (c *zkCoordinator) AcquireLeadership(path, nodeID string) (bool, error) {
	if err := c.ensureParentPath(path); err != nil {
		return false, err
	}

	_, err := c.conn.Create(path, []byte(nodeID), zk.FlagEphemeral, zk.WorldACL(zk.PermAll))
	if err == nil {
		c.logger.Info("acquired leadership",
			logger.String("path", path),
			logger.String("node_id", nodeID),
		)
		return true, nil
	}
	if !errors.Is(err, zk.ErrNodeExists) {
		return false, fmt.Errorf("failed to create leader node: %w", err)
	}

	// the node exists: we keep leadership if it is ours
	data, _, err := c.conn.Get(path)
	if err != nil {
		if errors.Is(err, zk.ErrNoNode) {
			// released between create and get, try again on the next tick
			return false, nil
		}
		return false, fmt.Errorf("failed to read leader node: %w", err)
	}

	return string(data) == nodeID, nil
}

func (c *zkCoordinator) ReleaseLeadership(path, nodeID string) error {
	data, stat, err := c.conn.Get(path)
	if err != nil {
		if errors.Is(err, zk.ErrNoNode) {
			return nil
		}
		return fmt.Errorf("failed to read leader node: %w", err)
	}
	if string(data) != nodeID {
		return nil
	}

	if err := c.conn.Delete(path, stat.Version); err != nil && !errors.Is(err, zk.ErrNoNode) {
		return fmt.Errorf("failed to delete leader node: %w", err)
	}

	c.logger.Info("released leadership",
		logger.String("path", path),
		logger.String("node_id", nodeID),
	)
	return nil
}

func (c *zkCoordinator) GetNode(path string) ([]byte, error) {
	c.logger.Debug("getting zk node",
		logger.String("path", path),
	)

	data, _, err := c.conn.Get(path)
	if err != nil {
		if errors.Is(err, zk.ErrNoNode) {
			return nil, fmt.Errorf("%w: %s", coordinator.ErrNodeNotFound, path)
		}
		return nil, fmt.Errorf("failed to get node: %w", err)
	}

	return data, nil
}

func (c *zkCoordinator) Close() error {
	c.logger.Info("closing zookeeper connection")
	c.conn.Close()
	return nil
}

// ensureParentPath creates parent directories if they don't exist
func (c *zkCoordinator) ensureParentPath(path string) error {
	parentPath := parentOf(path)
	if parentPath == "/" {
		return nil
	}

	exists, _, err := c.conn.Exists(parentPath)
	if err != nil {
		return fmt.Errorf("failed to check parent path: %w", err)
	}

	if !exists {
		if err := c.ensureParentPath(parentPath); err != nil {
			return err
		}

		_, err := c.conn.Create(parentPath, []byte{}, 0, zk.WorldACL(zk.PermAll))
		if err != nil && !errors.Is(err, zk.ErrNodeExists) {
			return fmt.Errorf("failed to create parent path: %w", err)
		}
	}

	return nil
}

// parentOf returns the parent of a znode path, "/" for top level nodes
func parentOf(path string) string {
	for i := len(path) - 1; i > 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "/"
}
