package coordinator

import "errors"

// ErrNodeNotFound is returned by GetNode for a missing path
var ErrNodeNotFound = errors.New("coordination node not found")

// Coordinator elects a single leader among the nodes running a background job
type Coordinator interface {
	// AcquireLeadership claims path for nodeID. It returns true when nodeID
	// holds the path after the call, false when another node holds it.
	AcquireLeadership(path, nodeID string) (bool, error)
	// ReleaseLeadership gives up path if nodeID holds it
	ReleaseLeadership(path, nodeID string) error
	GetNode(path string) ([]byte, error)
	Close() error
}
