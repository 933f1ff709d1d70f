package httpapi

import (
	"testing"

	"github.com/fairgate/scheduler/pkg/backend"
)

func TestDispatcherCacheReusesPerPort(t *testing.T) {
	var built []int32
	cache := newDispatcherCache(func(port int32) *backend.Dispatcher {
		built = append(built, port)
		return &backend.Dispatcher{}
	})

	first := cache.get(8081)
	second := cache.get(8081)
	third := cache.get(8082)

	if first != second {
		t.Fatalf("expected the same dispatcher instance for repeated lookups of the same port")
	}
	if first == third {
		t.Fatalf("expected a distinct dispatcher instance for a different port")
	}
	if len(built) != 2 {
		t.Fatalf("expected factory invoked once per distinct port, got %d calls", len(built))
	}
}
