package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/elastic/go-sysinfo"
	"github.com/jaypipes/ghw"

	"github.com/fairgate/scheduler/pkg/logging"
)

// hostPollInterval is how often the collector refreshes HostStats.
const hostPollInterval = 30 * time.Second

// HostStats is a point-in-time snapshot of host resource availability,
// published to the collector's broadcaster on each poll. The admin
// dashboard does not subscribe to it.
type HostStats struct {
	TotalRAMBytes uint64
	HasGPU        bool
	GPUVendors    []string
	PolledAt      time.Time
}

// Collector polls host RAM (via elastic/go-sysinfo, matching the teacher's
// memory.SystemMemoryInfo) and GPU presence (via jaypipes/ghw, matching the
// teacher's llama.cpp GPU-capability probe) on a fixed interval and
// publishes each sample.
type Collector struct {
	log    logging.Logger
	events *Broadcaster[HostStats]
}

// NewCollector constructs a Collector that publishes to events.
func NewCollector(log logging.Logger, events *Broadcaster[HostStats]) *Collector {
	return &Collector{log: log, events: events}
}

// Run polls on hostPollInterval until ctx is cancelled.
func (c *Collector) Run(ctx context.Context) error {
	ticker := time.NewTicker(hostPollInterval)
	defer ticker.Stop()

	c.poll()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.poll()
		}
	}
}

func (c *Collector) poll() {
	stats := HostStats{PolledAt: time.Now()}

	host, err := sysinfo.Host()
	if err != nil {
		c.log.WithError(err).Warn("unable to read host info")
	} else if mem, err := host.Memory(); err != nil {
		c.log.WithError(err).Warn("unable to read host memory")
	} else {
		stats.TotalRAMBytes = mem.Total
	}

	if gpu, err := ghw.GPU(); err != nil {
		c.log.WithError(err).Debug("unable to enumerate GPUs")
	} else {
		for _, card := range gpu.GraphicsCards {
			vendor := card.DeviceInfo.Vendor.Name
			if vendor == "" {
				continue
			}
			stats.HasGPU = true
			if !containsFold(stats.GPUVendors, vendor) {
				stats.GPUVendors = append(stats.GPUVendors, vendor)
			}
		}
	}

	c.events.Publish(stats)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
