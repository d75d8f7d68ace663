package metrics

import (
	"os"
	"sync/atomic"
	"time"

	"autotagger/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current library statistics
type Stats struct {
	Folder string
	DBPath string
	Photos int
	Tags   int
	Links  int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
	done          chan struct{}
	started       atomic.Bool
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	c.started.Store(true)
	go c.collectLoop()
}

// Stop stops the metrics collection and waits for the loop to exit
func (c *Collector) Stop() {
	close(c.stopChan)
	if c.started.Load() {
		<-c.done
	}
}

func (c *Collector) collectLoop() {
	defer close(c.done)

	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	LibraryPhotosTotal.Set(float64(stats.Photos))
	LibraryTagsTotal.Set(float64(stats.Tags))
	LibraryLinksTotal.Set(float64(stats.Links))

	if stats.DBPath != "" {
		if info, err := os.Stat(stats.DBPath); err == nil {
			DBSizeBytes.Set(float64(info.Size()))
		}
	}

	logging.Debug("Metrics collected: folder=%q, photos=%d, tags=%d, links=%d",
		stats.Folder, stats.Photos, stats.Tags, stats.Links)
}
