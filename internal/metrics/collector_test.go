package metrics

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// =============================================================================
// Mock StatsProvider
// =============================================================================

type mockStatsProvider struct {
	mu    sync.Mutex
	stats Stats
	calls int
}

func (m *mockStatsProvider) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.stats
}

func (m *mockStatsProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// =============================================================================
// Collector Tests
// =============================================================================

func TestNewCollector(t *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{Folder: "/photos", Photos: 100, Tags: 8, Links: 300},
	}

	collector := NewCollector(provider, 5*time.Second)

	if collector == nil {
		t.Fatal("NewCollector returned nil")
	}

	if collector.statsProvider != provider {
		t.Error("statsProvider not set correctly")
	}

	if collector.interval != 5*time.Second {
		t.Errorf("interval = %v, want %v", collector.interval, 5*time.Second)
	}

	if collector.stopChan == nil {
		t.Error("stopChan not initialized")
	}
}

func TestCollectorStartStop(t *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{Photos: 50},
	}

	collector := NewCollector(provider, 20*time.Millisecond)
	collector.Start()
	time.Sleep(70 * time.Millisecond)
	collector.Stop()

	if provider.callCount() < 2 {
		t.Errorf("Expected at least 2 collection cycles, got %d", provider.callCount())
	}
}

func TestCollectWithNilProvider(t *testing.T) {
	collector := NewCollector(nil, 1*time.Second)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("collect() panicked with nil provider: %v", r)
		}
	}()

	collector.collect()
}

func TestCollectUpdatesLibraryGauges(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "photo_library.db")
	if err := os.WriteFile(dbPath, make([]byte, 4096), 0o644); err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	provider := &mockStatsProvider{
		stats: Stats{Folder: tempDir, DBPath: dbPath, Photos: 12, Tags: 4, Links: 30},
	}

	collector := NewCollector(provider, time.Second)
	collector.collect()

	if got := testutil.ToFloat64(LibraryPhotosTotal); got != 12 {
		t.Errorf("Expected 12 photos, got %v", got)
	}
	if got := testutil.ToFloat64(LibraryTagsTotal); got != 4 {
		t.Errorf("Expected 4 tags, got %v", got)
	}
	if got := testutil.ToFloat64(LibraryLinksTotal); got != 30 {
		t.Errorf("Expected 30 links, got %v", got)
	}
	if got := testutil.ToFloat64(DBSizeBytes); got != 4096 {
		t.Errorf("Expected db size 4096, got %v", got)
	}
}

func TestCollectWithMissingDatabase(t *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{DBPath: "/nonexistent/path/photo_library.db"},
	}

	collector := NewCollector(provider, time.Second)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("collect() panicked with missing database: %v", r)
		}
	}()

	collector.collect()
}

func TestCollectorStopBeforeStart(t *testing.T) {
	collector := NewCollector(&mockStatsProvider{}, time.Second)

	done := make(chan struct{})
	go func() {
		collector.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() before Start() blocked")
	}
}

func TestCollectorRapidStartStop(_ *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{Photos: 10},
	}

	for i := 0; i < 5; i++ {
		collector := NewCollector(provider, 10*time.Millisecond)
		collector.Start()
		time.Sleep(5 * time.Millisecond)
		collector.Stop()
	}
}

func TestStatsProviderInterface(_ *testing.T) {
	var _ StatsProvider = (*mockStatsProvider)(nil)
}
