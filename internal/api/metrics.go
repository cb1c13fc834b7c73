package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/gray-logic-onewire/internal/discovery"
	"github.com/nerrad567/gray-logic-onewire/internal/readings"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string                 `json:"timestamp"`
	Version       string                 `json:"version"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Runtime       RuntimeMetrics         `json:"runtime"`
	Scanner       discovery.ScannerStats `json:"scanner"`
	Poller        *readings.PollerStats  `json:"poller,omitempty"`
	MQTT          *MQTTMetrics           `json:"mqtt,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Connected     bool `json:"connected"`
	Subscriptions int  `json:"subscriptions"`
}

// handleMetrics returns scanner, poller and runtime statistics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Scanner: s.scanner.Stats(),
	}

	if s.poller != nil {
		stats := s.poller.Stats()
		metrics.Poller = &stats
	}

	if s.mqtt != nil {
		metrics.MQTT = &MQTTMetrics{
			Connected:     s.mqtt.IsConnected(),
			Subscriptions: s.mqtt.SubscriptionCount(),
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
