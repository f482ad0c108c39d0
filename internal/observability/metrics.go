package observability

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	startedAt    time.Time
	requestCount map[string]int64
	errorCount   map[string]int64
	latency      map[string]time.Duration
}

// RouteStats is the per method, path and status view returned by Snapshot.
type RouteStats struct {
	Method       string  `json:"method"`
	Path         string  `json:"path"`
	Status       int     `json:"status"`
	Count        int64   `json:"count"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// ErrorStats counts error responses by code.
type ErrorStats struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Code   string `json:"code"`
	Count  int64  `json:"count"`
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	UptimeSeconds int64        `json:"uptime_seconds"`
	Requests      []RouteStats `json:"requests"`
	Errors        []ErrorStats `json:"errors"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		startedAt:    time.Now(),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		latency:      make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, strconv.Itoa(status))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.latency[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := pathKey(path, method, code)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the counters, sorted by key.
func (m *Metrics) Snapshot() Snapshot {
	snapshot := Snapshot{Requests: []RouteStats{}, Errors: []ErrorStats{}}
	if m == nil {
		return snapshot
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot.UptimeSeconds = int64(time.Since(m.startedAt).Seconds())
	for _, key := range sortedKeys(m.requestCount) {
		path, method, last := splitKey(key)
		status, _ := strconv.Atoi(last)
		count := m.requestCount[key]
		snapshot.Requests = append(snapshot.Requests, RouteStats{
			Method:       method,
			Path:         path,
			Status:       status,
			Count:        count,
			AvgLatencyMS: float64(m.latency[key].Microseconds()) / float64(count) / 1000,
		})
	}
	for _, key := range sortedKeys(m.errorCount) {
		path, method, code := splitKey(key)
		snapshot.Errors = append(snapshot.Errors, ErrorStats{
			Method: method,
			Path:   path,
			Code:   code,
			Count:  m.errorCount[key],
		})
	}
	return snapshot
}

func pathKey(path, method, last string) string {
	return path + "|" + method + "|" + last
}

func splitKey(key string) (path, method, last string) {
	parts := strings.SplitN(key, "|", 3)
	if len(parts) != 3 {
		return key, "", ""
	}
	return parts[0], parts[1], parts[2]
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
