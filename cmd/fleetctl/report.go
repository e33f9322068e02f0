package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/fleetfeast/internal/writer"
)

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type opReport struct {
	Calls     int64            `json:"calls"`
	Completed int64            `json:"completed"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Outcomes  map[string]int64 `json:"outcomes"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type volumeReport struct {
	StartedAt       time.Time           `json:"started_at"`
	DurationSeconds float64             `json:"duration_seconds"`
	Storage         string              `json:"storage"`
	Plates          int64               `json:"plates"`
	Orders          int64               `json:"orders"`
	Details         int64               `json:"details"`
	WritesPerSecond float64             `json:"writes_per_second"`
	Operations      map[string]opReport `json:"operations"`
}

type opStats struct {
	calls     int64
	completed int64
	outcomes  map[string]int64
	latencies []float64
}

// collector накапливает исходы записей по операциям; безопасен для конкурентного использования.
type collector struct {
	mu  sync.Mutex
	ops map[string]*opStats
}

func newCollector() *collector {
	return &collector{ops: make(map[string]*opStats)}
}

func (c *collector) record(op string, latency time.Duration, outcome writer.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.ops[op]
	if !ok {
		stats = &opStats{outcomes: make(map[string]int64)}
		c.ops[op] = stats
	}

	stats.calls++
	if outcome.OK() {
		stats.completed++
	}
	stats.outcomes[outcome.Status.String()]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) completed(op string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if stats, ok := c.ops[op]; ok {
		return stats.completed
	}
	return 0
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) volumeReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := volumeReport{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Operations:      make(map[string]opReport, len(c.ops)),
	}

	var writes int64
	for name, stats := range c.ops {
		outcomes := make(map[string]int64, len(stats.outcomes))
		for status, count := range stats.outcomes {
			outcomes[status] = count
		}
		failed := stats.calls - stats.completed
		result.Operations[name] = opReport{
			Calls:     stats.calls,
			Completed: stats.completed,
			Failed:    failed,
			ErrorRate: ratio(failed, stats.calls),
			Outcomes:  outcomes,
			LatencyMs: buildLatencySummary(stats.latencies),
		}
		writes += stats.calls
	}
	if duration > 0 {
		result.WritesPerSecond = float64(writes) / duration.Seconds()
	}

	return result
}

func printVolumeReport(w io.Writer, result volumeReport) error {
	var b strings.Builder
	b.WriteString("Volume run summary\n")
	fmt.Fprintf(&b, "storage=%s plates=%d orders=%d details=%d\n", result.Storage, result.Plates, result.Orders, result.Details)
	fmt.Fprintf(&b, "duration=%.2fs writes_per_second=%.2f\n", result.DurationSeconds, result.WritesPerSecond)

	names := make([]string, 0, len(result.Operations))
	for name := range result.Operations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		stats := result.Operations[name]
		fmt.Fprintf(&b, "%s: calls=%d completed=%d failed=%d error_rate=%.4f p50=%.2fms p95=%.2fms p99=%.2fms\n",
			name,
			stats.Calls,
			stats.Completed,
			stats.Failed,
			stats.ErrorRate,
			stats.LatencyMs.P50,
			stats.LatencyMs.P95,
			stats.LatencyMs.P99,
		)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSONReport(path string, result volumeReport) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}

	// #nosec G304 -- path is an explicit CLI output parameter for local reports.
	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

// percentile интерполирует линейно между соседними рангами.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
