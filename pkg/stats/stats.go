package stats

import (
	"bufio"
	"context"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	BYTE = 1 << (10 * iota)
	KILOBYTE
	MEGABYTE
	GIGABYTE
)

var (
	// SyncAttempts counts the account syncs that reached the server.
	SyncAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "abcd",
		Subsystem: "account",
		Name:      "sync_total",
		Help:      "Number of successful account repository pulls.",
	})
	// SyncDirty counts the syncs that changed the local working copy.
	SyncDirty = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "abcd",
		Subsystem: "account",
		Name:      "sync_dirty_total",
		Help:      "Number of account pulls that changed the working copy.",
	})
	// SyncFailures counts the failed account syncs.
	SyncFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "abcd",
		Subsystem: "account",
		Name:      "sync_failures_total",
		Help:      "Number of failed account repository pulls.",
	})
	// FeeSamples counts the fee estimates submitted, per block target.
	FeeSamples = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "abcd",
		Subsystem: "fees",
		Name:      "samples_total",
		Help:      "Number of fee estimate samples submitted.",
	}, []string{"target"})
	// FeeCacheWrites counts the writes of the estimated fee table.
	FeeCacheWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "abcd",
		Subsystem: "fees",
		Name:      "cache_writes_total",
		Help:      "Number of times the estimated fee table was persisted.",
	})
	// GeneralRefreshes counts the general info documents fetched from the
	// server.
	GeneralRefreshes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "abcd",
		Subsystem: "general",
		Name:      "refresh_total",
		Help:      "Number of general info documents fetched from the server.",
	})
)

func init() {
	prometheus.MustRegister(
		SyncAttempts, SyncDirty, SyncFailures,
		FeeSamples, FeeCacheWrites, GeneralRefreshes,
	)
}

// EnableMemoryStatistics enables go routine that periodically prints memory
// usage of the go process. Once ctx is done, the collected metrics are dumped
// to dumpPath.
func EnableMemoryStatistics(
	ctx context.Context, interval time.Duration, dumpPath string,
) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PrintMemoryStatistics()
				PrintNumOfRoutines()
			case <-ctx.Done():
				if err := DumpPrometheusDefaults(dumpPath); err != nil {
					log.WithError(err).Warn("failed to dump stats")
				}
				return
			}
		}
	}()
}

// toGigabytes returns given memory in bytes to gigabytes.
func toGigabytes(bytes uint64) float64 {
	return float64(bytes) / GIGABYTE
}

// PrintMemoryStatistics prints memory statistics using go runtime library.
func PrintMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.Infof(
		"Total allocated: %.3fGB, Heap allocated: %.3fGB, "+
			"Allocated objects count: %v, Freed objects count: %v",
		toGigabytes(memStats.TotalAlloc),
		toGigabytes(memStats.HeapAlloc),
		memStats.Mallocs,
		memStats.Frees,
	)
}

// DumpPrometheusDefaults appends the gathered Prometheus metrics to the
// given file.
func DumpPrometheusDefaults(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	metricFamily, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, v := range metricFamily {
		if _, err := writer.WriteString(v.String() + "\n"); err != nil {
			return err
		}
	}

	return writer.Flush()
}

// PrintNumOfRoutines prints number of go routines currently running
func PrintNumOfRoutines() {
	log.Infof("Num of go routines: %v", runtime.NumGoroutine())
}
