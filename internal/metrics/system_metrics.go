package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var (
	SystemCPUUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "system_cpu_usage_percent",
			Help: "Current CPU usage percentage",
		},
	)

	SystemMemoryUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_memory_usage_bytes",
			Help: "Current memory usage in bytes",
		},
		[]string{"type"}, // "used", "total"
	)

	GoMemstatsAllocBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "console_go_memstats_alloc_bytes",
			Help: "Number of bytes allocated and still in use",
		},
		[]string{"service"},
	)

	GoMemstatsSysBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "console_go_memstats_sys_bytes",
			Help: "Number of bytes obtained from system",
		},
		[]string{"service"},
	)

	GoGoroutines = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "console_go_goroutines",
			Help: "Number of goroutines that currently exist",
		},
		[]string{"service"},
	)
)

// UpdateSystemMetrics samples host and Go runtime metrics once
func UpdateSystemMetrics(serviceName string) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	GoMemstatsAllocBytes.WithLabelValues(serviceName).Set(float64(m.Alloc))
	GoMemstatsSysBytes.WithLabelValues(serviceName).Set(float64(m.Sys))
	GoGoroutines.WithLabelValues(serviceName).Set(float64(runtime.NumGoroutine()))

	percentages, err := cpu.Percent(0, false)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to sample CPU usage")
	} else if len(percentages) > 0 {
		SystemCPUUsage.Set(percentages[0])
	}

	vmem, err := mem.VirtualMemory()
	if err != nil {
		log.Debug().Err(err).Msg("Failed to sample memory usage")
	} else {
		SystemMemoryUsage.WithLabelValues("used").Set(float64(vmem.Used))
		SystemMemoryUsage.WithLabelValues("total").Set(float64(vmem.Total))
	}
}

// StartSystemMetricsCollection starts a goroutine to collect system metrics
func StartSystemMetricsCollection(serviceName string) {
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			UpdateSystemMetrics(serviceName)
		}
	}()
}
