// Package monitor samples host CPU, RAM and (when an NVIDIA card is
// present) GPU utilization for the stats stream.
package monitor

import (
	"context"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/slatedeck/slate/internal/server/domain"
)

type SystemMonitor struct {
	logger *slog.Logger

	gpuAvailable bool
}

// NewSystemMonitor primes the CPU counters (the first non-blocking sample
// always reads zero) and probes for nvidia-smi once; absence simply means
// the gpu field stays null.
func NewSystemMonitor(logger *slog.Logger) *SystemMonitor {
	_, _ = cpu.Percent(0, false)

	m := &SystemMonitor{logger: logger}
	if _, err := exec.LookPath("nvidia-smi"); err == nil {
		m.gpuAvailable = true
		logger.Info("gpu monitor initialized")
	} else {
		logger.Debug("gpu monitor unavailable", "error", err)
	}
	return m
}

// Stats reads one snapshot. Individual sampler failures degrade to zero (or
// null for gpu) rather than failing the whole stats tick.
func (m *SystemMonitor) Stats(ctx context.Context) domain.SystemStats {
	stats := domain.SystemStats{}

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		stats.CPU = round1(percents[0])
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.RAM = round1(vm.UsedPercent)
	}
	if m.gpuAvailable {
		if gpu, ok := m.sampleGPU(ctx); ok {
			stats.GPU = &gpu
		}
	}
	return stats
}

func (m *SystemMonitor) sampleGPU(ctx context.Context) (float64, bool) {
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=utilization.gpu", "--format=csv,noheader,nounits").Output()
	if err != nil {
		return 0, false
	}

	// Multi-GPU hosts report one line per card; the first is enough.
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	value, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
