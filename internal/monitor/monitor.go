// Package monitor samples host resource usage in the background while a
// benchmark runs. Sampling has an independent lifecycle from the benchmark
// itself and its history is consumed only for reporting.
package monitor

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// DefaultAccelRoot is the sysfs directory exposing accelerator counters.
const DefaultAccelRoot = "/sys/class/dxrt/dxrt0"

// Sample is one timestamped host-metric snapshot.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`

	CPUPercent float64 `json:"cpuPercent"`
	CPUCount   int     `json:"cpuCount"`

	MemoryUsedMB  float64 `json:"memoryUsedMb"`
	MemoryTotalMB float64 `json:"memoryTotalMb"`
	MemoryPercent float64 `json:"memoryPercent"`

	AccelUtilization   float64 `json:"accelUtilization"`
	AccelMemoryUsedMB  float64 `json:"accelMemoryUsedMb"`
	AccelMemoryTotalMB float64 `json:"accelMemoryTotalMb"`
}

// Stat is an avg/max/min aggregate over the sampled history.
type Stat struct {
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
	Min float64 `json:"min"`
}

// Summary aggregates the sampling history for reporting.
type Summary struct {
	CPU     Stat `json:"cpu"`
	Memory  Stat `json:"memory"`
	Samples int  `json:"samples"`

	// Accelerator stats are present only when the sysfs interface exists.
	AccelUtilization *Stat `json:"accelUtilization,omitempty"`
	AccelMemoryMB    *Stat `json:"accelMemoryMb,omitempty"`
}

// Monitor periodically samples CPU, memory, and (when available)
// accelerator usage into an append-only history.
type Monitor struct {
	interval  time.Duration
	accelRoot string
	accelOK   bool
	logf      func(format string, args ...any)

	mu      sync.Mutex
	history []Sample
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithAccelRoot overrides the accelerator sysfs directory.
func WithAccelRoot(root string) Option {
	return func(m *Monitor) { m.accelRoot = root }
}

// WithLogf sets the sink for sampling warnings.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(m *Monitor) { m.logf = logf }
}

// New creates a monitor with the given sampling interval. Accelerator
// availability is probed once at construction.
func New(interval time.Duration, options ...Option) *Monitor {
	if interval <= 0 {
		interval = time.Second
	}
	m := &Monitor{
		interval:  interval,
		accelRoot: DefaultAccelRoot,
		logf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},
	}
	for _, option := range options {
		option(m)
	}
	m.accelOK = m.probeAccel()
	return m
}

// AccelAvailable reports whether accelerator counters were detected.
func (m *Monitor) AccelAvailable() bool {
	return m.accelOK
}

func (m *Monitor) probeAccel() bool {
	for _, name := range []string{"utilization", "memory_used", "memory_total"} {
		if _, err := os.Stat(filepath.Join(m.accelRoot, name)); err != nil {
			return false
		}
	}
	return true
}

// Start begins background sampling. Calling Start on a running monitor is a
// no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})

	m.wg.Add(1)
	go m.loop(m.stopCh)
}

// Stop ends background sampling and waits for the loop to exit. Stop is
// idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *Monitor) loop(stopCh chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			sample, err := m.collect()
			if err != nil {
				// Sampling failures never stop the loop.
				m.logf("[monitor] sample skipped: %v", err)
				continue
			}
			m.mu.Lock()
			m.history = append(m.history, sample)
			m.mu.Unlock()
		}
	}
}

func (m *Monitor) collect() (Sample, error) {
	sample := Sample{Timestamp: time.Now()}

	// Interval 0 measures usage since the previous call, so the ticker
	// period defines the effective sampling window.
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return sample, fmt.Errorf("cpu: %w", err)
	}
	if len(percents) > 0 {
		sample.CPUPercent = percents[0]
	}
	if count, err := cpu.Counts(true); err == nil {
		sample.CPUCount = count
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return sample, fmt.Errorf("memory: %w", err)
	}
	sample.MemoryUsedMB = float64(vm.Used) / (1024 * 1024)
	sample.MemoryTotalMB = float64(vm.Total) / (1024 * 1024)
	sample.MemoryPercent = vm.UsedPercent

	if m.accelOK {
		util, usedMB, totalMB, err := m.readAccel()
		if err != nil {
			m.logf("[monitor] accelerator read failed: %v", err)
		} else {
			sample.AccelUtilization = util
			sample.AccelMemoryUsedMB = usedMB
			sample.AccelMemoryTotalMB = totalMB
		}
	}
	return sample, nil
}

func (m *Monitor) readAccel() (util, usedMB, totalMB float64, err error) {
	util, err = m.readAccelValue("utilization", 1)
	if err != nil {
		return 0, 0, 0, err
	}
	usedMB, err = m.readAccelValue("memory_used", 1024*1024)
	if err != nil {
		return 0, 0, 0, err
	}
	totalMB, err = m.readAccelValue("memory_total", 1024*1024)
	if err != nil {
		return 0, 0, 0, err
	}
	return util, usedMB, totalMB, nil
}

func (m *Monitor) readAccelValue(name string, divisor float64) (float64, error) {
	raw, err := os.ReadFile(filepath.Join(m.accelRoot, name))
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value / divisor, nil
}

// Timeline returns a copy of the sampled history in order.
func (m *Monitor) Timeline() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sample, len(m.history))
	copy(out, m.history)
	return out
}

// Len returns the number of collected samples.
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}

// Reset clears the sampled history.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
}

// Summarize aggregates the sampled history. An empty history yields a
// zero-valued summary.
func (m *Monitor) Summarize() Summary {
	history := m.Timeline()
	summary := Summary{Samples: len(history)}
	if len(history) == 0 {
		return summary
	}

	summary.CPU = aggregate(history, func(s Sample) float64 { return s.CPUPercent })
	summary.Memory = aggregate(history, func(s Sample) float64 { return s.MemoryPercent })

	if m.accelOK {
		util := aggregate(history, func(s Sample) float64 { return s.AccelUtilization })
		memMB := aggregate(history, func(s Sample) float64 { return s.AccelMemoryUsedMB })
		summary.AccelUtilization = &util
		summary.AccelMemoryMB = &memMB
	}
	return summary
}

func aggregate(history []Sample, value func(Sample) float64) Stat {
	stat := Stat{Min: math.MaxFloat64}
	sum := 0.0
	for _, s := range history {
		v := value(s)
		sum += v
		if v > stat.Max {
			stat.Max = v
		}
		if v < stat.Min {
			stat.Min = v
		}
	}
	stat.Avg = sum / float64(len(history))
	return stat
}
