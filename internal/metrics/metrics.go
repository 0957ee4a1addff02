// Package metrics exposes Prometheus counters for cache loading and
// write-back.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "shadercache"

	labelKind   = "kind"
	labelSource = "source"

	// SourceHost marks programs linked from a stored host binary.
	SourceHost = "host"
	// SourceGuest marks programs retranslated from guest code.
	SourceGuest = "guest"
)

// Metrics holds the counters of one cache instance. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	programsLoaded *prometheus.CounterVec
	programsFailed *prometheus.CounterVec
	hostFallbacks  prometheus.Counter
	rebuilds       prometheus.Counter
	programsSaved  prometheus.Counter
	writeErrors    prometheus.Counter
}

// New creates the counters and registers them on reg. A nil reg leaves them
// unregistered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		programsLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "load",
				Name:      "programs_total",
				Help:      "Programs restored from the disk cache. Broken down by program kind and binary source.",
			},
			[]string{labelKind, labelSource},
		),
		programsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "load",
				Name:      "errors_total",
				Help:      "Programs that could neither be linked from a host binary nor retranslated.",
			},
			[]string{labelKind},
		),
		hostFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "host_fallbacks_total",
			Help:      "Stored host binaries that failed to link and were retranslated.",
		}),
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "rebuilds_total",
			Help:      "Full rewrites of the shared and host cache files.",
		}),
		programsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "writer",
			Name:      "programs_total",
			Help:      "Programs written to the disk cache by the background writer.",
		}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "writer",
			Name:      "errors_total",
			Help:      "Programs dropped by the background writer after a storage error.",
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.programsLoaded, m.programsFailed, m.hostFallbacks,
			m.rebuilds, m.programsSaved, m.writeErrors,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func kindLabel(compute bool) string {
	if compute {
		return "compute"
	}
	return "graphics"
}

// ProgramLoaded counts a program restored from the cache.
func (m *Metrics) ProgramLoaded(compute bool, source string) {
	if m == nil {
		return
	}
	m.programsLoaded.WithLabelValues(kindLabel(compute), source).Inc()
}

// ProgramFailed counts a program that could not be restored.
func (m *Metrics) ProgramFailed(compute bool) {
	if m == nil {
		return
	}
	m.programsFailed.WithLabelValues(kindLabel(compute)).Inc()
}

// HostFallback counts a host binary that failed to link.
func (m *Metrics) HostFallback() {
	if m == nil {
		return
	}
	m.hostFallbacks.Inc()
}

// Rebuild counts a cache rebuild.
func (m *Metrics) Rebuild() {
	if m == nil {
		return
	}
	m.rebuilds.Inc()
}

// ProgramSaved counts a program written by the background writer.
func (m *Metrics) ProgramSaved() {
	if m == nil {
		return
	}
	m.programsSaved.Inc()
}

// WriteError counts a program dropped by the background writer.
func (m *Metrics) WriteError() {
	if m == nil {
		return
	}
	m.writeErrors.Inc()
}
