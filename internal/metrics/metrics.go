// Package metrics exports a report as Prometheus gauges for the node
// exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

type Exporter struct {
	registry *prometheus.Registry

	sectionStatus   *prometheus.GaugeVec
	sectionDuration *prometheus.GaugeVec
	digestOverall   prometheus.Gauge
	digestFindings  prometheus.Gauge
	listeners       *prometheus.GaugeVec
}

func New() *Exporter {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Exporter{
		registry: reg,
		sectionStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hostreport_section_status",
			Help: "Section outcome (0 success, 1 degraded, 2 error)",
		}, []string{"id"}),
		sectionDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hostreport_section_duration_seconds",
			Help: "Time spent collecting a section",
		}, []string{"id"}),
		digestOverall: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hostreport_digest_overall",
			Help: "Overall health severity (0 info, 1 warning, 2 critical)",
		}),
		digestFindings: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hostreport_digest_findings",
			Help: "Number of health digest findings",
		}),
		listeners: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hostreport_listeners",
			Help: "Listening sockets per protocol",
		}, []string{"protocol"}),
	}
}

func statusValue(s model.SectionStatus) float64 {
	switch s {
	case model.StatusSuccess:
		return 0
	case model.StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Observe replaces the gauges with the values from r.
func (e *Exporter) Observe(r model.Report) {
	e.sectionStatus.Reset()
	e.sectionDuration.Reset()
	e.listeners.Reset()

	for _, s := range r.Sections {
		e.sectionStatus.WithLabelValues(s.ID).Set(statusValue(s.Status))
		if s.DurationMS != nil {
			e.sectionDuration.WithLabelValues(s.ID).Set(float64(*s.DurationMS) / 1000)
		}
	}
	e.digestOverall.Set(float64(r.HealthDigest.Overall))
	e.digestFindings.Set(float64(len(r.HealthDigest.Findings)))

	s, ok := r.Section("network")
	if !ok || s.Status == model.StatusError {
		return
	}
	var snap model.NetworkSnapshot
	if err := s.DecodeBody(&snap); err != nil {
		return
	}
	c := snap.Listeners.Counts
	e.listeners.WithLabelValues("tcp").Set(float64(c.TCP))
	e.listeners.WithLabelValues("tcp6").Set(float64(c.TCP6))
	e.listeners.WithLabelValues("udp").Set(float64(c.UDP))
	e.listeners.WithLabelValues("udp6").Set(float64(c.UDP6))
}

func (e *Exporter) Gatherer() prometheus.Gatherer {
	return e.registry
}

// WriteTextfile writes the gauges atomically to path.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// WriteReport observes r and writes it to path in one step.
func WriteReport(path string, r model.Report) error {
	e := New()
	e.Observe(r)
	return e.WriteTextfile(path)
}
