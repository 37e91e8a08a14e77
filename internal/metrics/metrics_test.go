package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

func testReport() model.Report {
	storage := model.SuccessSection(model.CollectorMetadata{ID: "storage", Title: "Storage"}, map[string]any{})
	storage.DurationMS = new(int64)
	*storage.DurationMS = 1500

	network := model.SuccessSection(model.CollectorMetadata{ID: "network", Title: "Network"}, model.NetworkSnapshot{
		Listeners: model.ListenerSnapshot{Counts: model.ListenerCounts{TCP: 3, UDP6: 1}},
	})
	docker := model.ErrorSection(model.CollectorMetadata{ID: "docker", Title: "Docker"}, "boom")

	return model.Report{
		Sections: []model.Section{storage, network, docker},
		HealthDigest: model.HealthDigest{
			Overall: model.SeverityCritical,
			Findings: []model.CriticalFinding{
				{SourceID: "docker", Severity: model.SeverityCritical, Message: "boom"},
			},
		},
	}
}

func TestObserve(t *testing.T) {
	e := New()
	e.Observe(testReport())

	assert.Equal(t, 0.0, testutil.ToFloat64(e.sectionStatus.WithLabelValues("storage")))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.sectionStatus.WithLabelValues("docker")))
	assert.Equal(t, 1.5, testutil.ToFloat64(e.sectionDuration.WithLabelValues("storage")))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.digestOverall))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.digestFindings))
	assert.Equal(t, 3.0, testutil.ToFloat64(e.listeners.WithLabelValues("tcp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.listeners.WithLabelValues("udp6")))
}

func TestObserveWithoutNetwork(t *testing.T) {
	r := testReport()
	r.Sections = r.Sections[:1]

	e := New()
	e.Observe(r)
	families, err := e.Gatherer().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		assert.NotEqual(t, "hostreport_listeners", mf.GetName())
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostreport.prom")
	require.NoError(t, WriteReport(path, testReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `hostreport_section_status{id="docker"} 2`)
	assert.Contains(t, out, `hostreport_section_duration_seconds{id="storage"} 1.5`)
	assert.Contains(t, out, "hostreport_digest_overall 2")
	assert.Contains(t, out, `hostreport_listeners{protocol="tcp"} 3`)
}
