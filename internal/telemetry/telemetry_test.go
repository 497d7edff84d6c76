package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Register(reg)

	m.FramesRendered.Inc()
	m.FramesRendered.Inc()

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)

	var found *dto.MetricFamily
	for _, mf := range metricFamilies {
		if mf.GetName() == "corecut_export_frames_rendered_total" {
			found = mf
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, float64(2), found.Metric[0].GetCounter().GetValue())
}
