// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/flavorfi/internal/platform/metrics"
)

/*
TestMetrics_Counts verifies that events land on the labelled series.
*/
func TestMetrics_Counts(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.SessionEvent(metrics.SessionLogin)
	m.SessionEvent(metrics.SessionExpired)
	m.SessionEvent(metrics.SessionExpired)
	m.CartOperation(metrics.CartAdd, metrics.OutcomeConflict)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionTransitions().WithLabelValues(metrics.SessionLogin)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionTransitions().WithLabelValues(metrics.SessionExpired)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartOperations().WithLabelValues(metrics.CartAdd, metrics.OutcomeConflict)))
}

/*
TestMetrics_NilIsNoop guarantees that managers may run without metrics.
*/
func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.SessionEvent(metrics.SessionLogout)
		m.CartOperation(metrics.CartClear, metrics.OutcomeApplied)
	})
}
