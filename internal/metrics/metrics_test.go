// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestRecordAPIRequest(t *testing.T) {
	before := counterValue(t, APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200"))
	RecordAPIRequest("GET", "/api/v1/recommendations", "200", 25*time.Millisecond)
	after := counterValue(t, APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200"))

	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := gaugeValue(t, APIActiveRequests)

	TrackActiveRequest(true)
	if got := gaugeValue(t, APIActiveRequests); got != base+1 {
		t.Errorf("gauge after inc = %v, want %v", got, base+1)
	}

	TrackActiveRequest(false)
	if got := gaugeValue(t, APIActiveRequests); got != base {
		t.Errorf("gauge after dec = %v, want %v", got, base)
	}
}

func TestResolverOutcomeLabels(t *testing.T) {
	before := counterValue(t, ResolverOutcomes.WithLabelValues("no_match"))
	ResolverOutcomes.WithLabelValues("no_match").Inc()
	after := counterValue(t, ResolverOutcomes.WithLabelValues("no_match"))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}
