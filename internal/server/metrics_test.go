package server

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequestMetric(t *testing.T) {
	httpRequestsTotal.Reset()
	httpRequestDuration.Reset()

	recordHTTPRequestMetric("GET /api/v1/catalog", 200, 0.01)
	recordHTTPRequestMetric("GET /api/v1/catalog", 200, 0.02)
	recordHTTPRequestMetric("GET /api/v1/catalog", 500, 0.5)

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET /api/v1/catalog", "200")); got != 2 {
		t.Errorf("requests_total{200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET /api/v1/catalog", "500")); got != 1 {
		t.Errorf("requests_total{500} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(httpRequestDuration); got != 1 {
		t.Errorf("request_duration_seconds series = %d, want 1", got)
	}
}

func TestRecordFormMetrics(t *testing.T) {
	signupsTotal.Reset()
	contactMessagesTotal.Reset()

	recordSignupMetric(resultAccepted)
	recordSignupMetric(resultInvalid)
	recordSignupMetric(resultInvalid)
	recordContactMetric(resultAccepted)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"signup accepted", testutil.ToFloat64(signupsTotal.WithLabelValues(resultAccepted)), 1},
		{"signup invalid", testutil.ToFloat64(signupsTotal.WithLabelValues(resultInvalid)), 2},
		{"signup duplicate", testutil.ToFloat64(signupsTotal.WithLabelValues(resultDuplicate)), 0},
		{"contact accepted", testutil.ToFloat64(contactMessagesTotal.WithLabelValues(resultAccepted)), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestRecordCarouselCommandMetric(t *testing.T) {
	carouselCommandsTotal.Reset()

	recordCarouselCommandMetric("next", "moved")
	recordCarouselCommandMetric("next", "ignored")
	recordCarouselCommandMetric("next", "moved")

	if got := testutil.ToFloat64(carouselCommandsTotal.WithLabelValues("next", "moved")); got != 2 {
		t.Errorf("commands_total{next,moved} = %v, want 2", got)
	}
}

func TestRegistryGathers(t *testing.T) {
	recordSignupMetric(resultAccepted)

	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "midnightbrew_signup_applications_total" {
			found = true
		}
	}
	if !found {
		t.Error("signup metric not registered")
	}
}
