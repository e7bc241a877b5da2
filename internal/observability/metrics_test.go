package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMetricsHandler_ExposesIngestionMetrics(t *testing.T) {
	BatchRunsTotal.Inc()
	CityIngestTotal.WithLabelValues("success", "").Inc()
	CityIngestTotal.WithLabelValues("failure", "upstream_5xx").Inc()
	RainyRecordsTotal.Inc()
	StoreWritesTotal.WithLabelValues("success").Inc()
	WeatherAPICallsTotal.WithLabelValues("success").Inc()
	HTTPRequestsTotal.WithLabelValues("POST", "/run", "2xx").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := string(body)

	for _, metric := range []string{
		"batchRunsTotal",
		"cityIngestTotal",
		"rainyRecordsTotal",
		"storeWritesTotal",
		"weatherApiCallsTotal",
		"httpRequestsTotal",
	} {
		if !strings.Contains(out, metric) {
			t.Errorf("metrics output missing %s", metric)
		}
	}
}
