package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tatler/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so counters are non-zero
	observability.ObserveHTTP("/restaurants", "GET", 200, 12*time.Millisecond)
	observability.ObserveImport("inserted", 5)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	if !strings.Contains(out, "tatler_http_requests_total") {
		t.Fatalf("expected tatler_http_requests_total in output")
	}
	if !strings.Contains(out, "tatler_import_documents_total") {
		t.Fatalf("expected tatler_import_documents_total in output")
	}
}
