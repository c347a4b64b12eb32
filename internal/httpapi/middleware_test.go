package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/service"
)

type statusSpy struct{ codes []int }

func (s *statusSpy) RecordHTTPStatus(code int) { s.codes = append(s.codes, code) }

func TestPanicIsLoggedAndCounted(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	spy := &statusSpy{}

	srv := NewServer(Dependencies{
		Logger:  logger,
		Addr:    ":0",
		Kiosks:  service.NewKioskRegistry(service.Deps{}, service.KioskConfig{}),
		Metrics: spy,
	})
	t.Cleanup(func() { srv.limiter.Stop() })
	srv.router.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if len(spy.codes) != 1 || spy.codes[0] != http.StatusInternalServerError {
		t.Errorf("expected one recorded 500, got %v", spy.codes)
	}

	var sawRequest bool
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		if entry["msg"] == "http_request" && entry["status"] == float64(http.StatusInternalServerError) {
			sawRequest = true
		}
	}
	if !sawRequest {
		t.Errorf("expected an http_request log line with status 500, got:\n%s", buf.String())
	}
}
