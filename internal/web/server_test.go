package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/event-report/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		AI:     config.AIConfig{Provider: "ollama"},
		Report: config.ReportConfig{OutputDir: t.TempDir(), MaxUploadMB: 10},
		Web:    config.WebConfig{Host: "127.0.0.1", Port: 8080},
	}
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(s.reportHandler.Close)
	return s
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{http.MethodGet, "/api/v1/config", "", http.StatusOK},
		{http.MethodGet, "/api/v1/report", "", http.StatusOK},
		{http.MethodPatch, "/api/v1/report/fields", `{"fields":{"venue":"Hall"}}`, http.StatusOK},
		{http.MethodPost, "/api/v1/report/undo", "", http.StatusOK},
		{http.MethodPost, "/api/v1/report/undo", "", http.StatusConflict},
		{http.MethodDelete, "/api/v1/report/files/photos/0", "", http.StatusNotFound},
		{http.MethodGet, "/api/v1/report/files/unknown/0/preview", "", http.StatusBadRequest},
		{http.MethodGet, "/api/v1/report/crop", "", http.StatusConflict},
		{http.MethodPost, "/api/v1/report/preview", "", http.StatusUnprocessableEntity},
		{http.MethodGet, "/api/v1/report/pages/1", "", http.StatusConflict},
		{http.MethodPost, "/api/v1/report/export", "", http.StatusConflict},
		{http.MethodGet, "/", "", http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			recorder := httptest.NewRecorder()
			s.Router().ServeHTTP(recorder, req)

			if recorder.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d\nBody: %s", tc.wantStatus, recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestServer_FieldsPersistAcrossRequests(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/report/fields", strings.NewReader(`{"fields":{"eventTitle":"Hackathon"}}`))
	s.Router().ServeHTTP(httptest.NewRecorder(), req)

	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/report", nil))

	var result struct {
		Data struct {
			EventTitle string `json:"eventTitle"`
		} `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if result.Data.EventTitle != "Hackathon" {
		t.Errorf("eventTitle = %q", result.Data.EventTitle)
	}
	if s.Store().State().Data.EventTitle != "Hackathon" {
		t.Error("store not updated")
	}
}

func TestServer_SecurityAndCORSHeaders(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)

	if recorder.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("expected CORS header for localhost")
	}
	if recorder.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
}
