package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/event-report/internal/ai"
	"github.com/kozaktomas/event-report/internal/config"
	"github.com/kozaktomas/event-report/internal/crop"
	"github.com/kozaktomas/event-report/internal/preview"
	"github.com/kozaktomas/event-report/internal/render"
	"github.com/kozaktomas/event-report/internal/report"
)

// testConfig creates a minimal config for testing
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AI:     config.AIConfig{Provider: "ollama"},
		Report: config.ReportConfig{OutputDir: t.TempDir(), MaxUploadMB: 10},
	}
}

// newTestHandler creates a report handler with an empty report.
func newTestHandler(t *testing.T) *ReportHandler {
	t.Helper()
	fonts, err := render.NewFonts()
	if err != nil {
		t.Fatalf("failed to load fonts: %v", err)
	}
	h := NewReportHandler(testConfig(t), report.NewStore(), preview.NewDecoder(), crop.NewEditor(), fonts)
	t.Cleanup(h.Close)
	return h
}

// fakeProvider is a content generation backend with a canned answer.
type fakeProvider struct {
	content *ai.GeneratedContent
	err     error
	calls   int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GenerateContent(context.Context, ai.ContentRequest) (*ai.GeneratedContent, error) {
	f.calls++
	return f.content, f.err
}

func (f *fakeProvider) GetUsage() *ai.Usage { return &ai.Usage{InputTokens: 10, OutputTokens: 20} }
func (f *fakeProvider) ResetUsage()         {}

// useProvider makes the handler generate content with p.
func useProvider(h *ReportHandler, p ai.Provider) {
	h.newProvider = func(context.Context, string) (ai.Provider, error) {
		return p, nil
	}
}

// testPNG encodes a solid image of the given size.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// fillReport puts a complete, previewable report into the handler's store.
func fillReport(t *testing.T, h *ReportHandler, photos int) {
	t.Helper()
	values := map[report.Field]string{
		report.FieldCollegeName:           "Govt. Degree College",
		report.FieldCollegeAddress:        "Main Road, Hyderabad",
		report.FieldEventTitle:            "Cloud Computing Workshop",
		report.FieldDate:                  "2024-03-05",
		report.FieldStartTime:             "10:00",
		report.FieldEndTime:               "13:00",
		report.FieldDepartment:            "Computer Science",
		report.FieldAcademicYear:          "2023-24",
		report.FieldVenue:                 "Seminar Hall",
		report.FieldParticipants:          "120",
		report.FieldResourcePersonName:    "Dr. Rao",
		report.FieldResourcePersonDetails: "Professor, JNTU",
		report.FieldCoordinatorName:       "Ms. Devi",
		report.FieldBriefInfo:             "A hands-on workshop.",
		report.FieldObjectives:            "Introduce cloud services.",
		report.FieldBenefits:              "Students deployed an app.",
		report.FieldExpenditure:           "5000",
	}
	var batch report.Batch
	for f, v := range values {
		batch = append(batch, report.SetField{Field: f, Value: v})
	}
	atts := make([]*report.Attachment, photos)
	for i := range atts {
		atts[i] = report.NewAttachment("photo.png", "", testPNG(t, 40, 30))
	}
	if photos > 0 {
		batch = append(batch, report.AddFiles{Slot: report.SlotPhotos, Files: atts})
	}
	if _, err := h.store.Dispatch(batch); err != nil {
		t.Fatalf("failed to fill report: %v", err)
	}
}

// multipartRequest builds a multipart request with files under one form field.
func multipartRequest(t *testing.T, method, path, field string, files map[string][]byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, data := range files {
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		part.Write(data)
	}
	writer.Close()

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
