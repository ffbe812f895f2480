package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sentio-labs/chatlens/internal/processor"
	"github.com/sentio-labs/chatlens/internal/registry"
)

func newTestServer(token string) (*Server, *registry.Registry) {
	reg := registry.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	proc := processor.New(nil, nil, reg, logger)
	return NewServer(8760, token, nil, proc, reg), reg
}

func analysisBody(t *testing.T, extra map[string]any) *bytes.Reader {
	t.Helper()
	body := map[string]any{
		"files": []map[string]string{{
			"name": "chat.txt",
			"content": strings.Join([]string{
				"10.01.2024, 10:00 - Ala: hej, jak tam?",
				"10.01.2024, 10:05 - Bartek: wszystko dobrze",
				"10.01.2024, 10:10 - Ala: super",
			}, "\n"),
		}},
	}
	for k, v := range extra {
		body[k] = v
	}
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer("")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer("")

	req := httptest.NewRequest("GET", "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["service"] != "chatlens" {
		t.Errorf("expected service chatlens, got %q", body["service"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer("")

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_") {
		t.Error("expected Prometheus exposition output")
	}
}

func TestCreateAnalysis(t *testing.T) {
	srv, _ := newTestServer("")

	req := httptest.NewRequest("POST", "/api/v1/analyses", analysisBody(t, map[string]any{
		"title": "Nasza rozmowa",
	}))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rep processor.Report
	if err := json.NewDecoder(w.Body).Decode(&rep); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if rep.Title != "Nasza rozmowa" {
		t.Errorf("title = %q", rep.Title)
	}
	if rep.Platform != "whatsapp" {
		t.Errorf("platform = %q", rep.Platform)
	}
	if len(rep.Slides) == 0 {
		t.Error("report carries no slides")
	}
	if rep.HealthScore.Label == "" {
		t.Error("health label missing")
	}
}

func TestCreateAnalysisRejectsBadRequests(t *testing.T) {
	srv, _ := newTestServer("")

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"no files", `{"title":"x"}`},
		{"empty files", `{"files":[]}`},
		{"file without content", `{"files":[{"name":"chat.txt"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/analyses", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateAnalysisUnparseableExport(t *testing.T) {
	srv, _ := newTestServer("")

	body := `{"files":[{"name":"export.json","content":"{\"foo\": 1}"}]}`
	req := httptest.NewRequest("POST", "/api/v1/analyses", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if resp["error"] == "" {
		t.Error("error message missing")
	}
}

func TestCreateAnalysisAsync(t *testing.T) {
	srv, reg := newTestServer("")

	req := httptest.NewRequest("POST", "/api/v1/analyses", analysisBody(t, map[string]any{
		"async": true,
	}))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	opID, err := uuid.Parse(resp["operation_id"])
	if err != nil {
		t.Fatalf("operation_id %q: %v", resp["operation_id"], err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("operation never finished")
		}
		if op, ok := reg.Get(opID); ok && op.Status != registry.StatusRunning {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	opReq := httptest.NewRequest("GET", "/api/v1/operations/"+opID.String(), nil)
	opW := httptest.NewRecorder()
	srv.router.ServeHTTP(opW, opReq)

	if opW.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", opW.Code)
	}
	var op registry.Operation
	if err := json.NewDecoder(opW.Body).Decode(&op); err != nil {
		t.Fatalf("failed to decode operation: %v", err)
	}
	if op.Status != registry.StatusCompleted {
		t.Errorf("status = %q, error = %q", op.Status, op.Error)
	}
	if op.ReportID == "" {
		t.Error("completed operation has no report id")
	}
}

func TestListOperations(t *testing.T) {
	srv, reg := newTestServer("")
	reg.Begin()
	reg.Begin()

	req := httptest.NewRequest("GET", "/api/v1/operations", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Operations []registry.Operation `json:"operations"`
		Count      int                  `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Operations) != 2 {
		t.Errorf("count = %d, operations = %d", resp.Count, len(resp.Operations))
	}
}

func TestGetOperationErrors(t *testing.T) {
	srv, _ := newTestServer("")

	req := httptest.NewRequest("GET", "/api/v1/operations/not-a-uuid", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/operations/"+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", w.Code)
	}
}

func TestGetAnalysisWithoutStore(t *testing.T) {
	srv, _ := newTestServer("")

	req := httptest.NewRequest("GET", "/api/v1/analyses/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	srv, _ := newTestServer("sekret")

	req := httptest.NewRequest("GET", "/api/v1/operations", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no header: expected 401, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/operations", nil)
	req.Header.Set("Authorization", "Bearer zly-token")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: expected 401, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/operations", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token: expected 200, got %d", w.Code)
	}

	// Health and status stay public.
	req = httptest.NewRequest("GET", "/health", nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health behind auth: got %d", w.Code)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv, _ := newTestServer("")

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
