package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/pipeline"
)

const tree = `{"name": "disk", "children": [
  {"name": "src", "children": [
    {"name": "main.go", "value": 600},
    {"name": "util.go", "value": 200}
  ]},
  {"name": "docs", "value": 200}
]}`

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return New(pipeline.NewRunner(c, nil, nil), opts...)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("response should carry a request ID")
	}
}

func TestLayout(t *testing.T) {
	s := newTestServer(t)
	body := `{"document": ` + tree + `, "options": {"viewport": {"width": 400, "height": 300}, "interactions": ["root:src"]}}`

	rec := do(t, s, http.MethodPost, "/v1/layout", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp LayoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Layout.ViewRoot != "src" || resp.Layout.Kind != "rootToNode" {
		t.Errorf("view root/kind = %s/%s, want src/rootToNode", resp.Layout.ViewRoot, resp.Layout.Kind)
	}
	if resp.Cached {
		t.Error("first request should not be cached")
	}
	if resp.RequestID != rec.Header().Get(RequestIDHeader) {
		t.Errorf("request_id = %q, header %q", resp.RequestID, rec.Header().Get(RequestIDHeader))
	}

	rec = do(t, s, http.MethodPost, "/v1/layout", body)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Cached {
		t.Error("second request should hit the cache")
	}
}

func TestLayoutYAMLDocument(t *testing.T) {
	s := newTestServer(t)
	doc := "name: disk\nchildren:\n  - name: a\n    value: 3\n  - name: b\n    value: 1\n"
	payload, err := json.Marshal(map[string]any{"document": doc, "format": "yaml"})
	if err != nil {
		t.Fatal(err)
	}
	rec := do(t, s, http.MethodPost, "/v1/layout", string(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp LayoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Layout.Nodes) != 3 {
		t.Errorf("got %d nodes, want 3", len(resp.Layout.Nodes))
	}
}

func TestRender(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/v1/render/SVG", `{"document": `+tree+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("X-Cache") != "miss" {
		t.Errorf("X-Cache = %q, want miss", rec.Header().Get("X-Cache"))
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body should be an SVG document")
	}

	rec = do(t, s, http.MethodPost, "/v1/render/svg", `{"document": `+tree+`}`)
	if rec.Header().Get("X-Cache") != "hit" {
		t.Errorf("X-Cache = %q, want hit", rec.Header().Get("X-Cache"))
	}
}

func TestErrors(t *testing.T) {
	s := newTestServer(t, WithMaxBodyBytes(512))
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"unknown target", http.MethodPost, "/v1/layout", `{"document": {"name": "r", "children": [{"name": "a", "value": 1}]}, "options": {"interactions": ["zoom:nope"]}}`, http.StatusNotFound, errors.ErrCodeNodeNotFound},
		{"bad interaction", http.MethodPost, "/v1/layout", `{"document": {"children": []}, "options": {"interactions": ["spin"]}}`, http.StatusBadRequest, errors.ErrCodeInvalidPayload},
		{"missing document", http.MethodPost, "/v1/layout", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"malformed body", http.MethodPost, "/v1/layout", `{"document":`, http.StatusBadRequest, errors.ErrCodeInvalidPayload},
		{"unknown field", http.MethodPost, "/v1/layout", `{"document": {}, "colour": "red"}`, http.StatusBadRequest, errors.ErrCodeInvalidPayload},
		{"bad viewport", http.MethodPost, "/v1/layout", `{"document": {}, "options": {"viewport": {"width": -1, "height": 1}}}`, http.StatusBadRequest, errors.ErrCodeInvalidOption},
		{"unknown format", http.MethodPost, "/v1/render/pdf", `{"document": {}}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"unknown route", http.MethodGet, "/v2/anything", "", http.StatusNotFound, errors.ErrCodeNotFound},
		{"too large", http.MethodPost, "/v1/layout", `{"document": "` + strings.Repeat("x", 1024) + `"}`, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			resp := decodeError(t, rec)
			if resp.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", resp.Error.Code, tt.code)
			}
			if resp.RequestID == "" {
				t.Error("error should carry the request ID")
			}
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{"client id kept", "abc-123", true},
		{"control chars replaced", "abc\x01", false},
		{"too long replaced", strings.Repeat("a", 200), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set(RequestIDHeader, tt.in)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			got := rec.Header().Get(RequestIDHeader)
			if (got == tt.in) != tt.keep {
				t.Errorf("request ID = %q, keep = %v", got, tt.keep)
			}
		})
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	s := newTestServer(t)
	do(t, s, http.MethodGet, "/healthz", "")
	do(t, s, http.MethodGet, "/missing", "")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.statuses) != 2 || hooks.statuses[0] != http.StatusOK || hooks.statuses[1] != http.StatusNotFound {
		t.Errorf("statuses = %v, want [200 404]", hooks.statuses)
	}
}

func TestServeShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error: %v", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}
