package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"autotagger/internal/logging"
	"autotagger/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	t.Cleanup(func() { logging.SetOutput(os.Stderr) })
	return &buf
}

func TestNewResponseWriter(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())

	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected default status code 200, got %d", rw.statusCode)
	}
	if rw.bytesWritten != 0 {
		t.Errorf("Expected bytesWritten to be 0, got %d", rw.bytesWritten)
	}
	if rw.wroteHeader {
		t.Error("Expected wroteHeader to be false initially")
	}
}

func TestResponseWriterWriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	rw.WriteHeader(http.StatusConflict)
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusConflict {
		t.Errorf("Expected first status 409 to stick, got %d", rw.statusCode)
	}
	if w.Code != http.StatusConflict {
		t.Errorf("Expected recorder status 409, got %d", w.Code)
	}
}

func TestResponseWriterWrite(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	n, err := rw.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	rw.Write([]byte(" world"))

	if n != 5 {
		t.Errorf("Expected 5 bytes written, got %d", n)
	}
	if rw.bytesWritten != 11 {
		t.Errorf("Expected 11 bytes counted, got %d", rw.bytesWritten)
	}
	if !rw.wroteHeader {
		t.Error("Expected implicit header after Write")
	}
	if w.Body.String() != "hello world" {
		t.Errorf("Expected body %q, got %q", "hello world", w.Body.String())
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"line\nbreak", "line break"},
		{"cr\rlf", "cr lf"},
		{"nul\x00byte", "nulbyte"},
		{"\x1b[31mred", "[31mred"},
		{"tab\tkept", "tab\tkept"},
		{"bell\x07", "bell"},
	}

	for _, tt := range tests {
		if got := sanitizeLogField(tt.in); got != tt.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShouldSkip(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		config LoggingConfig
		want   bool
	}{
		{"health skipped by default", "/health", DefaultLoggingConfig(), true},
		{"livez skipped by default", "/livez", DefaultLoggingConfig(), true},
		{"api logged", "/api/runs", DefaultLoggingConfig(), false},
		{"health logged when enabled", "/health", LoggingConfig{LogHealthChecks: true}, false},
		{"skip prefix", "/metrics", LoggingConfig{SkipPaths: []string{"/metrics"}, LogHealthChecks: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldSkip(tt.path, tt.config); got != tt.want {
				t.Errorf("Expected shouldSkip(%s)=%v, got %v", tt.path, tt.want, got)
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:80", "10.0.0.1"},
		{"forwarded single", map[string]string{"X-Forwarded-For": " 10.0.0.3 "}, "1.1.1.1:80", "10.0.0.3"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.4"}, "1.1.1.1:80", "10.0.0.4"},
		{"remote addr", nil, "192.168.1.5:51234", "192.168.1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("Expected client IP %s, got %s", tt.want, got)
			}
		})
	}
}

func TestFormatRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/tags?folder=/photos", http.NoBody)
	req.RemoteAddr = "127.0.0.1:5000"
	req.Header.Set("User-Agent", "curl 8.0")

	rw := newResponseWriter(httptest.NewRecorder())
	rw.WriteHeader(http.StatusOK)
	rw.Write([]byte(`{"ok":true}`))

	now := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	got := formatRequest(req, rw, 15*time.Millisecond, now)
	want := `2024-03-01 12:30:45 127.0.0.1 GET /api/tags folder=/photos 200 11 15 "curl 8.0"`
	if got != want {
		t.Errorf("Expected log line\n%s\ngot\n%s", want, got)
	}
}

func TestLoggerMiddleware(t *testing.T) {
	buf := captureLog(t)

	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/runs", http.NoBody)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	if !strings.Contains(line, "POST /api/runs - 202") {
		t.Errorf("Expected request line, got %q", line)
	}

	buf.Reset()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if buf.Len() != 0 {
		t.Errorf("Expected health check to be skipped, got %q", buf.String())
	}
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Metrics(DefaultMetricsConfig()))
	router.HandleFunc("/api/tags/{tag}/photos", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/tags/{tag}/photos", "404")
	before := testutil.ToFloat64(counter)

	for _, tag := range []string{"2023", "Unknown%20Location"} {
		req := httptest.NewRequest(http.MethodGet, "/api/tags/"+tag+"/photos", http.NoBody)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("Expected 2 requests under the route template, got %v", got)
	}

	health := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/health", "200")
	before = testutil.ToFloat64(health)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if got := testutil.ToFloat64(health) - before; got != 0 {
		t.Errorf("Expected /health to be skipped, got %v", got)
	}
}

func TestRouteTemplateWithoutRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/anything", http.NoBody)
	if got := routeTemplate(req); got != unmatchedRoute {
		t.Errorf("Expected %s, got %s", unmatchedRoute, got)
	}
}

func TestDefaultMetricsConfig(t *testing.T) {
	config := DefaultMetricsConfig()
	for _, route := range []string{"/metrics", "/health", "/livez"} {
		if !config.SkipRoutes[route] {
			t.Errorf("Expected %s to be skipped", route)
		}
	}
	if config.SkipRoutes["/api/runs"] {
		t.Error("Expected /api/runs to be recorded")
	}
}
