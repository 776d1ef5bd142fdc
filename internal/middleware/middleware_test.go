package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sakif/smartbio/internal/metrics"
)

func statusHandler(code int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
		w.Write([]byte(body))
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logger(logger)(statusHandler(http.StatusCreated, "hello"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/bios", nil))

	out := buf.String()
	for _, want := range []string{"request completed", "method=POST", "path=/api/bios", "status=201", "bytes=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %q", out, want)
		}
	}
}

func TestLogger_ServerErrorsAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Logger(logger)(statusHandler(http.StatusInternalServerError, "")).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("5xx should log at ERROR, got %q", buf.String())
	}
}

func TestLogger_DefaultStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	// Never calls WriteHeader: net/http sends 200.
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })
	Logger(logger)(h).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "status=200") {
		t.Errorf("log = %q, want status=200", buf.String())
	}
}

func TestMetrics(t *testing.T) {
	c := metrics.New()
	h := Metrics(c, "public")(statusHandler(http.StatusNotFound, "nope"))

	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/doesnotexist", nil))
	}

	if got := testutil.ToFloat64(c.HTTPRequests.WithLabelValues("public", "GET", "404")); got != 3 {
		t.Errorf("requests{public,GET,404} = %v, want 3", got)
	}
}

func TestStackedMiddlewareSharesWrapper(t *testing.T) {
	var buf bytes.Buffer
	c := metrics.New()
	h := Logger(slog.New(slog.NewTextHandler(&buf, nil)))(Metrics(c, "api")(statusHandler(http.StatusTeapot, "")))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "status=418") {
		t.Errorf("outer logger lost the status: %q", buf.String())
	}
	if got := testutil.ToFloat64(c.HTTPRequests.WithLabelValues("api", "GET", "418")); got != 1 {
		t.Errorf("requests{api,GET,418} = %v, want 1", got)
	}
}
