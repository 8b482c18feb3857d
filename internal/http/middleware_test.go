package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/mechanicshop/internal/logging"
)

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	t.Run("injects a scoped logger into the request context", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		base := slog.New(slog.NewJSONHandler(&buf, nil))

		var sawLogger bool
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logging.FromContext(r.Context()) != nil {
				sawLogger = true
			}
			w.WriteHeader(http.StatusNoContent)
		})

		handler := RequestLogger(base)(inner)
		req := httptest.NewRequest(http.MethodGet, "/work-orders", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if !sawLogger {
			t.Error("expected a logger in the request context")
		}
		if recorder.Code != http.StatusNoContent {
			t.Errorf("status = %d", recorder.Code)
		}
	})

	t.Run("records start and completion with request metadata", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		base := slog.New(slog.NewJSONHandler(&buf, nil))

		handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		req := httptest.NewRequest(http.MethodPost, "/work-orders", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		if len(lines) != 2 {
			t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
		}

		var entry map[string]any
		if err := json.Unmarshal(lines[0], &entry); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		if entry["msg"] != "request started" {
			t.Errorf("msg = %v", entry["msg"])
		}
		if entry["method"] != http.MethodPost || entry["path"] != "/work-orders" {
			t.Errorf("unexpected metadata: %v", entry)
		}
		if _, ok := entry["request_id"]; !ok {
			t.Error("expected request_id attribute")
		}
	})
}
