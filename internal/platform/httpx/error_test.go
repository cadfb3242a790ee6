package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/marble-idols/storefront/internal/platform/requestctx"
)

func TestWriteErrorPayload(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")
	ctx = requestctx.WithTrace(ctx, requestctx.TraceInfo{TraceID: "trace-abc"})

	rec := httptest.NewRecorder()
	err := NewError("product_not_found", "product\nnot found", http.StatusNotFound).
		WithDetails(map[string]any{"slug": "ganesha"})
	WriteError(ctx, rec, err)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "product_not_found" || body["message"] != "product not found" {
		t.Fatalf("unexpected body %v", body)
	}
	if body["request_id"] != "req-123" || body["trace_id"] != "trace-abc" {
		t.Fatalf("expected request and trace ids, got %v", body)
	}
	if body["slug"] != "ganesha" {
		t.Fatalf("expected details to be merged, got %v", body)
	}
	if body["status"] != float64(http.StatusNotFound) {
		t.Fatalf("expected status field, got %v", body["status"])
	}
}

func TestNewErrorDefaultsTo500(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), rec, NewError("internal", "boom", 0))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestWriteErrorRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	err := NewError("rate_limited", "slow down", http.StatusTooManyRequests).WithRetryAfter(1500 * time.Millisecond)
	WriteError(context.Background(), rec, err)

	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["retry_after"] != float64(2) {
		t.Fatalf("expected retry_after 2, got %v", body["retry_after"])
	}
}

func TestWriteErrorDetailsCannotReplaceEnvelopeFields(t *testing.T) {
	rec := httptest.NewRecorder()
	err := NewError("product_not_found", "missing", http.StatusNotFound).
		WithDetails(map[string]any{"status": 200, "error": "ok", "trace_id": "forged", "slug": "nandi"})
	WriteError(context.Background(), rec, err)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != float64(http.StatusNotFound) || body["error"] != "product_not_found" {
		t.Fatalf("envelope fields overwritten: %v", body)
	}
	if _, ok := body["trace_id"]; ok {
		t.Fatalf("expected no trace_id without a trace, got %v", body["trace_id"])
	}
	if body["slug"] != "nandi" {
		t.Fatalf("expected slug detail, got %v", body)
	}
}

func TestNewErrorTruncatesOnRuneBoundary(t *testing.T) {
	message := strings.Repeat("a", messageLimit-1) + "₹₹"
	err := NewError("x", message, http.StatusBadRequest)
	if len(err.Message) > messageLimit || !utf8.ValidString(err.Message) {
		t.Fatalf("expected valid message within %d bytes, got %d bytes", messageLimit, len(err.Message))
	}
	if err.Error() != "x: "+err.Message {
		t.Fatalf("unexpected Error() %q", err.Error())
	}
}
