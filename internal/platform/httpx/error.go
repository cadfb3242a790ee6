package httpx

import (
	"context"
	"encoding/json"
	"maps"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/marble-idols/storefront/internal/platform/requestctx"
)

const (
	codeLimit    = 80
	messageLimit = 512
	traceLimit   = 64
)

// Error is the JSON error body shared by every storefront endpoint:
//
//	{"error": code, "message": ..., "status": ..., "request_id": ..., "trace_id": ...}
//
// Details are merged in as extra top-level fields but never replace the fields above.
type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]any

	retryAfter time.Duration
}

// NewError constructs an Error. A zero status means 500.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    singleLine(code, codeLimit),
		Message: singleLine(message, messageLimit),
		Status:  status,
	}
}

func (e Error) Error() string {
	return e.Code + ": " + e.Message
}

// WithDetails merges extra fields into the body.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	merged := maps.Clone(e.Details)
	if merged == nil {
		merged = make(map[string]any, len(details))
	}
	maps.Copy(merged, details)
	e.Details = merged
	return e
}

// WithRetryAfter tells the client when to try again, both as a Retry-After header and as
// retry_after (whole seconds, rounded up) in the body.
func (e Error) WithRetryAfter(d time.Duration) Error {
	if d <= 0 {
		return e
	}
	e.retryAfter = d
	return e.WithDetails(map[string]any{"retry_after": retrySeconds(d)})
}

// WriteError writes err using the request and trace identifiers found on ctx.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	if err.Status == 0 {
		err.Status = http.StatusInternalServerError
	}
	if err.retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(err.retryAfter)))
	}
	WriteJSON(w, err.Status, err.body(ctx))
}

func (e Error) body(ctx context.Context) map[string]any {
	body := make(map[string]any, len(e.Details)+5)
	maps.Copy(body, e.Details)
	body["error"] = e.Code
	body["message"] = e.Message
	body["status"] = e.Status

	if id := singleLine(middleware.GetReqID(ctx), codeLimit); id != "" {
		body["request_id"] = id
	} else {
		delete(body, "request_id")
	}
	if id := singleLine(requestctx.TraceID(ctx), traceLimit); id != "" {
		body["trace_id"] = id
	} else {
		delete(body, "trace_id")
	}
	return body
}

// WriteJSON encodes payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func retrySeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

// singleLine flattens control characters to spaces and cuts value to at most limit bytes
// without splitting a rune.
func singleLine(value string, limit int) string {
	value = strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, value))
	if len(value) <= limit {
		return value
	}
	cut := 0
	for i := range value {
		if i > limit {
			break
		}
		cut = i
	}
	return strings.TrimSpace(value[:cut])
}
