package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/marble-idols/storefront/internal/ai"
	"github.com/marble-idols/storefront/internal/platform/httpx"
	"github.com/marble-idols/storefront/internal/platform/requestctx"
	"github.com/marble-idols/storefront/internal/services"
)

const (
	descriptionPath          = "/api/generate-description"
	maxDescriptionBody       = 8 * 1024
	descriptionProcessFailed = "Failed to process request"
)

// DescriptionHandlers serves the editor's description generator.
type DescriptionHandlers struct {
	descriptions services.DescriptionService
	limiter      rateLimiter
}

// DescriptionOption customises DescriptionHandlers.
type DescriptionOption func(*DescriptionHandlers)

// WithDescriptionRateLimit caps requests per client IP per window. A non-positive limit disables it.
func WithDescriptionRateLimit(limit int, window time.Duration, clock func() time.Time) DescriptionOption {
	return func(h *DescriptionHandlers) {
		h.limiter = newWindowLimiter(limit, window, clock)
	}
}

// NewDescriptionHandlers constructs description handlers.
func NewDescriptionHandlers(svc services.DescriptionService, opts ...DescriptionOption) *DescriptionHandlers {
	h := &DescriptionHandlers{descriptions: svc}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers POST /api/generate-description.
func (h *DescriptionHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post(descriptionPath, h.generate)
}

type descriptionRequest struct {
	Name          string                   `json:"name"`
	MaterialRef   string                   `json:"materialRef"`
	PaintingStyle string                   `json:"paintingStyle"`
	Dimensions    descriptionDimensionsReq `json:"dimensions"`
}

type descriptionDimensionsReq struct {
	Length descriptionMeasureReq `json:"length"`
	Width  descriptionMeasureReq `json:"width"`
	Height descriptionMeasureReq `json:"height"`
}

type descriptionMeasureReq struct {
	Value   measureValue `json:"value"`
	UnitRef string       `json:"unitRef"`
}

// measureValue accepts a JSON number, a numeric string or null.
type measureValue struct {
	v *float64
}

func (m *measureValue) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		m.v = nil
		return nil
	}
	raw = strings.Trim(raw, `"`)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid measurement %s", data)
	}
	m.v = &v
	return nil
}

type descriptionResponse struct {
	Description string `json:"description"`
}

type descriptionErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func (h *DescriptionHandlers) generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.descriptions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("description_unavailable", "description service unavailable", http.StatusServiceUnavailable))
		return
	}
	if h.limiter != nil {
		if ok, retry := h.limiter.Allow(clientKey(r)); !ok {
			httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many description requests", http.StatusTooManyRequests).WithRetryAfter(retry))
			return
		}
	}

	logger := requestctx.Logger(ctx)

	body, err := readLimitedBody(r, maxDescriptionBody)
	if err != nil {
		logger.Warn("description request rejected", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, descriptionErrorResponse{Error: descriptionProcessFailed})
		return
	}
	var req descriptionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		logger.Warn("description request rejected", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, descriptionErrorResponse{Error: descriptionProcessFailed})
		return
	}

	text, err := h.descriptions.Generate(ctx, services.GenerateDescriptionCommand{
		Name:          req.Name,
		MaterialRef:   req.MaterialRef,
		PaintingStyle: req.PaintingStyle,
		Dimensions: services.DescriptionDimensions{
			Length: services.DimensionInput{Value: req.Dimensions.Length.Value.v, UnitRef: req.Dimensions.Length.UnitRef},
			Width:  services.DimensionInput{Value: req.Dimensions.Width.Value.v, UnitRef: req.Dimensions.Width.UnitRef},
			Height: services.DimensionInput{Value: req.Dimensions.Height.Value.v, UnitRef: req.Dimensions.Height.UnitRef},
		},
	})
	if err != nil {
		var upstream *ai.UpstreamError
		switch {
		case errors.As(err, &upstream):
			logger.Warn("description provider rejected request",
				zap.String("provider", upstream.Provider),
				zap.Int("status", upstream.Status),
			)
			writeJSON(w, upstreamStatus(upstream.Status), descriptionErrorResponse{
				Error:   fmt.Sprintf("Error from %s API", strings.ToUpper(upstream.Provider)),
				Details: upstream.Details,
			})
		case errors.Is(err, services.ErrDescriptionUnavailable):
			httpx.WriteError(ctx, w, httpx.NewError("description_unavailable", "description provider is not configured", http.StatusServiceUnavailable))
		default:
			logger.Error("description generation failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, descriptionErrorResponse{Error: descriptionProcessFailed})
		}
		return
	}

	writeJSON(w, http.StatusOK, descriptionResponse{Description: text})
}

// upstreamStatus keeps provider error statuses and maps anything unusable to 502.
func upstreamStatus(status int) int {
	if status < 400 || status > 599 {
		return http.StatusBadGateway
	}
	return status
}
