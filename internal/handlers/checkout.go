package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marble-idols/storefront/internal/platform/httpx"
	"github.com/marble-idols/storefront/internal/services"
)

const maxCheckoutRequestBody = 4 * 1024

// CheckoutHandlers hands shoppers off to WhatsApp with a pre-filled inquiry.
type CheckoutHandlers struct {
	checkout services.CheckoutService
}

// NewCheckoutHandlers constructs checkout handlers.
func NewCheckoutHandlers(checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{checkout: checkout}
}

// Routes registers the JSON endpoint under /api/v1/checkout.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/whatsapp", h.startWhatsApp)
}

// RedirectRoutes registers the browser-facing /buy/{slug} redirect.
func (h *CheckoutHandlers) RedirectRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/buy/{slug}", h.redirectWhatsApp)
}

type whatsAppCheckoutRequest struct {
	Slug     string `json:"slug"`
	Quantity int    `json:"quantity"`
}

type whatsAppCheckoutResponse struct {
	Reference string `json:"reference"`
	URL       string `json:"url"`
	Message   string `json:"message"`
	Quantity  int    `json:"quantity"`
	Product   struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
	} `json:"product"`
	IssuedAt string `json:"issued_at"`
}

func (h *CheckoutHandlers) startWhatsApp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxCheckoutRequestBody)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req whatsAppCheckoutRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	checkout, err := h.checkout.StartWhatsApp(ctx, services.WhatsAppCheckoutCommand{
		Slug:     strings.TrimSpace(req.Slug),
		Quantity: req.Quantity,
	})
	if err != nil {
		writeCatalogError(ctx, w, err, "product")
		return
	}

	resp := whatsAppCheckoutResponse{
		Reference: checkout.Reference,
		URL:       checkout.URL,
		Message:   checkout.Message,
		Quantity:  checkout.Quantity,
		IssuedAt:  formatTimestamp(checkout.IssuedAt),
	}
	resp.Product.Slug = checkout.Product.Slug
	resp.Product.Name = checkout.Product.Name
	writeJSON(w, http.StatusOK, resp)
}

func (h *CheckoutHandlers) redirectWhatsApp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return
	}

	quantity := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("quantity")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "quantity must be an integer", http.StatusBadRequest))
			return
		}
		quantity = parsed
	}

	checkout, err := h.checkout.StartWhatsApp(ctx, services.WhatsAppCheckoutCommand{
		Slug:     chi.URLParam(r, "slug"),
		Quantity: quantity,
	})
	if err != nil {
		writeCatalogError(ctx, w, err, "product")
		return
	}
	http.Redirect(w, r, checkout.URL, http.StatusFound)
}
