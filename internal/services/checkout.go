package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/marble-idols/storefront/internal/catalog"
	"github.com/marble-idols/storefront/internal/domain"
	"github.com/marble-idols/storefront/internal/format"
	"github.com/marble-idols/storefront/internal/platform/observability"
	"github.com/marble-idols/storefront/internal/platform/requestctx"
	"github.com/marble-idols/storefront/internal/repositories"
)

const (
	whatsAppBaseURL         = "https://wa.me/"
	defaultWhatsAppNumber   = "8273366089"
	minCheckoutQuantity     = 1
	maxCheckoutQuantity     = 10
	checkoutReferencePrefix = "inq_"
)

// ErrCheckoutInvalidInput indicates an empty slug or a quantity outside 1..10.
var ErrCheckoutInvalidInput = errors.New("checkout service: invalid input")

// CheckoutServiceDeps bundles constructor inputs for the checkout service.
type CheckoutServiceDeps struct {
	Catalog        repositories.CatalogRepository
	Metrics        *observability.Metrics
	WhatsAppNumber string
	// PublicBaseURL prefixes relative product image paths.
	PublicBaseURL string
	Clock         func() time.Time
	IDGenerator   func() string
}

type checkoutService struct {
	repo          repositories.CatalogRepository
	metrics       *observability.Metrics
	number        string
	publicBaseURL string
	clock         func() time.Time
	newID         func() string
}

var _ CheckoutService = (*checkoutService)(nil)

// NewCheckoutService constructs the WhatsApp hand-off service.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Catalog == nil {
		return nil, errors.New("checkout service: catalog repository is required")
	}
	number := digitsOnly(deps.WhatsAppNumber)
	if number == "" {
		number = defaultWhatsAppNumber
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &checkoutService{
		repo:          deps.Catalog,
		metrics:       deps.Metrics,
		number:        number,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(deps.PublicBaseURL), "/"),
		clock:         func() time.Time { return clock().UTC() },
		newID:         idGen,
	}, nil
}

// StartWhatsApp builds the pre-filled inquiry message for a product. No order is recorded.
func (s *checkoutService) StartWhatsApp(ctx context.Context, cmd WhatsAppCheckoutCommand) (WhatsAppCheckout, error) {
	slug := strings.TrimSpace(cmd.Slug)
	if slug == "" {
		return WhatsAppCheckout{}, fmt.Errorf("%w: product slug is required", ErrCheckoutInvalidInput)
	}
	quantity := cmd.Quantity
	if quantity == 0 {
		quantity = minCheckoutQuantity
	}
	if quantity < minCheckoutQuantity || quantity > maxCheckoutQuantity {
		return WhatsAppCheckout{}, fmt.Errorf("%w: quantity must be between %d and %d", ErrCheckoutInvalidInput, minCheckoutQuantity, maxCheckoutQuantity)
	}

	product, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return WhatsAppCheckout{}, err
	}

	message := s.message(product, quantity)
	checkout := WhatsAppCheckout{
		Reference: checkoutReferencePrefix + s.newID(),
		Message:   message,
		URL:       whatsAppLink(s.number, message),
		Quantity:  quantity,
		Product:   product,
		IssuedAt:  s.clock(),
	}

	requestctx.Logger(ctx).Info("checkout hand-off issued",
		zap.String("reference", checkout.Reference),
		zap.String("product", product.Slug),
		zap.Int("quantity", quantity),
	)
	s.metrics.Checkout(ctx)
	return checkout, nil
}

func (s *checkoutService) message(p domain.Product, quantity int) string {
	var b strings.Builder
	b.WriteString("Hi, I'm interested in purchasing:\n\n")
	fmt.Fprintf(&b, "*%s*\n", p.Name)
	if image := s.imageURL(p.MainImage()); image != "" {
		fmt.Fprintf(&b, "🖼 Product Image: %s\n", image)
	}
	fmt.Fprintf(&b, "💰 Price: %s", rupees(p.Price))
	if price, ok := catalog.ParsePrice(p.Price); ok && p.ActualPrice != nil {
		if pct, ok := format.DiscountPercent(price, *p.ActualPrice); ok {
			fmt.Fprintf(&b, " (%d%% off)", pct)
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "📦 Quantity: %d\n", quantity)
	if !p.Dimensions.IsZero() {
		fmt.Fprintf(&b, "📐 Dimensions: %s × %s × %s\n",
			axis(p.Dimensions.Height), axis(p.Dimensions.Width), axis(p.Dimensions.Length))
	}
	material := ""
	if p.Material != nil {
		material = p.Material.Title
	}
	fmt.Fprintf(&b, "🪵 Material: %s\n\n", material)
	b.WriteString("Could you provide more details?")
	return b.String()
}

func (s *checkoutService) imageURL(image string) string {
	image = strings.TrimSpace(image)
	if strings.HasPrefix(image, "/") && s.publicBaseURL != "" {
		return s.publicBaseURL + image
	}
	return image
}

func rupees(raw string) string {
	if v, ok := catalog.ParsePrice(raw); ok {
		return format.INR(v)
	}
	return "₹" + strings.TrimSpace(raw)
}

func axis(d domain.Dimension) string {
	if d.Value == nil {
		return "-"
	}
	return format.Number(*d.Value) + d.Symbol()
}

// whatsAppLink percent-encodes message with spaces as %20.
func whatsAppLink(number, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return whatsAppBaseURL + number + "?text=" + text
}

func digitsOnly(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, value)
}
