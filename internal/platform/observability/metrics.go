package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the storefront counters. The zero value and nil are safe to use.
type Metrics struct {
	catalogViews metric.Int64Counter
	loadFailures metric.Int64Counter
	descriptions metric.Int64Counter
	checkouts    metric.Int64Counter
}

// NewMetrics registers the counters on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	catalogViews, err := meter.Int64Counter("storefront.catalog.views",
		metric.WithDescription("Catalog views served, by page kind and sort mode."))
	if err != nil {
		return nil, err
	}
	loadFailures, err := meter.Int64Counter("storefront.catalog.load_failures",
		metric.WithDescription("Catalog views that degraded to an empty record set."))
	if err != nil {
		return nil, err
	}
	descriptions, err := meter.Int64Counter("storefront.ai.descriptions",
		metric.WithDescription("AI description requests, by provider and outcome."))
	if err != nil {
		return nil, err
	}
	checkouts, err := meter.Int64Counter("storefront.checkout.handoffs",
		metric.WithDescription("WhatsApp checkout links issued."))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		catalogViews: catalogViews,
		loadFailures: loadFailures,
		descriptions: descriptions,
		checkouts:    checkouts,
	}, nil
}

// CatalogView records a served catalog view.
func (m *Metrics) CatalogView(ctx context.Context, page, sort string, failed bool) {
	if m == nil || m.catalogViews == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("page", page), attribute.String("sort", sort))
	m.catalogViews.Add(ctx, 1, attrs)
	if failed {
		m.loadFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("page", page)))
	}
}

// Description records the outcome of an AI description request.
func (m *Metrics) Description(ctx context.Context, provider, outcome string) {
	if m == nil || m.descriptions == nil {
		return
	}
	m.descriptions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	))
}

// Checkout records an issued checkout link.
func (m *Metrics) Checkout(ctx context.Context) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.Add(ctx, 1)
}
