package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/marble-idols/storefront/internal/ai"
	"github.com/marble-idols/storefront/internal/format"
	"github.com/marble-idols/storefront/internal/platform/observability"
	"github.com/marble-idols/storefront/internal/platform/requestctx"
	"github.com/marble-idols/storefront/internal/repositories"
)

const (
	descriptionSystemPrompt = "You are a helpful assistant for an idol store."
	defaultTemperature      = 0.7
)

// Description outcomes recorded on the metrics counter.
const (
	descriptionOutcomeOK       = "ok"
	descriptionOutcomeUpstream = "upstream_error"
	descriptionOutcomeFailed   = "error"
)

var (
	// ErrDescriptionUnavailable indicates no completion provider is configured.
	ErrDescriptionUnavailable = errors.New("description service: completion provider is not configured")
	// ErrDescriptionEmpty indicates the provider answered with no usable text.
	ErrDescriptionEmpty = errors.New("description service: empty description")
)

// DescriptionServiceDeps bundles constructor inputs for the description service.
type DescriptionServiceDeps struct {
	Catalog     repositories.CatalogRepository
	Completer   ai.Completer
	Metrics     *observability.Metrics
	Temperature float64
}

type descriptionService struct {
	repo        repositories.CatalogRepository
	completer   ai.Completer
	metrics     *observability.Metrics
	temperature float64
	policy      *bluemonday.Policy
}

var _ DescriptionService = (*descriptionService)(nil)

// NewDescriptionService wires the description generator. A nil Completer is allowed; Generate
// then fails with ErrDescriptionUnavailable.
func NewDescriptionService(deps DescriptionServiceDeps) (DescriptionService, error) {
	if deps.Catalog == nil {
		return nil, errors.New("description service: catalog repository is required")
	}
	temperature := deps.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	return &descriptionService{
		repo:        deps.Catalog,
		completer:   deps.Completer,
		metrics:     deps.Metrics,
		temperature: temperature,
		policy:      bluemonday.StrictPolicy(),
	}, nil
}

// Generate resolves the material and unit references, prompts the provider and returns the
// description as plain text. Provider rejections surface as *ai.UpstreamError.
func (s *descriptionService) Generate(ctx context.Context, cmd GenerateDescriptionCommand) (string, error) {
	if s.completer == nil {
		return "", ErrDescriptionUnavailable
	}
	provider := s.completer.Provider()

	prompt := s.buildPrompt(ctx, cmd)
	text, err := s.completer.Complete(ctx, ai.Request{
		System:      descriptionSystemPrompt,
		Prompt:      prompt,
		Temperature: s.temperature,
	})
	if err != nil {
		var upstream *ai.UpstreamError
		if errors.As(err, &upstream) {
			s.metrics.Description(ctx, provider, descriptionOutcomeUpstream)
			return "", err
		}
		s.metrics.Description(ctx, provider, descriptionOutcomeFailed)
		return "", fmt.Errorf("description service: complete: %w", err)
	}

	text = strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
	if text == "" {
		s.metrics.Description(ctx, provider, descriptionOutcomeFailed)
		return "", ErrDescriptionEmpty
	}
	s.metrics.Description(ctx, provider, descriptionOutcomeOK)
	return text, nil
}

func (s *descriptionService) buildPrompt(ctx context.Context, cmd GenerateDescriptionCommand) string {
	material := s.materialTitle(ctx, cmd.MaterialRef)
	height := s.measure(ctx, cmd.Dimensions.Height)
	width := s.measure(ctx, cmd.Dimensions.Width)
	length := s.measure(ctx, cmd.Dimensions.Length)

	var b strings.Builder
	b.WriteString("Generate a short product description for a marble statue:\n")
	fmt.Fprintf(&b, "- Name: %s\n", cmd.Name)
	fmt.Fprintf(&b, "- Material: %s\n", material)
	fmt.Fprintf(&b, "- Painting Style: %s\n", cmd.PaintingStyle)
	fmt.Fprintf(&b, "- Height: %s\n", height)
	fmt.Fprintf(&b, "- Width: %s\n", width)
	fmt.Fprintf(&b, "- Length: %s\n", length)
	b.WriteString("\nKeep it concise, elegant, and devotional.")
	return b.String()
}

func (s *descriptionService) materialTitle(ctx context.Context, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	material, err := s.repo.GetMaterial(ctx, ref)
	if err != nil {
		requestctx.Logger(ctx).Warn("material lookup failed", zap.String("ref", ref), zap.Error(err))
		return ""
	}
	return material.Title
}

// measure renders "<value> <unit>". A missing or zero value prints as null.
func (s *descriptionService) measure(ctx context.Context, dim DimensionInput) string {
	value := "null"
	if dim.Value != nil && *dim.Value != 0 {
		value = format.Number(*dim.Value)
	}
	return value + " " + s.unitLabel(ctx, dim.UnitRef)
}

func (s *descriptionService) unitLabel(ctx context.Context, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	unit, err := s.repo.GetMeasurementUnit(ctx, ref)
	if err != nil {
		requestctx.Logger(ctx).Warn("unit lookup failed", zap.String("ref", ref), zap.Error(err))
		return ""
	}
	if symbol := strings.TrimSpace(unit.Symbol); symbol != "" {
		return symbol
	}
	return strings.TrimSpace(unit.Title)
}
