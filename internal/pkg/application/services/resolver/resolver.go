package resolver

import (
	"context"
	"slices"
	"time"

	"github.com/diwise/api-idresolver/internal/pkg/application/services/platforms"
	"github.com/diwise/api-idresolver/internal/pkg/domain"
	"github.com/diwise/api-idresolver/internal/pkg/infrastructure/metrics"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("api-idresolver/resolver")

// Resolver turns a URL into the external identifiers it carries
//
//go:generate moq -rm -out resolver_mock.go . Resolver
type Resolver interface {
	Resolve(ctx context.Context, url, explicitPropertyID string) (*domain.ResolutionResult, error)
}

type Config struct {
	DOIPropertyID string
	RequestDelay  time.Duration
	MaxInFlight   int
	Policy        InclusionPolicy
}

func DefaultConfig() Config {
	return Config{
		DOIPropertyID: platforms.DOIPropertyID,
		RequestDelay:  500 * time.Millisecond,
		MaxInFlight:   1,
		Policy: InclusionPolicy{
			AcceptApplicableSubject:  true,
			AcceptExternalIdentifier: true,
		},
	}
}

func NewResolver(kb KnowledgeBase, registry platforms.Registry, cfg Config, m *metrics.Metrics) Resolver {
	if cfg.DOIPropertyID == "" {
		cfg.DOIPropertyID = platforms.DOIPropertyID
	}

	if cfg.MaxInFlight < 1 {
		cfg.MaxInFlight = 1
	}

	return &resolver{
		kb:       kb,
		registry: registry,
		cfg:      cfg,
		metrics:  m,
	}
}

type resolver struct {
	kb       KnowledgeBase
	registry platforms.Registry
	cfg      Config
	metrics  *metrics.Metrics
}

// Resolve finds the identifier properties of the platform hosting url and extracts
// every identifier they can pull out of it. Only malformed input is returned as an
// error, knowledge base failures just leave less data in the result.
func (r *resolver) Resolve(ctx context.Context, url, explicitPropertyID string) (result *domain.ResolutionResult, err error) {
	ctx, span := tracer.Start(ctx, "resolve-url")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	_, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

	host, err := ResolveDomain(url)
	if err != nil {
		r.metrics.IncrementResolutions(metrics.OutcomeMalformedInput)
		return nil, err
	}

	log = log.With().Str("domain", host).Logger()
	ctx = logging.NewContextWithLogger(ctx, log)

	s := r.newSession()
	known := r.registry.Lookup(host)

	platform := s.discover(ctx, host, known)

	if explicitPropertyID != "" {
		if id, ok := NormalisePropertyID(explicitPropertyID); !ok {
			log.Warn().Str("property", explicitPropertyID).Msg("ignoring invalid property id")
		} else if !platform.HasProperty(id) {
			if property := s.fetch(ctx, id); property != nil {
				platform.AddProperty(*property)
			}
		}
	}

	extractions := map[string]domain.ExtractionResult{}

	for _, property := range platform.Properties {
		if property.URLPattern == nil {
			continue
		}

		if err := property.URLPattern.Err(); err != nil {
			r.metrics.IncrementMalformedPatterns("url_pattern")
			log.Warn().Err(err).Str("property", property.ID).Msg("skipping property with malformed url pattern")
			continue
		}

		rawID, ok := Extract(url, property)
		if !ok {
			continue
		}

		if e, ok := r.validated(ctx, property, rawID); ok {
			extractions[property.ID] = e
		}
	}

	if len(extractions) == 0 && slices.Contains(known, r.cfg.DOIPropertyID) {
		if rawID, ok := ExtractDOI(url); ok {
			property, found := platform.Property(r.cfg.DOIPropertyID)
			if !found {
				property = domain.PropertyRecord{ID: r.cfg.DOIPropertyID, Label: "DOI"}
				platform.AddProperty(property)
			}

			if e, ok := r.validated(ctx, property, rawID); ok {
				r.metrics.IncrementDOIFallbacks()
				log.Debug().Str("doi", rawID).Msg("extracted doi using fallback pattern")
				extractions[property.ID] = e
			}
		}
	}

	result = domain.NewResolutionResult(platform)
	result.Extractions = extractions

	switch {
	case len(extractions) > 0:
		r.metrics.IncrementResolutions(metrics.OutcomeResolved)
		log.Info().Int("extractions", len(extractions)).Msg("resolved identifiers")
	case s.failures.Load() > 0:
		r.metrics.IncrementResolutions(metrics.OutcomeUpstreamUnavailable)
		log.Info().Int32("failures", s.failures.Load()).Msg("no identifier found, upstream unavailable")
	default:
		r.metrics.IncrementResolutions(metrics.OutcomeNoIdentifier)
		log.Info().Msg("no identifier found")
	}

	return result, nil
}

func (r *resolver) validated(ctx context.Context, property domain.PropertyRecord, rawID string) (domain.ExtractionResult, bool) {
	log := logging.GetFromContext(ctx)

	if err := property.FormatConstraint.Err(); err != nil {
		r.metrics.IncrementMalformedPatterns("format_constraint")
		log.Warn().Err(err).Str("property", property.ID).Msg("format constraint does not compile, rejecting extraction")
	}

	if !Validate(rawID, property.FormatConstraint) {
		log.Debug().Str("property", property.ID).Str("rawId", rawID).Msg("extracted id does not satisfy the format constraint")
		return domain.ExtractionResult{}, false
	}

	e := domain.ExtractionResult{
		PropertyID: property.ID,
		RawID:      rawID,
		Valid:      true,
	}

	if property.FormatterTemplate != "" {
		e.CanonicalURL = FormatURL(property.FormatterTemplate, rawID)
	}

	return e, true
}
