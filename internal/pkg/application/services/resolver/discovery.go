package resolver

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/diwise/api-idresolver/internal/pkg/domain"
	"github.com/diwise/api-idresolver/internal/pkg/infrastructure/metrics"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// InclusionPolicy decides which discovered properties are kept for a catalog
// entry. A property is kept if any enabled condition holds.
type InclusionPolicy struct {
	AcceptApplicableSubject  bool
	AcceptExternalIdentifier bool
}

func (p InclusionPolicy) Accepts(property domain.PropertyRecord, entry domain.CatalogEntry) bool {
	if p.AcceptApplicableSubject && property.AppliesTo(entry.ID) {
		return true
	}
	return p.AcceptExternalIdentifier && property.IsExternalIdentifier()
}

// session holds the state of a single resolution. Property lookups share one
// limiter so that the request rate towards the knowledge base stays bounded.
type session struct {
	kb          KnowledgeBase
	policy      InclusionPolicy
	metrics     *metrics.Metrics
	limiter     *rate.Limiter
	maxInFlight int
	failures    atomic.Int32
}

func (r *resolver) newSession() *session {
	limit := rate.Inf
	if r.cfg.RequestDelay > 0 {
		limit = rate.Every(r.cfg.RequestDelay)
	}

	return &session{
		kb:          r.kb,
		policy:      r.cfg.Policy,
		metrics:     r.metrics,
		limiter:     rate.NewLimiter(limit, 1),
		maxInFlight: r.cfg.MaxInFlight,
	}
}

// discover returns the platform record for host, trying the registry fast path
// before falling back to discovery through the knowledge base.
func (s *session) discover(ctx context.Context, host string, known []string) domain.PlatformRecord {
	log := logging.GetFromContext(ctx)

	if len(known) > 0 {
		platform, ok := s.fastPath(ctx, host, known)
		s.metrics.IncrementFastPath(ok)

		if ok {
			return platform
		}

		log.Info().Strs("properties", known).Msg("no usable property on the fast path, falling back to discovery")
	}

	return s.discoveryPath(ctx, host)
}

func (s *session) fastPath(ctx context.Context, host string, ids []string) (domain.PlatformRecord, bool) {
	platform := domain.NewPlatformRecord(host)
	usable := false

	for _, property := range s.fetchAll(ctx, ids) {
		if property == nil {
			continue
		}

		usable = usable || property.Usable()
		platform.AddProperty(*property)
	}

	return platform, usable
}

func (s *session) discoveryPath(ctx context.Context, host string) domain.PlatformRecord {
	log := logging.GetFromContext(ctx)
	platform := domain.NewPlatformRecord(host)

	entries, err := s.kb.FindEntriesByWebsiteSubstring(ctx, host)
	if err != nil {
		s.upstreamFailure(ctx, "find-entries", host, err)
		return platform
	}

	fetched := map[string]*domain.PropertyRecord{}

	for _, entry := range entries {
		if !platform.AddCatalogEntry(entry) {
			continue
		}

		ids, err := s.kb.FindPropertiesLinkedToEntry(ctx, entry.ID)
		if err != nil {
			s.upstreamFailure(ctx, "find-linked-properties", entry.ID, err)
			continue
		}

		pending := []string{}
		for _, id := range ids {
			if _, ok := fetched[id]; !ok {
				fetched[id] = nil
				pending = append(pending, id)
			}
		}

		for i, property := range s.fetchAll(ctx, pending) {
			fetched[pending[i]] = property
		}

		for _, id := range ids {
			property := fetched[id]
			if property == nil || platform.HasProperty(property.ID) {
				continue
			}

			if !property.Usable() {
				log.Debug().Str("property", property.ID).Msg("property has neither formatter template nor url pattern")
				continue
			}

			if !s.policy.Accepts(*property, entry) {
				log.Debug().Str("property", property.ID).Str("entry", entry.ID).Msg("property rejected by inclusion policy")
				continue
			}

			platform.AddProperty(*property)
		}
	}

	return platform
}

// fetchAll fetches the details of every id, keeping the order of ids. Failed
// lookups leave a nil in their position.
func (s *session) fetchAll(ctx context.Context, ids []string) []*domain.PropertyRecord {
	properties := make([]*domain.PropertyRecord, len(ids))

	g := errgroup.Group{}
	g.SetLimit(s.maxInFlight)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			properties[i] = s.fetch(ctx, id)
			return nil
		})
	}

	g.Wait()

	return properties
}

func (s *session) fetch(ctx context.Context, id string) *domain.PropertyRecord {
	if err := s.limiter.Wait(ctx); err != nil {
		s.upstreamFailure(ctx, "fetch-property", id, err)
		return nil
	}

	property, err := s.kb.FetchPropertyDetails(ctx, id)
	if err != nil {
		s.upstreamFailure(ctx, "fetch-property", id, err)
		return nil
	}

	return property
}

func (s *session) upstreamFailure(ctx context.Context, operation, subject string, err error) {
	log := logging.GetFromContext(ctx)

	if errors.Is(err, domain.ErrUpstreamUnavailable) || ctx.Err() != nil {
		s.failures.Add(1)
		s.metrics.IncrementUpstreamFailures(operation)
	}

	log.Warn().Err(err).Str("operation", operation).Str("subject", subject).Msg("knowledge base lookup failed, continuing without it")
}
