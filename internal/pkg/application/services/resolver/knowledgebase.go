package resolver

import (
	"context"

	"github.com/diwise/api-idresolver/internal/pkg/domain"
)

// KnowledgeBase answers the catalog and property questions needed for discovery.
// Any error returned is treated as "no data" by the resolver.
//
//go:generate moq -rm -out knowledgebase_mock.go . KnowledgeBase
type KnowledgeBase interface {
	FindEntriesByWebsiteSubstring(ctx context.Context, host string) ([]domain.CatalogEntry, error)
	FindPropertiesLinkedToEntry(ctx context.Context, entryID string) ([]string, error)
	FetchPropertyDetails(ctx context.Context, propertyID string) (*domain.PropertyRecord, error)
}
