package wikidata

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/diwise/api-idresolver/internal/pkg/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
)

const (
	officialWebsite string = "P856"
	itemOfProperty  string = "P1629"
)

var itemIDPattern = regexp.MustCompile(`^Q[1-9][0-9]*$`)

const entriesByWebsiteQuery string = `SELECT ?item ?itemLabel ?itemDescription ?website WHERE {
  ?item wdt:%s ?website .
  FILTER(CONTAINS(STR(?website), %s))
  SERVICE wikibase:label { bd:serviceParam wikibase:language "[AUTO_LANGUAGE],%s". }
}`

const propertiesLinkedToEntryQuery string = `SELECT DISTINCT ?property WHERE {
  ?property wdt:%s wd:%s .
} ORDER BY ?property`

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

type sparqlValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// FindEntriesByWebsiteSubstring returns the items whose official website contains host.
// This is a substring match and will include subdomains and sub paths.
func (c *Client) FindEntriesByWebsiteSubstring(ctx context.Context, host string) (entries []domain.CatalogEntry, err error) {
	ctx, span := tracer.Start(ctx, "find-entries-by-website")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	query := fmt.Sprintf(entriesByWebsiteQuery, officialWebsite, sparqlString(host), c.cfg.Language)

	bindings, err := c.query(ctx, query)
	if err != nil {
		return nil, err
	}

	entries = []domain.CatalogEntry{}
	seen := map[string]struct{}{}

	for _, b := range bindings {
		id := entityID(b["item"].Value)
		if id == "" {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		entries = append(entries, domain.CatalogEntry{
			ID:          id,
			Label:       b["itemLabel"].Value,
			Description: b["itemDescription"].Value,
			Website:     b["website"].Value,
		})
	}

	return entries, nil
}

// FindPropertiesLinkedToEntry returns the ids of the properties that declare entryID
// as their subject item.
func (c *Client) FindPropertiesLinkedToEntry(ctx context.Context, entryID string) (properties []string, err error) {
	ctx, span := tracer.Start(ctx, "find-properties-linked-to-entry")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if !itemIDPattern.MatchString(entryID) {
		err = fmt.Errorf("%w: invalid item id %q", domain.ErrInvalidIdentifier, entryID)
		return nil, err
	}

	bindings, err := c.query(ctx, fmt.Sprintf(propertiesLinkedToEntryQuery, itemOfProperty, entryID))
	if err != nil {
		return nil, err
	}

	properties = []string{}
	for _, b := range bindings {
		if id := entityID(b["property"].Value); id != "" {
			properties = append(properties, id)
		}
	}

	return properties, nil
}

func (c *Client) query(ctx context.Context, query string) ([]map[string]sparqlValue, error) {
	params := url.Values{}
	params.Add("query", query)
	params.Add("format", "json")

	response := sparqlResponse{}
	err := c.get(ctx, c.cfg.SPARQLURL, params, "application/sparql-results+json", &response)
	if err != nil {
		return nil, err
	}

	return response.Results.Bindings, nil
}

// entityID returns the last path segment of an entity uri such as
// http://www.wikidata.org/entity/Q123
func entityID(uri string) string {
	if uri == "" {
		return ""
	}
	return uri[strings.LastIndex(uri, "/")+1:]
}

func sparqlString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}
