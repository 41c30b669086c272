package wikidata

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/diwise/api-idresolver/internal/pkg/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
)

const (
	formatterURL       string = "P1630"
	urlMatchPattern    string = "P8966"
	propertyConstraint string = "P2302"
	formatAsRegex      string = "P1793"
	relatedProperty    string = "P1659"

	formatConstraintItem string = "Q21502404"
)

var ErrPropertyNotFound = errors.New("property not found")

type entitiesResponse struct {
	Entities map[string]entity `json:"entities"`
	Error    *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error,omitempty"`
}

type entity struct {
	ID           string                   `json:"id"`
	Datatype     string                   `json:"datatype"`
	Missing      *string                  `json:"missing,omitempty"`
	Labels       map[string]languageValue `json:"labels"`
	Descriptions map[string]languageValue `json:"descriptions"`
	Claims       map[string][]claim       `json:"claims"`
}

type languageValue struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

type claim struct {
	Mainsnak   snak              `json:"mainsnak"`
	Rank       string            `json:"rank"`
	Qualifiers map[string][]snak `json:"qualifiers"`
}

type snak struct {
	Snaktype  string `json:"snaktype"`
	Property  string `json:"property"`
	Datavalue *struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	} `json:"datavalue,omitempty"`
}

func (s snak) stringValue() (string, bool) {
	if s.Datavalue == nil {
		return "", false
	}

	var value string
	if err := json.Unmarshal(s.Datavalue.Value, &value); err != nil {
		return "", false
	}

	return value, value != ""
}

func (s snak) entityIDValue() (string, bool) {
	if s.Datavalue == nil {
		return "", false
	}

	value := struct {
		ID string `json:"id"`
	}{}
	if err := json.Unmarshal(s.Datavalue.Value, &value); err != nil {
		return "", false
	}

	return value.ID, value.ID != ""
}

// FetchPropertyDetails retrieves a property entity and converts it into a property
// record. Upstream patterns are compiled here, once, and compilation failures are
// logged as warnings.
func (c *Client) FetchPropertyDetails(ctx context.Context, propertyID string) (property *domain.PropertyRecord, err error) {
	ctx, span := tracer.Start(ctx, "fetch-property-details")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	params := url.Values{}
	params.Add("action", "wbgetentities")
	params.Add("format", "json")
	params.Add("ids", propertyID)
	params.Add("props", "labels|descriptions|claims|datatype")

	response := entitiesResponse{}
	err = c.get(ctx, c.cfg.APIURL, params, "application/json", &response)
	if err != nil {
		return nil, err
	}

	if response.Error != nil {
		err = fmt.Errorf("%w: %s (%s)", domain.ErrUpstreamUnavailable, response.Error.Info, response.Error.Code)
		return nil, err
	}

	e, ok := response.Entities[propertyID]
	if !ok || e.Missing != nil {
		err = fmt.Errorf("%w: %s", ErrPropertyNotFound, propertyID)
		return nil, err
	}

	property = c.newPropertyRecord(ctx, e)
	return property, nil
}

func (c *Client) newPropertyRecord(ctx context.Context, e entity) *domain.PropertyRecord {
	log := logging.GetFromContext(ctx)

	p := &domain.PropertyRecord{
		ID:                e.ID,
		Label:             c.inLanguage(e.Labels),
		Description:       c.inLanguage(e.Descriptions),
		Datatype:          e.Datatype,
		RelatedProperties: []string{},
	}

	if v, ok := firstString(e.Claims[formatterURL]); ok {
		p.FormatterTemplate = v
	}

	if v, ok := firstString(e.Claims[urlMatchPattern]); ok {
		p.URLPattern = domain.NewPattern(v)
		if err := p.URLPattern.Err(); err != nil {
			log.Warn().Err(err).Str("property", e.ID).Str("pattern", v).Msg("url pattern does not compile")
		}
	}

	if v, ok := formatConstraint(e.Claims[propertyConstraint]); ok {
		p.FormatConstraint = domain.NewFormatConstraint(v)
		if err := p.FormatConstraint.Err(); err != nil {
			log.Warn().Err(err).Str("property", e.ID).Str("constraint", v).Msg("format constraint does not compile")
		}
	}

	for _, cl := range ranked(e.Claims[relatedProperty]) {
		if id, ok := cl.Mainsnak.entityIDValue(); ok && !slices.Contains(p.RelatedProperties, id) {
			p.RelatedProperties = append(p.RelatedProperties, id)
		}
	}

	for _, cl := range ranked(e.Claims[itemOfProperty]) {
		if id, ok := cl.Mainsnak.entityIDValue(); ok && !slices.Contains(p.ApplicableEntryIDs, id) {
			p.ApplicableEntryIDs = append(p.ApplicableEntryIDs, id)
		}
	}

	return p
}

func (c *Client) inLanguage(values map[string]languageValue) string {
	for _, lang := range []string{c.cfg.Language, "mul", DefaultLanguage} {
		if v, ok := values[lang]; ok {
			return v.Value
		}
	}
	return ""
}

func firstString(claims []claim) (string, bool) {
	for _, cl := range ranked(claims) {
		if v, ok := cl.Mainsnak.stringValue(); ok {
			return v, true
		}
	}
	return "", false
}

func formatConstraint(claims []claim) (string, bool) {
	for _, cl := range ranked(claims) {
		if id, ok := cl.Mainsnak.entityIDValue(); !ok || id != formatConstraintItem {
			continue
		}

		for _, q := range cl.Qualifiers[formatAsRegex] {
			if v, ok := q.stringValue(); ok {
				return v, true
			}
		}
	}
	return "", false
}

// ranked drops deprecated claims and moves preferred claims first, keeping the
// upstream order otherwise.
func ranked(claims []claim) []claim {
	result := make([]claim, 0, len(claims))
	for _, cl := range claims {
		if cl.Rank != "deprecated" {
			result = append(result, cl)
		}
	}

	slices.SortStableFunc(result, func(a, b claim) int {
		return cmp.Compare(rankOrder(a.Rank), rankOrder(b.Rank))
	})

	return result
}

func rankOrder(rank string) int {
	if rank == "preferred" {
		return 0
	}
	return 1
}
