package wikidata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diwise/api-idresolver/internal/pkg/domain"
	testutils "github.com/diwise/service-chassis/pkg/test/http"
	"github.com/diwise/service-chassis/pkg/test/http/expects"
	"github.com/diwise/service-chassis/pkg/test/http/response"
	"github.com/matryer/is"
)

func TestFetchPropertyDetails(t *testing.T) {
	is, client, server := testSetup(t, http.StatusOK, openReviewEntity)
	defer server.Close()

	prop, err := client.FetchPropertyDetails(context.Background(), "P8968")
	is.NoErr(err)

	is.Equal(prop.ID, "P8968")
	is.Equal(prop.Label, "OpenReview.net submission ID")
	is.Equal(prop.Description, "identifier for a (meta)data entry on OpenReview.net")
	is.Equal(prop.Datatype, domain.ExternalIdentifierDatatype)
	is.Equal(prop.FormatterTemplate, "https://openreview.net/forum?id=$1")
	is.Equal(prop.ApplicableEntryIDs, []string{"Q90412345"})
	is.Equal(prop.RelatedProperties, []string{"P8967", "P356"})

	is.True(prop.URLPattern.Usable())
	is.Equal(prop.URLPattern.Source(), `^https?:\/\/openreview\.net\/(?:forum|pdf)\?id=([A-Za-z0-9_\-]+)`)
	is.True(prop.FormatConstraint.Usable())
	is.True(prop.FormatConstraint.Matches("et5l9qPUhm"))
}

func TestFetchPropertyDetailsPrefersPreferredAndSkipsDeprecatedClaims(t *testing.T) {
	is, client, server := testSetup(t, http.StatusOK, rankedEntity)
	defer server.Close()

	prop, err := client.FetchPropertyDetails(context.Background(), "P1")
	is.NoErr(err)

	is.Equal(prop.FormatterTemplate, "https://preferred.example.org/$1")
	is.Equal(prop.FormatConstraint, (*domain.Pattern)(nil)) // deprecated constraint should be ignored
	is.Equal(prop.Label, "multilingual label")             // falls back to mul when en is missing
}

func TestFetchPropertyDetailsKeepsEveryApplicableItem(t *testing.T) {
	is, client, server := testSetup(t, http.StatusOK, multiItemEntity)
	defer server.Close()

	prop, err := client.FetchPropertyDetails(context.Background(), "P77")
	is.NoErr(err)

	is.Equal(prop.ApplicableEntryIDs, []string{"Q2", "Q1"}) // deprecated Q3 and the duplicate Q2 should be dropped
	is.True(prop.AppliesTo("Q1"))
	is.True(!prop.AppliesTo("Q3"))
}

func TestFetchPropertyDetailsKeepsMalformedPatterns(t *testing.T) {
	is, client, server := testSetup(t, http.StatusOK, malformedEntity)
	defer server.Close()

	prop, err := client.FetchPropertyDetails(context.Background(), "P2")
	is.NoErr(err) // a malformed pattern must not fail the lookup

	is.True(prop.URLPattern != nil)
	is.True(!prop.URLPattern.Usable())
	is.True(errors.Is(prop.URLPattern.Err(), domain.ErrMalformedPattern))
}

func TestFetchMissingProperty(t *testing.T) {
	is, client, server := testSetup(t, http.StatusOK, `{"entities":{"P999999999":{"id":"P999999999","missing":""}}}`)
	defer server.Close()

	_, err := client.FetchPropertyDetails(context.Background(), "P999999999")
	is.True(errors.Is(err, ErrPropertyNotFound))
}

func TestFetchPropertyWithApiError(t *testing.T) {
	is, client, server := testSetup(t, http.StatusOK, `{"error":{"code":"no-such-entity","info":"Could not find an entity with the ID \"X1\"."}}`)
	defer server.Close()

	_, err := client.FetchPropertyDetails(context.Background(), "X1")
	is.True(errors.Is(err, domain.ErrUpstreamUnavailable))
}

func TestFetchPropertyWithServerFailure(t *testing.T) {
	is, client, server := testSetup(t, http.StatusInternalServerError, "")
	defer server.Close()

	_, err := client.FetchPropertyDetails(context.Background(), "P8968")
	is.True(errors.Is(err, domain.ErrUpstreamUnavailable))
}

func TestFetchPropertyWithMalformedResponse(t *testing.T) {
	is, client, server := testSetup(t, http.StatusOK, `{"entities": [`)
	defer server.Close()

	_, err := client.FetchPropertyDetails(context.Background(), "P8968")
	is.True(errors.Is(err, domain.ErrUpstreamUnavailable))
}

func TestFindEntriesByWebsiteSubstring(t *testing.T) {
	is := is.New(t)

	var query, format, userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("query")
		format = r.URL.Query().Get("format")
		userAgent = r.Header.Get("User-Agent")

		w.Header().Add("Content-Type", "application/sparql-results+json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(entriesResponse))
	}))
	defer server.Close()

	client := NewClient(Config{SPARQLURL: server.URL + "/sparql"})
	entries, err := client.FindEntriesByWebsiteSubstring(context.Background(), "openreview.net")
	is.NoErr(err)

	is.True(strings.Contains(query, `CONTAINS(STR(?website), "openreview.net")`))
	is.Equal(format, "json")
	is.True(userAgent != "")
	is.Equal(len(entries), 2) // duplicate bindings for the same item should be merged
	is.Equal(entries[0].ID, "Q90412345")
	is.Equal(entries[0].Label, "OpenReview.net")
	is.Equal(entries[0].Website, "https://openreview.net/")
	is.Equal(entries[1].ID, "Q7")
	is.Equal(entries[1].Description, "")
}

func TestThatHostIsEscapedInSparql(t *testing.T) {
	is := is.New(t)
	is.Equal(sparqlString(`a"b\c`), `"a\"b\\c"`)
}

func TestFindPropertiesLinkedToEntry(t *testing.T) {
	is := is.New(t)

	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("query")
		w.Header().Add("Content-Type", "application/sparql-results+json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(propertiesResponse))
	}))
	defer server.Close()

	client := NewClient(Config{SPARQLURL: server.URL})
	props, err := client.FindPropertiesLinkedToEntry(context.Background(), "Q90412345")
	is.NoErr(err)

	is.True(strings.Contains(query, "wdt:P1629 wd:Q90412345"))
	is.Equal(props, []string{"P8968", "P8969"})
}

func TestFindPropertiesLinkedToInvalidEntry(t *testing.T) {
	is := is.New(t)

	client := NewClient(Config{SPARQLURL: "http://127.0.0.1:0"})
	_, err := client.FindPropertiesLinkedToEntry(context.Background(), "Q1 } . ?x ?y ?z")
	is.True(errors.Is(err, domain.ErrInvalidIdentifier))
	is.True(!errors.Is(err, domain.ErrUpstreamUnavailable)) // bad input is not an upstream failure
}

func TestThatCancelledContextIsReportedAsUnavailable(t *testing.T) {
	is, client, server := testSetup(t, http.StatusOK, openReviewEntity)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchPropertyDetails(ctx, "P8968")
	is.True(errors.Is(err, domain.ErrUpstreamUnavailable))
}

var Expects = testutils.Expects
var Returns = testutils.Returns
var anyInput = expects.AnyInput

func testSetup(t *testing.T, statusCode int, responseBody string) (*is.I, *Client, testutils.MockService) {
	is := is.New(t)

	ms := testutils.NewMockServiceThat(
		Expects(is, anyInput()),
		Returns(
			response.Code(statusCode),
			response.ContentType("application/json"),
			response.Body([]byte(responseBody)),
		),
	)

	client := NewClient(Config{
		SPARQLURL: ms.URL() + "/sparql",
		APIURL:    ms.URL() + "/w/api.php",
	})

	return is, client, ms
}

const openReviewEntity string = `{"entities":{"P8968":{"type":"property","datatype":"external-id","id":"P8968",
"labels":{"en":{"language":"en","value":"OpenReview.net submission ID"}},
"descriptions":{"en":{"language":"en","value":"identifier for a (meta)data entry on OpenReview.net"}},
"claims":{
 "P1630":[{"mainsnak":{"snaktype":"value","property":"P1630","datavalue":{"value":"https://openreview.net/forum?id=$1","type":"string"}},"rank":"normal"}],
 "P8966":[{"mainsnak":{"snaktype":"value","property":"P8966","datavalue":{"value":"^https?:\\/\\/openreview\\.net\\/(?:forum|pdf)\\?id=([A-Za-z0-9_\\-]+)","type":"string"}},"rank":"normal"}],
 "P2302":[
  {"mainsnak":{"snaktype":"value","property":"P2302","datavalue":{"value":{"entity-type":"item","numeric-id":21503250,"id":"Q21503250"},"type":"wikibase-entityid"}},"rank":"normal"},
  {"mainsnak":{"snaktype":"value","property":"P2302","datavalue":{"value":{"entity-type":"item","numeric-id":21502404,"id":"Q21502404"},"type":"wikibase-entityid"}},"rank":"normal",
   "qualifiers":{"P1793":[{"snaktype":"value","property":"P1793","datavalue":{"value":"[A-Za-z0-9_\\-]{6,}","type":"string"}}]}}
 ],
 "P1659":[
  {"mainsnak":{"snaktype":"value","property":"P1659","datavalue":{"value":{"entity-type":"property","id":"P8967"},"type":"wikibase-entityid"}},"rank":"normal"},
  {"mainsnak":{"snaktype":"value","property":"P1659","datavalue":{"value":{"entity-type":"property","id":"P356"},"type":"wikibase-entityid"}},"rank":"normal"}
 ],
 "P1629":[{"mainsnak":{"snaktype":"value","property":"P1629","datavalue":{"value":{"entity-type":"item","id":"Q90412345"},"type":"wikibase-entityid"}},"rank":"normal"}]
}}}}`

const rankedEntity string = `{"entities":{"P1":{"datatype":"external-id","id":"P1",
"labels":{"mul":{"language":"mul","value":"multilingual label"}},
"claims":{
 "P1630":[
  {"mainsnak":{"snaktype":"value","datavalue":{"value":"https://normal.example.org/$1","type":"string"}},"rank":"normal"},
  {"mainsnak":{"snaktype":"value","datavalue":{"value":"https://preferred.example.org/$1","type":"string"}},"rank":"preferred"}
 ],
 "P2302":[
  {"mainsnak":{"snaktype":"value","datavalue":{"value":{"id":"Q21502404"},"type":"wikibase-entityid"}},"rank":"deprecated",
   "qualifiers":{"P1793":[{"snaktype":"value","datavalue":{"value":"\\d+","type":"string"}}]}}
 ]
}}}}`

const multiItemEntity string = `{"entities":{"P77":{"datatype":"string","id":"P77",
"labels":{"en":{"language":"en","value":"several items"}},
"claims":{
 "P1630":[{"mainsnak":{"snaktype":"value","datavalue":{"value":"https://example.org/items/$1","type":"string"}},"rank":"normal"}],
 "P1629":[
  {"mainsnak":{"snaktype":"value","datavalue":{"value":{"entity-type":"item","id":"Q2"},"type":"wikibase-entityid"}},"rank":"normal"},
  {"mainsnak":{"snaktype":"value","datavalue":{"value":{"entity-type":"item","id":"Q3"},"type":"wikibase-entityid"}},"rank":"deprecated"},
  {"mainsnak":{"snaktype":"value","datavalue":{"value":{"entity-type":"item","id":"Q1"},"type":"wikibase-entityid"}},"rank":"normal"},
  {"mainsnak":{"snaktype":"value","datavalue":{"value":{"entity-type":"item","id":"Q2"},"type":"wikibase-entityid"}},"rank":"normal"}
 ]
}}}}`

const malformedEntity string = `{"entities":{"P2":{"datatype":"external-id","id":"P2",
"labels":{"en":{"language":"en","value":"broken"}},
"claims":{
 "P8966":[{"mainsnak":{"snaktype":"value","datavalue":{"value":"example\\.org/([a-z+","type":"string"}},"rank":"normal"}]
}}}}`

const entriesResponse string = `{"head":{"vars":["item","itemLabel","itemDescription","website"]},"results":{"bindings":[
{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q90412345"},"website":{"type":"uri","value":"https://openreview.net/"},"itemLabel":{"xml:lang":"en","type":"literal","value":"OpenReview.net"},"itemDescription":{"xml:lang":"en","type":"literal","value":"open peer review platform"}},
{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q90412345"},"website":{"type":"uri","value":"https://www.openreview.net/"},"itemLabel":{"xml:lang":"en","type":"literal","value":"OpenReview.net"}},
{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q7"},"website":{"type":"uri","value":"https://docs.openreview.net/"},"itemLabel":{"xml:lang":"en","type":"literal","value":"OpenReview docs"}}
]}}`

const propertiesResponse string = `{"head":{"vars":["property"]},"results":{"bindings":[
{"property":{"type":"uri","value":"http://www.wikidata.org/entity/P8968"}},
{"property":{"type":"uri","value":"http://www.wikidata.org/entity/P8969"}}
]}}`
