package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/diwise/api-idresolver/internal/pkg/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("api-idresolver/infra/wikidata")

const (
	DefaultSPARQLURL string = "https://query.wikidata.org/sparql"
	DefaultAPIURL    string = "https://www.wikidata.org/w/api.php"
	DefaultLanguage  string = "en"
)

type Config struct {
	SPARQLURL string
	APIURL    string
	UserAgent string
	Language  string
	Timeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		SPARQLURL: DefaultSPARQLURL,
		APIURL:    DefaultAPIURL,
		UserAgent: "api-idresolver (https://github.com/diwise/api-idresolver)",
		Language:  DefaultLanguage,
		Timeout:   10 * time.Second,
	}
}

// Client answers catalog and identifier property questions using the Wikidata
// query service and the Wikibase action API.
type Client struct {
	cfg        Config
	httpClient http.Client
}

func NewClient(cfg Config) *Client {
	defaults := DefaultConfig()

	if cfg.SPARQLURL == "" {
		cfg.SPARQLURL = defaults.SPARQLURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaults.APIURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.Language == "" {
		cfg.Language = defaults.Language
	}

	return &Client{
		cfg: cfg,
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, accept string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %s", domain.ErrUpstreamUnavailable, err.Error())
	}

	req.Header.Add("Accept", accept)
	req.Header.Add("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to send request: %s", domain.ErrUpstreamUnavailable, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %s", domain.ErrUpstreamUnavailable, err.Error())
	}

	if resp.StatusCode >= http.StatusBadRequest {
		reqbytes, _ := httputil.DumpRequest(req, false)
		respbytes, _ := httputil.DumpResponse(resp, false)

		log := logging.GetFromContext(ctx)
		log.Warn().Str("request", string(reqbytes)).Str("response", string(respbytes)).Msg("request failed")
		return fmt.Errorf("%w: request failed with status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		contentType := resp.Header.Get("Content-Type")
		return fmt.Errorf("%w: knowledge base returned status code %d (content-type: %s)", domain.ErrUpstreamUnavailable, resp.StatusCode, contentType)
	}

	err = json.Unmarshal(respBody, result)
	if err != nil {
		return fmt.Errorf("%w: failed to unmarshal response: %s", domain.ErrUpstreamUnavailable, err.Error())
	}

	return nil
}
