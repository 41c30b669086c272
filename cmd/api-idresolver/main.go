package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/diwise/api-idresolver/internal/pkg/application/services/platforms"
	"github.com/diwise/api-idresolver/internal/pkg/application/services/resolver"
	"github.com/diwise/api-idresolver/internal/pkg/infrastructure/metrics"
	"github.com/diwise/api-idresolver/internal/pkg/infrastructure/wikidata"
	"github.com/diwise/api-idresolver/internal/pkg/presentation"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func openOASFile(ctx context.Context, path string) *os.File {
	log := logging.GetFromContext(ctx)
	oasfile, err := os.Open(path)
	if err != nil {
		log.Info().Msgf("failed to open the OpenAPI specification file %s.", path)
		return nil
	}
	return oasfile
}

func loadPlatformRegistry(ctx context.Context, path string) platforms.Registry {
	log := logging.GetFromContext(ctx)

	if path == "" {
		return platforms.DefaultRegistry()
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msgf("failed to open platform registry %s", path)
	}
	defer f.Close()

	registry, err := platforms.NewRegistry(f)
	if err != nil {
		log.Fatal().Err(err).Msgf("failed to load platform registry %s", path)
	}

	log.Info().Msgf("loaded %d platforms from %s", len(registry.Entries()), path)

	return registry
}

func durationOrDefault(log zerolog.Logger, name string, defaultValue time.Duration) time.Duration {
	value := env.GetVariableOrDefault(log, name, defaultValue.String())

	d, err := time.ParseDuration(value)
	if err != nil {
		log.Fatal().Err(err).Msgf("invalid duration in %s", name)
	}

	return d
}

func intOrDefault(log zerolog.Logger, name string, defaultValue int) int {
	value := env.GetVariableOrDefault(log, name, strconv.Itoa(defaultValue))

	i, err := strconv.Atoi(value)
	if err != nil {
		log.Fatal().Err(err).Msgf("invalid integer in %s", name)
	}

	return i
}

var openApiSpecFileName string
var platformsFileName string

func main() {
	serviceName := "api-idresolver"
	serviceVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion)
	defer cleanup()

	log.Info().Msgf("Starting up %s ...", serviceName)

	flag.StringVar(&openApiSpecFileName, "oas", "/opt/diwise/openapi.json", "An OpenAPI specification to be served on /api/openapi")
	flag.StringVar(&platformsFileName, "platforms", "", "A yaml file with known platforms, replacing the built in table")
	flag.Parse()

	var oasResponseBuffer *bytes.Buffer
	if oasfile := openOASFile(ctx, openApiSpecFileName); oasfile != nil {
		defer oasfile.Close()
		oasResponseBuffer = bytes.NewBuffer(nil)
		written, err := io.Copy(oasResponseBuffer, oasfile)
		if err != nil {
			log.Error().Err(err).Msgf("failed to copy OpenAPI specification into response buffer")
		} else {
			log.Info().Msgf("copied %d bytes from %s into openapi response buffer.", written, openApiSpecFileName)
		}
	}

	kb := wikidata.NewClient(wikidata.Config{
		SPARQLURL: env.GetVariableOrDefault(log, "WIKIDATA_SPARQL_URL", wikidata.DefaultSPARQLURL),
		APIURL:    env.GetVariableOrDefault(log, "WIKIDATA_API_URL", wikidata.DefaultAPIURL),
		UserAgent: env.GetVariableOrDefault(log, "WIKIDATA_USER_AGENT", serviceName+"/"+serviceVersion+" (https://github.com/diwise/api-idresolver)"),
		Timeout:   durationOrDefault(log, "WIKIDATA_TIMEOUT", 10*time.Second),
	})

	defaults := resolver.DefaultConfig()
	cfg := resolver.Config{
		DOIPropertyID: defaults.DOIPropertyID,
		RequestDelay:  durationOrDefault(log, "RESOLVER_REQUEST_DELAY", defaults.RequestDelay),
		MaxInFlight:   intOrDefault(log, "RESOLVER_MAX_IN_FLIGHT", defaults.MaxInFlight),
		Policy: resolver.InclusionPolicy{
			AcceptApplicableSubject:  env.GetVariableOrDefault(log, "RESOLVER_ACCEPT_APPLICABLE_SUBJECT", "true") != "false",
			AcceptExternalIdentifier: env.GetVariableOrDefault(log, "RESOLVER_ACCEPT_EXTERNAL_ID", "true") != "false",
		},
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry := loadPlatformRegistry(ctx, platformsFileName)
	svc := resolver.NewResolver(kb, registry, cfg, metrics.New(reg))

	port := env.GetVariableOrDefault(log, "SERVICE_PORT", "8880")

	app := presentation.NewAPI(ctx, chi.NewRouter(), svc, registry, reg, oasResponseBuffer)
	err := app.Start(port)
	if err != nil {
		log.Fatal().Msgf("failed to start router: %s", err.Error())
	}
}
