package presentation

import (
	"bytes"
	"compress/flate"
	"context"
	"net/http"

	"github.com/diwise/api-idresolver/internal/pkg/application/services/platforms"
	"github.com/diwise/api-idresolver/internal/pkg/application/services/resolver"
	"github.com/diwise/api-idresolver/internal/pkg/presentation/handlers"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riandyrn/otelchi"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type API interface {
	Start(port string) error
}

type idresolverAPI struct {
	router chi.Router
	log    zerolog.Logger
}

func NewAPI(ctx context.Context, r chi.Router, svc resolver.Resolver, registry platforms.Registry, gatherer prometheus.Gatherer, openapiResponse *bytes.Buffer) API {
	return newIDResolverAPI(ctx, r, svc, registry, gatherer, openapiResponse)
}

func newIDResolverAPI(ctx context.Context, r chi.Router, svc resolver.Resolver, registry platforms.Registry, gatherer prometheus.Gatherer, openapiResponse *bytes.Buffer) *idresolverAPI {
	log := logging.GetFromContext(ctx)

	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		Debug:            false,
	}).Handler)

	// Enable gzip compression for our responses
	compressor := middleware.NewCompressor(
		flate.DefaultCompression,
		"application/json",
	)
	r.Use(compressor.Handler)
	r.Use(otelchi.Middleware("api-idresolver", otelchi.WithChiRoutes(r)))

	a := &idresolverAPI{
		router: r,
		log:    log,
	}

	a.addProbeHandlers(r, gatherer)

	r.Get("/api/identifiers", handlers.NewRetrieveIdentifiersHandler(log, svc))
	r.Get("/api/platforms", handlers.NewRetrievePlatformsHandler(log, registry))

	r.Get("/api/api-docs", a.newRetrieveOpenAPIHandler(openapiResponse))
	r.Get("/api/openapi", a.newRetrieveOpenAPIHandler(openapiResponse))

	return a
}

func (a *idresolverAPI) Start(port string) error {
	a.log.Info().Msgf("Starting api-idresolver on port:%s", port)
	return http.ListenAndServe(":"+port, a.router)
}

func (a *idresolverAPI) addProbeHandlers(r chi.Router, gatherer prometheus.Gatherer) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}

func (a *idresolverAPI) newRetrieveOpenAPIHandler(openapiResponse *bytes.Buffer) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if openapiResponse == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(openapiResponse.Bytes())
	})
}
