package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/diwise/api-idresolver/internal/pkg/application/services/resolver"
	"github.com/diwise/api-idresolver/internal/pkg/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("api-idresolver/api")

func NewRetrieveIdentifiersHandler(logger zerolog.Logger, svc resolver.Resolver) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		ctx, span := tracer.Start(r.Context(), "retrieve-identifiers")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		_, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logger, ctx)

		target := r.URL.Query().Get("url")
		if target == "" {
			err = fmt.Errorf("no url supplied in query")
			log.Error().Err(err).Msg("bad request")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		result, err := svc.Resolve(ctx, target, r.URL.Query().Get("property"))
		if err != nil {
			if errors.Is(err, domain.ErrMalformedInput) {
				log.Error().Err(err).Msg("bad request")
				w.WriteHeader(http.StatusBadRequest)
				return
			}

			log.Error().Err(err).Msg("failed to resolve identifiers")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		body, err := json.Marshal(struct {
			Data *domain.ResolutionResult `json:"data"`
		}{Data: result})
		if err != nil {
			log.Error().Err(err).Msg("failed to marshal resolution result")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.Header().Add("Cache-Control", "no-cache")
		w.Write(body)
	})
}
