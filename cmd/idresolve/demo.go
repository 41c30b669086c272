package main

import (
	"fmt"
	"net/url"

	"github.com/diwise/api-idresolver/internal/pkg/application/services/platforms"
	"github.com/diwise/api-idresolver/internal/pkg/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/spf13/cobra"
)

type sample struct {
	name     string
	url      string
	property string
}

var samples = []sample{
	{name: "openreview", url: "https://openreview.net/forum?id=et5l9qPUhm", property: platforms.OpenReviewPropertyID},
	{name: "arxiv", url: "https://arxiv.org/abs/2310.06825", property: platforms.ArXivPropertyID},
	{name: "doi", url: "https://doi.org/10.1038/s41586-021-03819-2", property: platforms.DOIPropertyID},
}

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "demo [openreview|arxiv|doi|all]",
		Short:     "Resolve a set of sample urls",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"openreview", "arxiv", "doi", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.GetFromContext(ctx)

			which := "all"
			if len(args) == 1 {
				which = args[0]
			}

			r, _, err := a.newResolver()
			if err != nil {
				return err
			}

			for _, s := range samples {
				if which != "all" && which != s.name {
					continue
				}

				log.Info().Str("sample", s.name).Str("url", s.url).Msg("resolving sample")

				result, err := r.Resolve(ctx, s.url, s.property)
				if err != nil {
					return err
				}

				if err := writeResult(a.out, result); err != nil {
					return err
				}

				for _, e := range result.Extractions {
					if followUp, ok := followUpURL(e); ok {
						log.Info().Str("property", e.PropertyID).Str("id", e.RawID).Msgf("metadata available at %s", followUp)
					}
				}
			}

			return nil
		},
	}
}

// followUpURL returns an api url where more metadata about an extracted
// identifier can be found.
func followUpURL(e domain.ExtractionResult) (string, bool) {
	switch e.PropertyID {
	case platforms.ArXivPropertyID:
		return fmt.Sprintf("http://export.arxiv.org/api/query?id_list=%s", url.QueryEscape(e.RawID)), true
	case platforms.DOIPropertyID:
		return fmt.Sprintf("https://api.crossref.org/works/%s", e.RawID), true
	}
	return "", false
}
