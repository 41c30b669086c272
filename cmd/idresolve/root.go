package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/diwise/api-idresolver/internal/pkg/application/services/platforms"
	"github.com/diwise/api-idresolver/internal/pkg/application/services/resolver"
	"github.com/diwise/api-idresolver/internal/pkg/infrastructure/wikidata"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries what the commands share. A nil kb means a Wikidata client is
// created from the configuration.
type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
	kb     resolver.KnowledgeBase
}

func newRootCmd(a *app, version string) *cobra.Command {
	var cfgFile string

	a.v = viper.New()

	rootCmd := &cobra.Command{
		Use:           "idresolve",
		Short:         "Resolve research artifact URLs to canonical identifiers",
		Long:          `Resolve URLs of papers, datasets and profiles to external identifiers such as DOI, arXiv ID or ORCID using Wikidata.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(cmd, cfgFile); err != nil {
				return err
			}
			return a.initLogging(cmd)
		},
	}

	defaults := resolver.DefaultConfig()
	wd := wikidata.DefaultConfig()

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file in yaml format")
	flags.String("sparql-url", wd.SPARQLURL, "Wikidata query service endpoint")
	flags.String("api-url", wd.APIURL, "Wikibase action api endpoint")
	flags.String("user-agent", "idresolve/"+version+" (https://github.com/diwise/api-idresolver)", "user agent sent to Wikidata")
	flags.Duration("timeout", wd.Timeout, "timeout of each request to Wikidata")
	flags.Duration("request-delay", defaults.RequestDelay, "minimum delay between property lookups")
	flags.Int("max-in-flight", defaults.MaxInFlight, "maximum number of concurrent property lookups")
	flags.String("platforms", "", "yaml file with known platforms, replacing the built in table")
	flags.Bool("accept-applicable-subject", defaults.Policy.AcceptApplicableSubject, "keep discovered properties that apply to the platform item")
	flags.Bool("accept-external-id", defaults.Policy.AcceptExternalIdentifier, "keep discovered properties with the external-id datatype")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	rootCmd.AddCommand(newResolveCmd(a), newDemoCmd(a), newPlatformsCmd(a))

	return rootCmd
}

func (a *app) initConfig(cmd *cobra.Command, cfgFile string) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	a.v.SetEnvPrefix("IDRESOLVE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	return nil
}

func (a *app) initLogging(cmd *cobra.Command) error {
	level, err := zerolog.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: a.errOut, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.SetContext(logging.NewContextWithLogger(ctx, logger))

	return nil
}

func (a *app) registry() (platforms.Registry, error) {
	path := a.v.GetString("platforms")
	if path == "" {
		return platforms.DefaultRegistry(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open platform registry: %w", err)
	}
	defer f.Close()

	return platforms.NewRegistry(f)
}

func (a *app) newResolver() (resolver.Resolver, platforms.Registry, error) {
	registry, err := a.registry()
	if err != nil {
		return nil, nil, err
	}

	kb := a.kb
	if kb == nil {
		kb = wikidata.NewClient(wikidata.Config{
			SPARQLURL: a.v.GetString("sparql-url"),
			APIURL:    a.v.GetString("api-url"),
			UserAgent: a.v.GetString("user-agent"),
			Timeout:   a.v.GetDuration("timeout"),
		})
	}

	cfg := resolver.DefaultConfig()
	cfg.RequestDelay = a.v.GetDuration("request-delay")
	cfg.MaxInFlight = a.v.GetInt("max-in-flight")
	cfg.Policy = resolver.InclusionPolicy{
		AcceptApplicableSubject:  a.v.GetBool("accept-applicable-subject"),
		AcceptExternalIdentifier: a.v.GetBool("accept-external-id"),
	}

	return resolver.NewResolver(kb, registry, cfg, nil), registry, nil
}
