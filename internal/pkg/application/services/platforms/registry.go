package platforms

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v2"
)

// Registry maps well known platform domains to identifier property ids,
// allowing resolution to skip the discovery queries for those domains.
type Registry interface {
	Lookup(domain string) []string
	Entries() []Entry
}

type Entry struct {
	Domain     string   `json:"domain" yaml:"domain"`
	Properties []string `json:"properties" yaml:"properties"`
}

const (
	DOIPropertyID        string = "P356"
	ArXivPropertyID      string = "P818"
	ORCIDPropertyID      string = "P496"
	OpenReviewPropertyID string = "P8968"
)

var defaultTable = []Entry{
	{Domain: "doi.org", Properties: []string{DOIPropertyID}},
	{Domain: "dx.doi.org", Properties: []string{DOIPropertyID}},
	{Domain: "orcid.org", Properties: []string{ORCIDPropertyID}},
	{Domain: "arxiv.org", Properties: []string{ArXivPropertyID}},
	{Domain: "export.arxiv.org", Properties: []string{ArXivPropertyID}},
	{Domain: "openreview.net", Properties: []string{OpenReviewPropertyID}},
	{Domain: "pubmed.ncbi.nlm.nih.gov", Properties: []string{"P698"}},
	{Domain: "zenodo.org", Properties: []string{"P4901"}},
	{Domain: "dblp.org", Properties: []string{"P2456"}},
	{Domain: "www.semanticscholar.org", Properties: []string{"P4011", "P4012"}},
	{Domain: "scholar.google.com", Properties: []string{"P1960"}},
}

// DefaultRegistry returns a registry seeded with the built in table of platforms
func DefaultRegistry() Registry {
	r, _ := NewRegistryFromEntries(defaultTable)
	return r
}

// NewRegistry reads a registry table in yaml format from input
func NewRegistry(input io.Reader) (Registry, error) {
	buf, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read platform registry: %s", err.Error())
	}

	cfg := struct {
		Platforms []Entry `yaml:"platforms"`
	}{}

	err = yaml.Unmarshal(buf, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse platform registry: %s", err.Error())
	}

	return NewRegistryFromEntries(cfg.Platforms)
}

// NewRegistryFromEntries builds a registry from a table of entries. Domains are
// normalised and entries for the same domain are merged in order of appearance.
func NewRegistryFromEntries(entries []Entry) (Registry, error) {
	r := &registry{
		table: map[string][]string{},
	}

	for _, e := range entries {
		domain := NormaliseDomain(e.Domain)
		if domain == "" {
			return nil, fmt.Errorf("platform registry entry without a domain")
		}

		props := r.table[domain]
		for _, p := range e.Properties {
			p = strings.TrimSpace(p)
			if p != "" && !slices.Contains(props, p) {
				props = append(props, p)
			}
		}

		r.table[domain] = props
	}

	return r, nil
}

func NormaliseDomain(domain string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
}

type registry struct {
	table map[string][]string
}

func (r *registry) Lookup(domain string) []string {
	props, ok := r.table[domain]
	if !ok {
		return []string{}
	}

	return slices.Clone(props)
}

func (r *registry) Entries() []Entry {
	domains := maps.Keys(r.table)
	slices.Sort(domains)

	entries := make([]Entry, 0, len(domains))
	for _, d := range domains {
		entries = append(entries, Entry{Domain: d, Properties: slices.Clone(r.table[d])})
	}

	return entries
}
