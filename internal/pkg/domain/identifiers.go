package domain

import "slices"

//CatalogEntry is a knowledge base item believed to represent a research platform
type CatalogEntry struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

//PropertyRecord describes an external identifier scheme, such as DOI or arXiv ID
type PropertyRecord struct {
	ID                 string   `json:"id"`
	Label              string   `json:"label"`
	Description        string   `json:"description,omitempty"`
	FormatterTemplate  string   `json:"formatterTemplate,omitempty"`
	URLPattern         *Pattern `json:"urlPattern,omitempty"`
	FormatConstraint   *Pattern `json:"formatConstraint,omitempty"`
	ApplicableEntryIDs []string `json:"applicableEntryIds,omitempty"`
	Datatype           string   `json:"datatype,omitempty"`
	RelatedProperties  []string `json:"relatedProperties,omitempty"`
}

const ExternalIdentifierDatatype string = "external-id"

// Usable reports whether the property can take part in extraction at all, i.e. if
// it has a formatter template or a URL pattern that compiled.
func (p PropertyRecord) Usable() bool {
	return p.FormatterTemplate != "" || p.URLPattern.Usable()
}

func (p PropertyRecord) IsExternalIdentifier() bool {
	return p.Datatype == ExternalIdentifierDatatype
}

// AppliesTo reports whether the property declares entryID as one of the items it
// is an identifier for.
func (p PropertyRecord) AppliesTo(entryID string) bool {
	return slices.Contains(p.ApplicableEntryIDs, entryID)
}

//PlatformRecord holds everything known about one research platform
type PlatformRecord struct {
	Domain         string           `json:"domain"`
	CatalogEntries []CatalogEntry   `json:"catalogEntries"`
	Properties     []PropertyRecord `json:"properties"`
}

func NewPlatformRecord(domain string) PlatformRecord {
	return PlatformRecord{
		Domain:         domain,
		CatalogEntries: []CatalogEntry{},
		Properties:     []PropertyRecord{},
	}
}

// AddCatalogEntry appends the entry unless an entry with the same id is already present
func (p *PlatformRecord) AddCatalogEntry(entry CatalogEntry) bool {
	for _, e := range p.CatalogEntries {
		if e.ID == entry.ID {
			return false
		}
	}

	p.CatalogEntries = append(p.CatalogEntries, entry)
	return true
}

// AddProperty appends the property unless a property with the same id is already present
func (p *PlatformRecord) AddProperty(property PropertyRecord) bool {
	if p.HasProperty(property.ID) {
		return false
	}

	p.Properties = append(p.Properties, property)
	return true
}

func (p PlatformRecord) HasProperty(id string) bool {
	_, ok := p.Property(id)
	return ok
}

func (p PlatformRecord) Property(id string) (PropertyRecord, bool) {
	for _, prop := range p.Properties {
		if prop.ID == id {
			return prop, true
		}
	}

	return PropertyRecord{}, false
}

type ExtractionResult struct {
	PropertyID   string `json:"propertyId"`
	RawID        string `json:"rawId"`
	Valid        bool   `json:"valid"`
	CanonicalURL string `json:"canonicalUrl,omitempty"`
}

//ResolutionResult is the aggregate outcome of resolving a single URL
type ResolutionResult struct {
	Domain      string                      `json:"domain"`
	Platform    PlatformRecord              `json:"platform"`
	Extractions map[string]ExtractionResult `json:"extractions"`
}

func NewResolutionResult(platform PlatformRecord) *ResolutionResult {
	return &ResolutionResult{
		Domain:      platform.Domain,
		Platform:    platform,
		Extractions: map[string]ExtractionResult{},
	}
}
