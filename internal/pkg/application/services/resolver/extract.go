package resolver

import (
	"regexp"
	"strings"

	"github.com/diwise/api-idresolver/internal/pkg/domain"
)

// DOI shaped suffix, used when no property pattern extracts anything on a
// DOI resolution domain.
var doiSuffix = regexp.MustCompile(`(10\.\d+/[^\s/]+)$`)

// Extract applies the url pattern of property to rawURL and returns the first
// capturing group of the first match.
func Extract(rawURL string, property domain.PropertyRecord) (string, bool) {
	return property.URLPattern.FirstGroup(rawURL)
}

// ExtractDOI returns the DOI at the end of rawURL, if any
func ExtractDOI(rawURL string) (string, bool) {
	m := doiSuffix.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Validate reports whether rawID fully matches constraint. A missing constraint
// accepts anything, while a constraint that did not compile accepts nothing.
func Validate(rawID string, constraint *domain.Pattern) bool {
	if constraint == nil {
		return true
	}

	if !constraint.Usable() {
		return false
	}

	return constraint.Matches(rawID)
}

// FormatURL substitutes rawID for the first $1 in template
func FormatURL(template, rawID string) string {
	return strings.Replace(template, "$1", rawID, 1)
}
