package resolver

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/diwise/api-idresolver/internal/pkg/domain"
)

// ResolveDomain returns the lowercase host of rawURL, without port or trailing dot
func ResolveDomain(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrMalformedInput, err.Error())
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", fmt.Errorf("%w: no host in %q", domain.ErrMalformedInput, rawURL)
	}

	return host, nil
}

// NormalisePropertyID accepts property ids such as P8968, p8968 or 8968 and
// returns them in their canonical P-prefixed form.
func NormalisePropertyID(id string) (string, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	digits := strings.TrimPrefix(id, "P")

	if digits == "" || digits[0] == '0' {
		return "", false
	}

	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", false
		}
	}

	return "P" + digits, true
}
