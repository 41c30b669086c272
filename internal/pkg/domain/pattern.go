package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Upstream patterns are written for backtracking engines, so every match is
// bounded by this timeout.
const patternMatchTimeout = 250 * time.Millisecond

// Pattern is a regular expression taken from the knowledge base, compiled once
// when the owning property is ingested. A pattern that failed to compile keeps
// its source text and the compilation error, but is never used for matching.
type Pattern struct {
	source     string
	re         *regexp2.Regexp
	err        error
	firstGroup string
}

// NewPattern compiles an unanchored URL match pattern. An empty source yields nil.
func NewPattern(source string) *Pattern {
	if source == "" {
		return nil
	}
	return compilePattern(source, source)
}

// NewFormatConstraint compiles a format constraint that must match the entire input.
// An empty source yields nil.
func NewFormatConstraint(source string) *Pattern {
	if source == "" {
		return nil
	}
	return compilePattern(source, fmt.Sprintf("^(?:%s)$", source))
}

func compilePattern(source, expr string) *Pattern {
	p := &Pattern{source: source}

	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		p.err = fmt.Errorf("%w: %s", ErrMalformedPattern, err.Error())
		return p
	}

	re.MatchTimeout = patternMatchTimeout
	p.re = re
	p.firstGroup = firstGroupName(expr)

	return p
}

func (p *Pattern) Source() string {
	if p == nil {
		return ""
	}
	return p.source
}

func (p *Pattern) Err() error {
	if p == nil {
		return nil
	}
	return p.err
}

func (p *Pattern) Usable() bool {
	return p != nil && p.re != nil
}

// FirstGroup searches s and returns the first capturing group of the first match.
// It returns false if there is no match, if the pattern has no capturing group or
// if the captured value is empty.
func (p *Pattern) FirstGroup(s string) (string, bool) {
	if !p.Usable() {
		return "", false
	}

	m, err := p.re.FindStringMatch(s)
	if err != nil || m == nil {
		return "", false
	}

	var group *regexp2.Group
	if p.firstGroup != "" {
		group = m.GroupByName(p.firstGroup)
	}
	if group == nil {
		group = m.GroupByNumber(1)
	}

	if group == nil {
		return "", false
	}

	value := group.String()
	return value, value != ""
}

// firstGroupName returns the name of the leftmost capturing group in expr, or ""
// when that group is unnamed. regexp2 numbers named groups after all unnamed ones,
// so group 1 is only the leftmost group when the leftmost group has no name.
func firstGroupName(expr string) string {
	inClass := false

	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; {
		case c == '\\':
			i++
		case inClass:
			inClass = c != ']'
		case c == '[':
			inClass = true
		case c == '(':
			rest := expr[i+1:]
			if !strings.HasPrefix(rest, "?") {
				return ""
			}
			if name, ok := groupName(rest[1:]); ok {
				return name
			}
		}
	}

	return ""
}

// groupName parses the name of a (?<name>...), (?P<name>...) or (?'name'...) group.
// Lookbehinds and other (?...) constructs do not capture.
func groupName(s string) (string, bool) {
	s = strings.TrimPrefix(s, "P")

	var end byte
	switch {
	case strings.HasPrefix(s, "<=") || strings.HasPrefix(s, "<!"):
		return "", false
	case strings.HasPrefix(s, "<"):
		end = '>'
	case strings.HasPrefix(s, "'"):
		end = '\''
	default:
		return "", false
	}

	name, _, ok := strings.Cut(s[1:], string(end))
	if !ok || name == "" {
		return "", false
	}

	return name, true
}

// Matches reports whether s matches the pattern. Unusable patterns never match.
func (p *Pattern) Matches(s string) bool {
	if !p.Usable() {
		return false
	}

	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

func (p *Pattern) String() string {
	return p.Source()
}

func (p *Pattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Source())
}
