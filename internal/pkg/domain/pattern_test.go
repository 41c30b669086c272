package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestThatEmptySourceYieldsNoPattern(t *testing.T) {
	is := is.New(t)

	is.True(NewPattern("") == nil)          // empty pattern should be absent
	is.True(NewFormatConstraint("") == nil) // empty constraint should be absent
	is.True(!NewPattern("").Usable())      // absent pattern must not be usable
}

func TestFirstGroupOfUnanchoredPattern(t *testing.T) {
	is := is.New(t)

	p := NewPattern(`^https?://openreview\.net/forum\?id=([A-Za-z0-9_\-]+)`)
	is.True(p.Usable())

	id, ok := p.FirstGroup("https://openreview.net/forum?id=et5l9qPUhm")
	is.True(ok)
	is.Equal(id, "et5l9qPUhm")
}

func TestFirstGroupIsTheLeftmostGroupEvenWhenNamed(t *testing.T) {
	is := is.New(t)

	id, ok := NewPattern(`x/(?<id>[a-z]+)/(\d+)`).FirstGroup("https://e.org/x/abc/123")
	is.True(ok)
	is.Equal(id, "abc")

	id, ok = NewPattern(`x/(?'id'[a-z]+)/(\d+)`).FirstGroup("https://e.org/x/abc/123")
	is.True(ok)
	is.Equal(id, "abc")

	id, ok = NewPattern(`x/([a-z]+)/(?<n>\d+)`).FirstGroup("https://e.org/x/abc/123")
	is.True(ok)
	is.Equal(id, "abc")

	// lookbehinds, escaped parens and parens in character classes do not capture
	id, ok = NewPattern(`(?<=x/)[\(]?\(?(?<id>[a-z]+)/(\d+)`).FirstGroup("https://e.org/x/abc/123")
	is.True(ok)
	is.Equal(id, "abc")
}

func TestFirstGroupSearchesInsideTheString(t *testing.T) {
	is := is.New(t)

	p := NewPattern(`arxiv\.org/abs/(\d{4}\.\d{4,5})`)
	id, ok := p.FirstGroup("https://arxiv.org/abs/2310.06825v2")
	is.True(ok)
	is.Equal(id, "2310.06825")
}

func TestFirstGroupWithoutCapturingGroup(t *testing.T) {
	is := is.New(t)

	p := NewPattern(`openreview\.net`)
	_, ok := p.FirstGroup("https://openreview.net/forum?id=abc")
	is.True(!ok) // no capturing group means no extraction
}

func TestFirstGroupWithEmptyCapture(t *testing.T) {
	is := is.New(t)

	p := NewPattern(`id=([a-z]*)`)
	_, ok := p.FirstGroup("https://example.org/?id=")
	is.True(!ok) // empty capture means no extraction
}

func TestThatLookaroundPatternsCompile(t *testing.T) {
	is := is.New(t)

	p := NewPattern(`orcid\.org/((?:\d{4}-){3}\d{3}[\dX])(?![\d])`)
	is.NoErr(p.Err())

	id, ok := p.FirstGroup("https://orcid.org/0000-0002-1825-0097")
	is.True(ok)
	is.Equal(id, "0000-0002-1825-0097")
}

func TestMalformedPatternIsKeptButNotUsable(t *testing.T) {
	is := is.New(t)

	p := NewPattern(`([unclosed`)
	is.True(p != nil)
	is.True(!p.Usable())
	is.True(errors.Is(p.Err(), ErrMalformedPattern))
	is.Equal(p.Source(), "([unclosed")

	_, ok := p.FirstGroup("([unclosed")
	is.True(!ok)
	is.True(!p.Matches("anything"))
}

func TestFormatConstraintIsAnchored(t *testing.T) {
	is := is.New(t)

	c := NewFormatConstraint(`\d{4}\.\d{4,5}`)
	is.True(c.Matches("2310.06825"))
	is.True(!c.Matches("abs/2310.06825"))
	is.True(!c.Matches("2310.06825v2"))
}

func TestFormatConstraintWithAlternationIsAnchoredAsAWhole(t *testing.T) {
	is := is.New(t)

	c := NewFormatConstraint(`a|b`)
	is.True(c.Matches("a"))
	is.True(!c.Matches("ab")) // both alternatives must be anchored
}

func TestPatternMarshalsToItsSource(t *testing.T) {
	is := is.New(t)

	prop := PropertyRecord{
		ID:               "P818",
		Label:            "arXiv ID",
		URLPattern:       NewPattern(`arxiv\.org/abs/(.+)`),
		FormatConstraint: NewFormatConstraint(`\d{4}\.\d{4,5}`),
	}

	b, err := json.Marshal(prop)
	is.NoErr(err)
	is.Equal(string(b), `{"id":"P818","label":"arXiv ID","urlPattern":"arxiv\\.org/abs/(.+)","formatConstraint":"\\d{4}\\.\\d{4,5}"}`)
}
