package citescoop

import (
	"reflect"
	"strings"
	"testing"
)

func int32p(v int32) *int32 {
	return &v
}

func onlyCitation(t *testing.T, rc *RevisionCitations) *ExtractedCitation {
	t.Helper()
	if len(rc.Citations) != 1 {
		t.Fatalf("Expected one citation, got %v", rc.Citations)
	}
	for _, c := range rc.Citations {
		return c
	}
	return nil
}

func TestParseTitle(t *testing.T) {
	p := NewParser(nil, ParserOptions{})

	rc, err := p.Parse("{{cite journal | title=Parsing in Practice}}")
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}

	c := onlyCitation(t, rc)
	if c.Title != "Parsing in Practice" {
		t.Errorf("Expected title, got %q", c.Title)
	}
	if c.Identifiers != nil {
		t.Errorf("Expected no identifiers, got %+v", c.Identifiers)
	}
	if len(c.URLs) != 0 {
		t.Errorf("Expected no urls, got %v", c.URLs)
	}
}

func TestParseDOIForms(t *testing.T) {
	p := NewParser(nil, ParserOptions{})

	for _, input := range []string{
		"{{cite journal | doi=10.1007/b62130}}",
		"{{cite journal | doi=https://doi.org/10.1007/b62130}}",
	} {
		rc, err := p.Parse(input)
		if err != nil {
			t.Fatalf("Error parsing %q: %v", input, err)
		}
		c := onlyCitation(t, rc)
		if c.Identifiers == nil || c.Identifiers.DOI != "10.1007/b62130" {
			t.Errorf("Expected short-form doi from %q, got %+v",
				input, c.Identifiers)
		}
	}
}

func TestParseIdentifiers(t *testing.T) {
	p := NewParser(nil, ParserOptions{})

	rc, err := p.Parse("{{cite journal | doi=10.1007/b62130 | " +
		"isbn=0-786918-50-0 | pmid=17322060 | pmc=345678 | issn=2049-3630}}")
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}

	c := onlyCitation(t, rc)
	want := &Identifiers{
		DOI:   "10.1007/b62130",
		ISBN:  "0-786918-50-0",
		ISSN:  "2049-3630",
		PMID:  int32p(17322060),
		PMCID: int32p(345678),
	}
	if !reflect.DeepEqual(c.Identifiers, want) {
		t.Errorf("Expected %+v, got %+v", want, c.Identifiers)
	}
}

func TestParseURLs(t *testing.T) {
	p := NewParser(nil, ParserOptions{})

	rc, err := p.Parse(
		"{{cite journal | url=https://abc.com | archive-url=https://archive.com}}")
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}

	c := onlyCitation(t, rc)
	want := []URL{
		{Type: URLTypeDefault, URL: "https://abc.com"},
		{Type: URLTypeArchive, URL: "https://archive.com"},
	}
	if !reflect.DeepEqual(c.URLs, want) {
		t.Errorf("Expected %v, got %v", want, c.URLs)
	}
}

func TestParsePMCPrefix(t *testing.T) {
	p := NewParser(nil, ParserOptions{})

	rc, err := p.Parse("{{cite journal|pmc = PMC345678}}")
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}
	c := onlyCitation(t, rc)
	if c.Identifiers == nil || c.Identifiers.PMCID == nil ||
		*c.Identifiers.PMCID != 345678 {
		t.Errorf("Expected pmcid 345678, got %+v", c.Identifiers)
	}
}

func TestParseInvalidIdent(t *testing.T) {
	p := NewParser(nil, ParserOptions{})

	for _, input := range []string{
		"{{cite journal|pmc = abc123}}",
		"{{cite journal|pmid = abc123}}",
		// Too big for an int32.
		"{{cite journal|pmid = 2147483648}}",
	} {
		_, err := p.Parse(input)
		if err == nil {
			t.Fatalf("Expected error parsing %q", input)
		}
		if _, ok := err.(*TemplateParseError); !ok {
			t.Errorf("Expected TemplateParseError from %q, got %v", input, err)
		}
	}
}

func TestParseIgnoreInvalidIdent(t *testing.T) {
	p := NewParser(nil, ParserOptions{IgnoreInvalidIdent: true})

	rc, err := p.Parse("{{cite journal|pmc = abc123|pmid=abc123|title=T}}")
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}
	c := onlyCitation(t, rc)
	if c.Identifiers != nil {
		t.Errorf("Expected invalid identifiers dropped, got %+v", c.Identifiers)
	}
	if c.Title != "T" {
		t.Errorf("Expected title kept, got %q", c.Title)
	}
}

func TestParseWhitespace(t *testing.T) {
	p := NewParser(nil, ParserOptions{})

	a, err := p.Parse("{{    cite    journal   |   title = Parsing in Practice }}")
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}
	b, err := p.Parse("{{cite journal|title = Parsing in Practice}}")
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}

	if onlyCitation(t, a).Title != "Parsing in Practice" {
		t.Errorf("Expected whitespace-tolerant title, got %+v", a)
	}
	if !reflect.DeepEqual(a.Citations, b.Citations) {
		t.Errorf("Expected equal results, got %+v and %+v", a, b)
	}
}

func TestParseMultipleCitations(t *testing.T) {
	p := NewParser(nil, ParserOptions{})

	rc, err := p.Parse(`Some prose.<ref>{{cite journal|title=One}}</ref>
More prose.<ref>{{cite book|title=Two|isbn=0-19-551368-1}}</ref>
And a third: {{cite web|title=Three|url=https://example.com}}`)
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}
	if len(rc.Citations) != 3 {
		t.Fatalf("Expected 3 citations, got %v", rc.Citations)
	}
}

func TestParseDeduplicates(t *testing.T) {
	p := NewParser(nil, ParserOptions{})

	rc, err := p.Parse("{{cite journal|title=Same}} and again {{cite journal|title=Same}}")
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}
	if len(rc.Citations) != 1 {
		t.Fatalf("Expected duplicate collapsed, got %v", rc.Citations)
	}
}

func TestParseNoTemplates(t *testing.T) {
	p := NewParser(nil, ParserOptions{})

	rc, err := p.Parse("Just some article prose, no templates at all.")
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}
	if len(rc.Citations) != 0 {
		t.Errorf("Expected no citations, got %v", rc.Citations)
	}
}

func TestParseIdempotent(t *testing.T) {
	p := NewParser(nil, ParserOptions{})
	input := "{{cite journal|title=Stable|doi=10.1/x|url=https://a}} tail text"

	a, err := p.Parse(input)
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}
	b, err := p.Parse(input)
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Expected identical results, got %+v and %+v", a, b)
	}
}

func TestParseNameFilter(t *testing.T) {
	p := NewParser(func(name string) bool {
		return name == "cite book"
	}, ParserOptions{})

	rc, err := p.Parse("{{cite journal|title=J}}{{   Cite Book |title=B}}")
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}
	c := onlyCitation(t, rc)
	if c.Title != "B" {
		t.Errorf("Expected only the book citation, got %+v", rc.Citations)
	}
}

func TestParseBareParams(t *testing.T) {
	p := NewParser(nil, ParserOptions{})

	rc, err := p.Parse("{{cite book | title=Parsing in Practice | author | bool }}")
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}
	if onlyCitation(t, rc).Title != "Parsing in Practice" {
		t.Errorf("Expected bare params ignored, got %+v", rc)
	}
}

func TestParseUnrecognisedKeys(t *testing.T) {
	p := NewParser(nil, ParserOptions{})

	rc, err := p.Parse("{{cite journal|author=Jones|year=2022|title=Kept}}")
	if err != nil {
		t.Fatalf("Error parsing: %v", err)
	}
	c := onlyCitation(t, rc)
	if c.Title != "Kept" || c.Identifiers != nil || len(c.URLs) != 0 {
		t.Errorf("Expected only title kept, got %+v", c)
	}
}

func TestParseErrorTruncation(t *testing.T) {
	p := NewParser(nil, ParserOptions{})

	long := strings.Repeat("x", 150)
	_, err := p.Parse("{{cite journal|pmid=" + long + "}}")
	if err == nil {
		t.Fatal("Expected error")
	}
	te, ok := err.(*TemplateParseError)
	if !ok {
		t.Fatalf("Expected TemplateParseError, got %v", err)
	}
	msg := te.Error()
	if !strings.Contains(msg, "...") {
		t.Errorf("Expected truncated input in %q", msg)
	}
	if !strings.Contains(msg, strings.Repeat("x", 97)) ||
		strings.Contains(msg, strings.Repeat("x", 98)) {
		t.Errorf("Expected 97 chars of input in %q", msg)
	}
}
