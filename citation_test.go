package citescoop

import "testing"

func TestFingerprintEquality(t *testing.T) {
	a := &ExtractedCitation{
		Title:       "Parsing in Practice",
		Identifiers: &Identifiers{DOI: "10.1007/b62130", PMID: int32p(17322060)},
		URLs:        []URL{{Type: URLTypeDefault, URL: "https://abc.com"}},
	}
	b := &ExtractedCitation{
		Title:       "Parsing in Practice",
		Identifiers: &Identifiers{DOI: "10.1007/b62130", PMID: int32p(17322060)},
		URLs:        []URL{{Type: URLTypeDefault, URL: "https://abc.com"}},
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("Expected equal fingerprints, got %q and %q",
			a.Fingerprint(), b.Fingerprint())
	}
}

func TestFingerprintInequality(t *testing.T) {
	base := func() *ExtractedCitation {
		return &ExtractedCitation{
			Title:       "Parsing in Practice",
			Identifiers: &Identifiers{DOI: "10.1007/b62130"},
			URLs:        []URL{{Type: URLTypeDefault, URL: "https://abc.com"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *ExtractedCitation)
	}{
		{"title", func(c *ExtractedCitation) { c.Title = "Other" }},
		{"doi", func(c *ExtractedCitation) { c.Identifiers.DOI = "10.1/x" }},
		{"isbn", func(c *ExtractedCitation) { c.Identifiers.ISBN = "0-19" }},
		{"pmid", func(c *ExtractedCitation) { c.Identifiers.PMID = int32p(1) }},
		{"pmid zero", func(c *ExtractedCitation) { c.Identifiers.PMID = int32p(0) }},
		{"url", func(c *ExtractedCitation) { c.URLs[0].URL = "https://other" }},
		{"url type", func(c *ExtractedCitation) { c.URLs[0].Type = URLTypeArchive }},
		{"url added", func(c *ExtractedCitation) {
			c.URLs = append(c.URLs, URL{Type: URLTypeArchive, URL: "https://a"})
		}},
	}

	for _, test := range tests {
		c := base()
		test.mutate(c)
		if c.Fingerprint() == base().Fingerprint() {
			t.Errorf("%v: expected distinct fingerprint, got %q",
				test.name, c.Fingerprint())
		}
	}
}

// A nil identifier record and an allocated-but-empty one are the same
// citation.
func TestFingerprintEmptyIdentifiers(t *testing.T) {
	a := &ExtractedCitation{Title: "T"}
	b := &ExtractedCitation{Title: "T", Identifiers: &Identifiers{}}
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("Expected equal fingerprints, got %q and %q",
			a.Fingerprint(), b.Fingerprint())
	}
}

// Field values must not bleed into each other's encoding.
func TestFingerprintNoCollision(t *testing.T) {
	a := &ExtractedCitation{Title: `x";doi="y`}
	b := &ExtractedCitation{Title: "x", Identifiers: &Identifiers{DOI: "y"}}
	if a.Fingerprint() == b.Fingerprint() {
		t.Errorf("Expected distinct fingerprints, got %q", a.Fingerprint())
	}
}
