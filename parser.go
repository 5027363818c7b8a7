package citescoop

import (
	"strconv"
	"strings"
)

const doiPrefix = "https://doi.org/"

// A NameFilter decides whether a template is interesting.  It gets the
// trimmed, lower-cased template name ("cite journal", "cite book",
// ...) and returns true to keep it.
type NameFilter func(name string) bool

// ParserOptions configures a Parser.
type ParserOptions struct {
	// IgnoreInvalidIdent makes the parser drop identifiers it
	// can't convert (e.g. pmid=abc123) instead of failing the
	// whole parse.
	IgnoreInvalidIdent bool
}

// A Parser extracts citation templates from wikitext.
type Parser struct {
	filter NameFilter
	opts   ParserOptions
}

// NewParser gets a citation parser.  A nil filter accepts every
// template name.
func NewParser(filter NameFilter, opts ParserOptions) *Parser {
	return &Parser{filter: filter, opts: opts}
}

// Options reports the parser's configuration.
func (p *Parser) Options() ParserOptions {
	return p.opts
}

type paramEntry struct {
	key   string
	value *string
}

type templateEntry struct {
	name   string
	params []paramEntry
}

// Parse extracts the citation templates from the given wikitext.
//
// The scanner runs in prefix mode: it consumes as many templates as
// match and silently leaves the rest of the text alone, so plain
// article prose is never an error.  Citations are keyed by fingerprint;
// duplicates within one text collapse to a single entry.
func (p *Parser) Parse(text string) (*RevisionCitations, error) {
	rc := &RevisionCitations{
		Citations: map[string]*ExtractedCitation{},
	}
	for _, entry := range scanTemplates(text) {
		name := strings.ToLower(strings.TrimSpace(entry.name))
		if p.filter != nil && !p.filter(name) {
			continue
		}
		citation, err := p.buildCitation(entry)
		if err != nil {
			return nil, err
		}
		rc.Citations[citation.Fingerprint()] = citation
	}
	return rc, nil
}

// scanTemplates walks the text matching {{name|param|...}} constructs.
// Anything between templates is skipped; the first construct that
// doesn't complete ends the scan.
func scanTemplates(text string) []templateEntry {
	var rv []templateEntry
	rest := text
	for {
		i := strings.Index(rest, "{{")
		if i < 0 {
			return rv
		}
		entry, remaining, ok := scanTemplate(rest[i+2:])
		if !ok {
			return rv
		}
		rv = append(rv, entry)
		rest = remaining
	}
}

// scanTemplate matches one template body after the opening braces.  A
// name runs to the first '|'; each parameter runs to the next '|' or
// the closing "}}".
func scanTemplate(s string) (templateEntry, string, bool) {
	bar := strings.IndexByte(s, '|')
	if bar < 0 {
		return templateEntry{}, "", false
	}
	entry := templateEntry{name: s[:bar]}

	rest := s[bar+1:]
	for {
		end := strings.IndexAny(rest, "|}")
		if end < 0 {
			return templateEntry{}, "", false
		}
		entry.params = append(entry.params, scanParam(rest[:end]))
		if rest[end] == '|' {
			rest = rest[end+1:]
			continue
		}
		if !strings.HasPrefix(rest[end:], "}}") {
			return templateEntry{}, "", false
		}
		return entry, rest[end+2:], true
	}
}

func scanParam(s string) paramEntry {
	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		return paramEntry{key: s}
	}
	v := s[eq+1:]
	return paramEntry{key: s[:eq], value: &v}
}

// buildCitation projects a matched template onto the structured
// citation form, keeping only the keys we understand.
func (p *Parser) buildCitation(entry templateEntry) (*ExtractedCitation, error) {
	citation := &ExtractedCitation{}

	for _, param := range entry.params {
		if param.value == nil {
			// Bare flag parameters carry nothing for us.
			continue
		}
		key := strings.ToLower(strings.TrimSpace(param.key))
		value := strings.TrimSpace(*param.value)

		switch key {
		case "title":
			citation.Title = value
		case "url":
			citation.URLs = append(citation.URLs,
				URL{Type: URLTypeDefault, URL: value})
		case "archive-url":
			citation.URLs = append(citation.URLs,
				URL{Type: URLTypeArchive, URL: value})
		default:
			if err := p.checkIdentKey(citation, key, value); err != nil {
				return nil, err
			}
		}
	}
	return citation, nil
}

// checkIdentKey handles the identifier keys, converting and
// normalising as needed.
func (p *Parser) checkIdentKey(citation *ExtractedCitation, key, value string) error {
	switch key {
	case "doi":
		citation.identifiers().DOI = parseDOI(value)
	case "isbn":
		citation.identifiers().ISBN = value
	case "issn":
		citation.identifiers().ISSN = value
	case "pmid":
		id, err := p.parseIntIdent(value)
		if err != nil {
			return err
		}
		if id != nil {
			citation.identifiers().PMID = id
		}
	case "pmc":
		id, err := p.parseIntIdent(strings.TrimPrefix(value, "PMC"))
		if err != nil {
			return err
		}
		if id != nil {
			citation.identifiers().PMCID = id
		}
	}
	return nil
}

// parseDOI reduces a DOI to its short form.
func parseDOI(doi string) string {
	return strings.TrimPrefix(doi, doiPrefix)
}

// parseIntIdent converts a numeric identifier, honouring the
// IgnoreInvalidIdent option.  Out-of-range values count as invalid.
func (p *Parser) parseIntIdent(value string) (*int32, error) {
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		if p.opts.IgnoreInvalidIdent {
			return nil, nil
		}
		return nil, &TemplateParseError{
			Message: "cannot convert identifier to int",
			Input:   value,
		}
	}
	id := int32(n)
	return &id, nil
}
