package citescoop

import (
	"compress/bzip2"
	"fmt"
	"io"
)

// An Extractor pulls citations out of a Wikimedia XML dump.
//
// Extract materialises everything in memory.  ExtractTo frames each
// page and each referenced revision onto the given writers as they
// complete, returning how many of each were written.  ExtractEach
// hands every finished page to a callback instead, which is what the
// loader programs under tools/ build on.
type Extractor interface {
	Extract(r io.Reader) ([]Page, map[uint64]Revision, error)
	ExtractTo(r io.Reader, pages, revisions io.Writer) (uint64, uint64, error)
	ExtractEach(r io.Reader, store StoreFunc) error
}

// A TextExtractor reads plain (uncompressed) XML dumps.
type TextExtractor struct {
	parser *Parser
}

// NewTextExtractor gets an extractor for plain XML dumps using the
// given citation parser.
func NewTextExtractor(parser *Parser) *TextExtractor {
	return &TextExtractor{parser: parser}
}

func (e *TextExtractor) Extract(r io.Reader) ([]Page, map[uint64]Revision, error) {
	return extract(r, e.parser)
}

func (e *TextExtractor) ExtractTo(r io.Reader, pages, revisions io.Writer) (uint64, uint64, error) {
	return extractTo(r, e.parser, pages, revisions)
}

func (e *TextExtractor) ExtractEach(r io.Reader, store StoreFunc) error {
	return newDumpParser(e.parser, store).run(r)
}

// A Bz2Extractor reads bzip2-compressed XML dumps.  The rest of the
// pipeline never sees the compression.
type Bz2Extractor struct {
	parser *Parser
}

// NewBz2Extractor gets an extractor for bzip2-compressed dumps using
// the given citation parser.
func NewBz2Extractor(parser *Parser) *Bz2Extractor {
	return &Bz2Extractor{parser: parser}
}

func (e *Bz2Extractor) Extract(r io.Reader) ([]Page, map[uint64]Revision, error) {
	return extract(bzip2.NewReader(r), e.parser)
}

func (e *Bz2Extractor) ExtractTo(r io.Reader, pages, revisions io.Writer) (uint64, uint64, error) {
	return extractTo(bzip2.NewReader(r), e.parser, pages, revisions)
}

func (e *Bz2Extractor) ExtractEach(r io.Reader, store StoreFunc) error {
	return newDumpParser(e.parser, store).run(bzip2.NewReader(r))
}

// extract accumulates pages and merges each page's referenced
// revisions into one map.  Revision ids are globally unique in a
// well-formed dump; a collision means the dump is broken.
func extract(r io.Reader, parser *Parser) ([]Page, map[uint64]Revision, error) {
	var pages []Page
	revisions := map[uint64]Revision{}

	store := func(page *Page, refs map[uint64]Revision) error {
		pages = append(pages, *page)
		for id, rev := range refs {
			if _, ok := revisions[id]; ok {
				return &DumpParseError{
					Message: fmt.Sprintf("duplicate revision id %d", id),
				}
			}
			revisions[id] = rev
		}
		return nil
	}

	if err := newDumpParser(parser, store).run(r); err != nil {
		return nil, nil, err
	}
	return pages, revisions, nil
}

// extractTo frames pages and revisions onto the writers as each page
// completes.  On error the messages already written stay written, but
// no counts are reported.
func extractTo(r io.Reader, parser *Parser, pagesOut, revisionsOut io.Writer) (uint64, uint64, error) {
	pageWriter := NewMessageWriter(pagesOut)
	revisionWriter := NewMessageWriter(revisionsOut)
	var pagesWritten, revisionsWritten uint64

	store := func(page *Page, refs map[uint64]Revision) error {
		if _, err := pageWriter.WriteMessage(page); err != nil {
			return err
		}
		pagesWritten++
		for _, rev := range refs {
			rev := rev
			if _, err := revisionWriter.WriteMessage(&rev); err != nil {
				return err
			}
			revisionsWritten++
		}
		return nil
	}

	if err := newDumpParser(parser, store).run(r); err != nil {
		return 0, 0, err
	}
	return pagesWritten, revisionsWritten, nil
}
