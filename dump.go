package citescoop

import (
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// A StoreFunc receives each finished page together with the revisions
// its citation annotations reference.  Once called for a page, the
// parser is done with it, so you may do with it as you wish.
type StoreFunc func(page *Page, revisions map[uint64]Revision) error

// dumpParser walks a MediaWiki export document, handing revision text
// to the citation parser and folding each page's revisions into a
// deduplicated, annotated citation list.
type dumpParser struct {
	parser *Parser
	store  StoreFunc

	// maxPages stops the walk after that many pages when >0, for
	// readers that concatenate past a chunk boundary.
	maxPages    int
	pagesStored int

	// Nesting flags for where we are in the document.
	inPage        bool
	inRevision    bool
	inContributor bool
	shouldStore   bool

	buf strings.Builder

	currentPage         Page
	currentRevision     Revision
	currentRC           *RevisionCitations
	citationsByRevision []*RevisionCitations
	pageRevisions       map[uint64]Revision
	toStore             map[uint64]Revision
}

func newDumpParser(parser *Parser, store StoreFunc) *dumpParser {
	return &dumpParser{
		parser:        parser,
		store:         store,
		pageRevisions: map[uint64]Revision{},
		toStore:       map[uint64]Revision{},
	}
}

// run drives the XML token stream to the end of input.  Any reader
// error is a dump parse failure; citation parse failures pass through
// untouched.
func (d *dumpParser) run(r io.Reader) error {
	decoder := xml.NewDecoder(r)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return dumpError(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			d.onStartElement(t.Name.Local)
		case xml.CharData:
			if d.shouldStore {
				d.buf.Write(t)
			}
		case xml.EndElement:
			if err := d.onEndElement(t.Name.Local); err != nil {
				return err
			}
			if d.maxPages > 0 && d.pagesStored >= d.maxPages {
				return nil
			}
		}
	}
}

func (d *dumpParser) onStartElement(name string) {
	d.buf.Reset()
	switch {
	case name == "page":
		d.inPage = true
	case name == "revision":
		d.inRevision = true
	case name == "contributor":
		d.inContributor = true
	case d.inPage && (name == "title" || name == "id"),
		d.inRevision && (name == "id" || name == "parentid" ||
			name == "username" || name == "text" || name == "timestamp"):
		d.shouldStore = true
	}
}

func (d *dumpParser) onEndElement(name string) error {
	var err error
	switch name {
	case "page":
		err = d.onEndPage()
	case "revision":
		d.onEndRevision()
	case "contributor":
		d.inContributor = false
	default:
		err = d.onEndField(name)
	}
	d.shouldStore = false
	return err
}

// onEndField interprets the fields we accumulate text for.  The id
// element appears at both page and revision level (and again inside
// contributor, where we leave it alone), so the nesting flags decide
// who owns it.
func (d *dumpParser) onEndField(name string) error {
	switch {
	case d.inPage && name == "title":
		d.currentPage.Title = d.buf.String()
	case d.inPage && !d.inRevision && !d.inContributor && name == "id":
		id, err := parseID(d.buf.String())
		if err != nil {
			return err
		}
		d.currentPage.ID = id
	case d.inRevision && !d.inContributor && name == "id":
		id, err := parseID(d.buf.String())
		if err != nil {
			return err
		}
		d.currentRevision.ID = id
	case d.inRevision && name == "parentid":
		id, err := parseID(d.buf.String())
		if err != nil {
			return err
		}
		d.currentRevision.ParentID = id
	case d.inRevision && name == "username":
		d.currentRevision.User = d.buf.String()
	case d.inRevision && name == "timestamp":
		ts, err := time.Parse(time.RFC3339, d.buf.String())
		if err != nil {
			return dumpError(err)
		}
		d.currentRevision.Timestamp = Timestamp{
			Seconds: ts.Unix(),
			Nanos:   int32(ts.Nanosecond()),
		}
	case d.inRevision && name == "text":
		rc, err := d.parser.Parse(d.buf.String())
		if err != nil {
			return err
		}
		d.currentRC = rc
	}
	return nil
}

func (d *dumpParser) onEndRevision() {
	d.inRevision = false
	if d.currentRC == nil {
		d.currentRC = &RevisionCitations{
			Citations: map[string]*ExtractedCitation{},
		}
	}
	d.currentRC.Revision = d.currentRevision
	d.citationsByRevision = append(d.citationsByRevision, d.currentRC)
	d.pageRevisions[d.currentRevision.ID] = d.currentRevision

	d.currentRevision = Revision{}
	d.currentRC = nil
}

func (d *dumpParser) onEndPage() error {
	d.inPage = false
	d.makePageCitationList()

	page := d.currentPage
	err := d.store(&page, d.toStore)
	d.pagesStored++

	d.currentPage = Page{}
	d.pageRevisions = map[uint64]Revision{}
	d.citationsByRevision = nil
	d.toStore = map[uint64]Revision{}
	return err
}

// makePageCitationList folds the page's revisions, oldest first, into
// the deduplicated citation list.  Two passes per revision: first
// reconcile the already-discovered citations against what this
// revision still contains, then admit whatever is new.
func (d *dumpParser) makePageCitationList() {
	sort.SliceStable(d.citationsByRevision, func(i, j int) bool {
		return d.citationsByRevision[i].Revision.Timestamp.
			Before(d.citationsByRevision[j].Revision.Timestamp)
	})

	discovered := map[string]*Citation{}
	var order []string
	refCount := map[uint64]int{}

	for _, rc := range d.citationsByRevision {
		d.checkExistingCitations(rc, discovered, order, refCount)
		order = d.addNewCitations(rc, discovered, order, refCount)
	}

	for _, fp := range order {
		d.currentPage.Citations = append(d.currentPage.Citations,
			*discovered[fp])
	}
}

// checkExistingCitations reconciles previously discovered citations
// with the given revision.  A citation still present survives; if it
// had been marked removed, the mark is rescinded and the removal
// revision loses a reference (and is dropped from the retained set
// when nothing else references it).  A citation gone from this
// revision gets marked removed here, once.
//
// NOTE: a citation removed and later re-added reads as continuously
// present since its original addition; the gap is not recorded.
func (d *dumpParser) checkExistingCitations(rc *RevisionCitations,
	discovered map[string]*Citation, order []string,
	refCount map[uint64]int) {

	for _, fp := range order {
		citation := discovered[fp]
		if _, ok := rc.Citations[fp]; ok {
			delete(rc.Citations, fp)

			if citation.RevisionRemoved != nil {
				removed := *citation.RevisionRemoved
				refCount[removed]--
				if refCount[removed] <= 0 {
					delete(d.toStore, removed)
				}
				citation.RevisionRemoved = nil
			}
			continue
		}

		if citation.RevisionRemoved == nil {
			id := rc.Revision.ID
			citation.RevisionRemoved = &id
			d.toStore[id] = d.pageRevisions[id]
			refCount[id]++
		}
	}
}

// addNewCitations admits citations seen for the first time, annotating
// them with the current revision.  Fingerprints are visited in sorted
// order so output is deterministic.
func (d *dumpParser) addNewCitations(rc *RevisionCitations,
	discovered map[string]*Citation, order []string,
	refCount map[uint64]int) []string {

	fps := make([]string, 0, len(rc.Citations))
	for fp := range rc.Citations {
		fps = append(fps, fp)
	}
	sort.Strings(fps)

	for _, fp := range fps {
		if _, ok := discovered[fp]; ok {
			continue
		}
		id := rc.Revision.ID
		discovered[fp] = &Citation{
			Citation:      *rc.Citations[fp],
			RevisionAdded: id,
		}
		order = append(order, fp)
		d.toStore[id] = d.pageRevisions[id]
		refCount[id]++
	}
	return order
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dumpError(err)
	}
	return id, nil
}
