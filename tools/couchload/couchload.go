// Load extracted citations into CouchDB
package main

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-couch"
	"github.com/dustin/go-humanize"
	"github.com/dustin/httputil"

	"github.com/WikiOpenCite/citescoop"
)

var wg sync.WaitGroup

type article struct {
	ID        string                        `json:"_id"`
	Rev       string                        `json:"_rev,omitempty"`
	PageID    uint64                        `json:"page_id"`
	Citations []citescoop.Citation          `json:"citations,omitempty"`
	Revisions map[uint64]citescoop.Revision `json:"revisions,omitempty"`
}

func escapeTitle(in string) string {
	return strings.Replace(strings.Replace(in, "/", "%2f", -1),
		"+", "%2b", -1)
}

func latestTouched(a *article) uint64 {
	var rv uint64
	for _, c := range a.Citations {
		if c.RevisionAdded > rv {
			rv = c.RevisionAdded
		}
		if c.RevisionRemoved != nil && *c.RevisionRemoved > rv {
			rv = *c.RevisionRemoved
		}
	}
	return rv
}

func resolveConflict(db *couch.Database, a *article) {
	log.Printf("Resolving conflict on %s", a.ID)
	var prev article
	err := db.Retrieve(escapeTitle(a.ID), &prev)
	if err != nil {
		log.Printf("  Error retrieving existing %v: %v", a.ID, err)
		return
	}
	if prev.Rev == "" {
		log.Printf("Got no rev from %v", a.ID)
		return
	}
	if latestTouched(a) > latestTouched(&prev) {
		log.Printf("  This one is newer...replacing %s.", prev.Rev)
		_, err = db.EditWith(a, a.ID, prev.Rev)
		if err != nil {
			log.Printf("  Error updating %v: %v", prev.ID, err)
		}
	}
}

func doPage(db *couch.Database, r *citescoop.PageResult) {
	defer wg.Done()
	a := article{
		ID:        escapeTitle(r.Page.Title),
		PageID:    r.Page.ID,
		Citations: r.Page.Citations,
		Revisions: r.Revisions,
	}

	_, _, err := db.Insert(&a)
	switch {
	case err == nil:
		// yay
	case httputil.IsHTTPStatus(err, 409):
		resolveConflict(db, &a)
	default:
		log.Printf("Error inserting %#v: %v", a, err)
	}
}

func pageHandler(db couch.Database, ch <-chan *citescoop.PageResult) {
	for r := range ch {
		doPage(&db, r)
	}
}

func main() {
	dburl, file := os.Args[1], os.Args[2]

	db, err := couch.Connect(dburl)
	if err != nil {
		log.Fatalf("Error connecting to couchdb: %v", err)
	}

	f, err := os.Open(file)
	if err != nil {
		log.Fatalf("Error opening dump: %v", err)
	}
	defer f.Close()

	ch := make(chan *citescoop.PageResult, 1000)

	for i := 0; i < 20; i++ {
		go pageHandler(db, ch)
	}

	e := citescoop.NewBz2Extractor(citescoop.NewParser(nil,
		citescoop.ParserOptions{IgnoreInvalidIdent: true}))

	pages := int64(0)
	start := time.Now()
	prev := start
	reportfreq := int64(1000)
	err = e.ExtractEach(f, func(p *citescoop.Page,
		refs map[uint64]citescoop.Revision) error {
		wg.Add(1)
		ch <- &citescoop.PageResult{Page: *p, Revisions: refs}

		pages++
		if pages%reportfreq == 0 {
			now := time.Now()
			d := now.Sub(prev)
			log.Printf("Processed %s pages total (%.2f/s)",
				humanize.Comma(pages), float64(reportfreq)/d.Seconds())
			prev = now
		}
		return nil
	})
	wg.Wait()
	close(ch)
	log.Printf("Ended with err after %v:  %v after %s pages",
		time.Since(start), err, humanize.Comma(pages))
}
