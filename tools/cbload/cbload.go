// Load extracted citations into CouchBase
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/couchbase/go-couchbase"
	"github.com/dustin/go-humanize"

	"github.com/WikiOpenCite/citescoop"
)

var numWorkers = flag.Int("numWorkers", 8, "Number of page workers")

var wg sync.WaitGroup

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage:\n  %s [opts] wikipedia.xml.bz2\n",
		os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

type citationDoc struct {
	Title   string   `json:"title"`
	DOI     string   `json:"doi,omitempty"`
	ISBN    string   `json:"isbn,omitempty"`
	URLs    []string `json:"urls,omitempty"`
	Added   uint64   `json:"revision_added"`
	Removed *uint64  `json:"revision_removed,omitempty"`
}

type pageDoc struct {
	PageID    uint64                        `json:"page_id"`
	Citations []citationDoc                 `json:"citations,omitempty"`
	Revisions map[uint64]citescoop.Revision `json:"revisions,omitempty"`
}

func makeDoc(r *citescoop.PageResult) pageDoc {
	doc := pageDoc{PageID: r.Page.ID, Revisions: r.Revisions}
	for i := range r.Page.Citations {
		c := &r.Page.Citations[i]
		cd := citationDoc{
			Title:   c.Citation.Title,
			Added:   c.RevisionAdded,
			Removed: c.RevisionRemoved,
		}
		if ids := c.Citation.Identifiers; ids != nil {
			cd.DOI = ids.DOI
			cd.ISBN = ids.ISBN
		}
		for _, u := range c.Citation.URLs {
			cd.URLs = append(cd.URLs, u.URL)
		}
		doc.Citations = append(doc.Citations, cd)
	}
	return doc
}

func doPage(db *couchbase.Bucket, r *citescoop.PageResult) {
	defer wg.Done()
	err := db.Set(r.Page.Title, 0, makeDoc(r))
	if err != nil {
		log.Printf("Error setting %v: %v", r.Page.Title, err)
	}
}

func pageHandler(db *couchbase.Bucket, ch <-chan *citescoop.PageResult) {
	for r := range ch {
		doPage(db, r)
	}
}

func main() {
	couchbaseServer := flag.String("couchbase", "http://localhost:8091/",
		"Couchbase URL")
	couchbaseBucket := flag.String("bucket", "default", "Couchbase bucket")
	procs := flag.Int("cpus", runtime.NumCPU(), "Number of CPUS to use")
	flag.Parse()

	runtime.GOMAXPROCS(*procs)

	if flag.NArg() < 1 {
		usage()
	}

	db, err := couchbase.GetBucket(*couchbaseServer,
		"default", *couchbaseBucket)
	if err != nil {
		log.Fatalf("Error connecting to couchbase: %v", err)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Error opening dump: %v", err)
	}
	defer f.Close()

	ch := make(chan *citescoop.PageResult, 1000)

	for i := 0; i < *numWorkers; i++ {
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
