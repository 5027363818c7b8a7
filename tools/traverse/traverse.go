// Sample program that tallies citation history across a wikipedia dump.
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/WikiOpenCite/citescoop"
)

var ignoreInvalid = flag.Bool("ignoreInvalid", false,
	"Ignore invalid numeric identifiers instead of aborting")

var pages, citations, removed, revisions int64

func tally(p *citescoop.Page, refs map[uint64]citescoop.Revision) {
	pages++
	citations += int64(len(p.Citations))
	for i := range p.Citations {
		if p.Citations[i].Removed() {
			removed++
		}
	}
	revisions += int64(len(refs))
}

func report(prev *time.Time, reportfreq int64) {
	if pages%reportfreq == 0 {
		now := time.Now()
		d := now.Sub(*prev)
		log.Printf("Processed %s pages, %s citations total (%.2f p/s)",
			humanize.Comma(pages), humanize.Comma(citations),
			float64(reportfreq)/d.Seconds())
		*prev = now
	}
}

func processSingleStream(filename string) {
	f, err := os.Open(filename)
	if err != nil {
		log.Fatalf("Error opening file: %v", err)
	}
	defer f.Close()

	parser := citescoop.NewParser(nil,
		citescoop.ParserOptions{IgnoreInvalidIdent: *ignoreInvalid})
	e := citescoop.NewBz2Extractor(parser)

	start := time.Now()
	prev := start
	err = e.ExtractEach(f, func(p *citescoop.Page,
		refs map[uint64]citescoop.Revision) error {
		tally(p, refs)
		report(&prev, 1000)
		return nil
	})
	if err != nil {
		log.Fatalf("Error traversing dump: %v", err)
	}
	finish(start)
}

func processMultiStream(idx, data string) {
	parser := citescoop.NewParser(nil,
		citescoop.ParserOptions{IgnoreInvalidIdent: *ignoreInvalid})
	e, err := citescoop.NewIndexedExtractor(idx, data,
		runtime.GOMAXPROCS(0), parser)
	if err != nil {
		log.Fatalf("Error initializing multistream extractor: %v", err)
	}

	start := time.Now()
	prev := start
	for {
		r, err := e.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Error traversing dump: %v", err)
		}
		tally(&r.Page, r.Revisions)
		report(&prev, 1000)
	}
	finish(start)
}

func finish(start time.Time) {
	d := time.Since(start)
	log.Printf("Done after %v: %s pages, %s citations "+
		"(%s removed), %s referenced revisions (%.2f p/s)",
		d, humanize.Comma(pages), humanize.Comma(citations),
		humanize.Comma(removed), humanize.Comma(revisions),
		float64(pages)/d.Seconds())
}

func main() {
	flag.Parse()

	switch flag.NArg() {
	case 1:
		processSingleStream(flag.Arg(0))
	case 2:
		processMultiStream(flag.Arg(0), flag.Arg(1))
	default:
		log.Fatalf("Need either a single stream dump, or index and multi-stream")
	}
}
