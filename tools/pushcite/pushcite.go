// Push extracted citation pages to a REST endpoint
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/httputil"

	"github.com/WikiOpenCite/citescoop"
)

var base = flag.String("url", "http://localhost:8080/pages",
	"Base URL to POST pages to")
var revURL = flag.String("revurl", "http://localhost:8080/revisions",
	"URL to POST referenced revisions to")

func post(url string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != 201 && res.StatusCode != 200 {
		return httputil.HTTPError(res)
	}
	return nil
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		log.Fatalf("Usage: %s [opts] wikipedia.xml.bz2", os.Args[0])
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Error opening dump: %v", err)
	}
	defer f.Close()

	e := citescoop.NewBz2Extractor(citescoop.NewParser(nil,
		citescoop.ParserOptions{IgnoreInvalidIdent: true}))

	pages := int64(0)
	start := time.Now()
	prev := start
	reportfreq := int64(1000)
	err = e.ExtractEach(f, func(p *citescoop.Page,
		refs map[uint64]citescoop.Revision) error {
		if err := post(*base, p); err != nil {
			return err
		}
		for _, rev := range refs {
			rev := rev
			if err := post(*revURL, &rev); err != nil {
				return err
			}
		}

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
	if err != nil {
		log.Fatalf("Error extracting dump: %v", err)
	}
	log.Printf("Done after %v: %s pages",
		time.Since(start), humanize.Comma(pages))
}
