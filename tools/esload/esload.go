// Load extracted citations into ElasticSearch
package main

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-elasticsearch"
	"github.com/dustin/go-humanize"

	"github.com/WikiOpenCite/citescoop"
)

var wg = sync.WaitGroup{}

func citationBodies(p *citescoop.Page) []map[string]interface{} {
	rv := make([]map[string]interface{}, 0, len(p.Citations))
	for i := range p.Citations {
		c := &p.Citations[i]
		body := map[string]interface{}{
			"title":          c.Citation.Title,
			"revision_added": c.RevisionAdded,
		}
		if c.RevisionRemoved != nil {
			body["revision_removed"] = *c.RevisionRemoved
		}
		if ids := c.Citation.Identifiers; ids != nil {
			if ids.DOI != "" {
				body["doi"] = ids.DOI
			}
			if ids.ISBN != "" {
				body["isbn"] = ids.ISBN
			}
			if ids.PMID != nil {
				body["pmid"] = *ids.PMID
			}
		}
		rv = append(rv, body)
	}
	return rv
}

func pageHandler(u string, ch chan *citescoop.PageResult) {
	counter := 0
	es := elasticsearch.ElasticSearch{URL: u}
	bulkLoader := es.Bulk()

	for r := range ch {
		counter++
		if counter > 1000 {
			bulkLoader.SendBatch()
			counter = 0
		}
		ui := elasticsearch.UpdateInstruction{
			Id:    r.Page.Title,
			Index: "citationsx",
			Type:  "page",
			Body: map[string]interface{}{
				"page_id":   r.Page.ID,
				"citations": citationBodies(&r.Page),
			},
		}
		bulkLoader.Update(&ui)
		wg.Done()
	}
	bulkLoader.Quit()
}

func main() {
	filename, esurl := os.Args[1], os.Args[2]

	f, err := os.Open(filename)
	if err != nil {
		log.Fatalf("Error opening file: %v", err)
	}
	defer f.Close()

	ch := make(chan *citescoop.PageResult, 1000)

	for i := 0; i < 4; i++ {
		go pageHandler(esurl, ch)
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
