// Load extracted citations into MongoDB
package main

import (
	"flag"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/mgo.v2"

	"github.com/WikiOpenCite/citescoop"
)

var proc = flag.Int("proc", 8, "How many processes to run.")
var file = flag.String("file", "", "The bz2 dump file.")
var cpus = flag.Int("cpus", runtime.NumCPU(), "Number of CPUs to use.")
var dburl = flag.String("dburl", "localhost", "The dburl(s). I.e. localhost.")
var verbose = flag.Bool("v", false, "Verbose logging?")
var collection = flag.String("collection", "pages", "The collection to store extracted pages in.")
var revCollection = flag.String("revcollection", "revisions", "The collection to store referenced revisions in.")
var dbname = flag.String("dbname", "wpcite", "The database name to use.")

var wg sync.WaitGroup

// Titles are unique since the title is the URL path in wikimedia:
// My Title => My_Title
var titleIndex = mgo.Index{
	Key:        []string{"title"},
	Unique:     true,
	DropDups:   true,
	Background: true,
	Sparse:     true,
}

type pageDoc struct {
	Title     string               `bson:"title"`
	PageID    uint64               `bson:"page_id"`
	Citations []citescoop.Citation `bson:"citations,omitempty"`
}

type revisionDoc struct {
	ID       uint64 `bson:"_id"`
	ParentID uint64 `bson:"parent_id,omitempty"`
	User     string `bson:"user,omitempty"`
	Seconds  int64  `bson:"seconds"`
	Nanos    int32  `bson:"nanos,omitempty"`
}

func pageHandler(db *mgo.Database, ch <-chan *citescoop.PageResult) {
	for r := range ch {
		storePage(db, r)
	}
}

func storePage(db *mgo.Database, r *citescoop.PageResult) {
	defer wg.Done()
	doc := pageDoc{
		Title:     r.Page.Title,
		PageID:    r.Page.ID,
		Citations: r.Page.Citations,
	}
	err := db.C(*collection).Insert(&doc)
	if err != nil {
		if mgo.IsDup(err) {
			if *verbose {
				log.Printf("Duplicate Key Error inserting %s", doc.Title)
			}
		} else {
			log.Printf("Error inserting %s: %s", doc.Title, err)
		}
	}

	for id, rev := range r.Revisions {
		rd := revisionDoc{
			ID:       id,
			ParentID: rev.ParentID,
			User:     rev.User,
			Seconds:  rev.Timestamp.Seconds,
			Nanos:    rev.Timestamp.Nanos,
		}
		err := db.C(*revCollection).Insert(&rd)
		if err != nil && !mgo.IsDup(err) {
			log.Printf("Error inserting revision %d: %s", id, err)
		}
	}
}

func processDump(e citescoop.Extractor, f *os.File, db *mgo.Database) {
	ch := make(chan *citescoop.PageResult, 1000)
	for i := 0; i < *proc; i++ {
		go pageHandler(db, ch)
	}

	pages := int64(0)
	start := time.Now()
	prev := start
	reportfreq := int64(10000)
	err := e.ExtractEach(f, func(p *citescoop.Page,
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

func main() {
	flag.Parse()
	if *file == "" {
		log.Fatalf("Need a dump file (-file)")
	}

	runtime.GOMAXPROCS(*cpus)

	session, err := mgo.Dial(*dburl)
	if err != nil {
		log.Fatalf("Error connecting to mongo: %v", err)
	}
	defer session.Close()
	db := session.DB(*dbname)

	if err := db.C(*collection).EnsureIndex(titleIndex); err != nil {
		log.Fatalf("Error ensuring title index: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Error opening dump: %v", err)
	}
	defer f.Close()

	e := citescoop.NewBz2Extractor(citescoop.NewParser(nil,
		citescoop.ParserOptions{IgnoreInvalidIdent: true}))
	processDump(e, f, db)
}
