// Load extracted citations into a SQLite database
package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	_ "github.com/mattn/go-sqlite3"

	"github.com/WikiOpenCite/citescoop"
)

const schemaSQL = `
CREATE TABLE page (
	id	INTEGER PRIMARY KEY,
	title	VARCHAR NOT NULL UNIQUE
);
CREATE TABLE citation (
	page_id		INTEGER NOT NULL REFERENCES page(id),
	fingerprint	VARCHAR NOT NULL,
	title		VARCHAR,
	doi		VARCHAR,
	isbn		VARCHAR,
	issn		VARCHAR,
	pmid		INTEGER,
	pmcid		INTEGER,
	added		INTEGER NOT NULL,
	removed		INTEGER
);
CREATE TABLE revision (
	id	INTEGER PRIMARY KEY,
	parent	INTEGER,
	user	VARCHAR,
	seconds	INTEGER NOT NULL,
	nanos	INTEGER NOT NULL
)`

var dbFileName = flag.String("db", "citations.db", "Output database file")
var ignoreInvalid = flag.Bool("ignoreInvalid", true,
	"Ignore invalid numeric identifiers")

func initDB(fn string) *sql.DB {
	os.Remove(fn)
	db, err := sql.Open("sqlite3", fn)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		log.Fatalf("Error creating schema: %v", err)
	}
	return db
}

func storePage(tx *sql.Tx, p *citescoop.Page,
	refs map[uint64]citescoop.Revision) error {

	if _, err := tx.Exec("INSERT INTO page (id, title) VALUES (?, ?)",
		p.ID, p.Title); err != nil {
		return err
	}

	for i := range p.Citations {
		c := &p.Citations[i]
		ids := c.Citation.Identifiers
		if ids == nil {
			ids = &citescoop.Identifiers{}
		}
		var pmid, pmcid interface{}
		if ids.PMID != nil {
			pmid = *ids.PMID
		}
		if ids.PMCID != nil {
			pmcid = *ids.PMCID
		}
		var removed interface{}
		if c.RevisionRemoved != nil {
			removed = *c.RevisionRemoved
		}
		_, err := tx.Exec(`INSERT INTO citation
			(page_id, fingerprint, title, doi, isbn, issn, pmid, pmcid, added, removed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, c.Citation.Fingerprint(), c.Citation.Title,
			ids.DOI, ids.ISBN, ids.ISSN, pmid, pmcid,
			c.RevisionAdded, removed)
		if err != nil {
			return err
		}
	}

	for id, rev := range refs {
		_, err := tx.Exec(`INSERT INTO revision (id, parent, user, seconds, nanos)
			VALUES (?, ?, ?, ?, ?)`,
			id, rev.ParentID, rev.User, rev.Timestamp.Seconds,
			rev.Timestamp.Nanos)
		if err != nil {
			return err
		}
	}
	return nil
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		log.Fatalf("Usage: %s [opts] wikipedia.xml.bz2", os.Args[0])
	}

	db := initDB(*dbFileName)
	defer db.Close()

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Error opening dump: %v", err)
	}
	defer f.Close()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Error starting transaction: %v", err)
	}

	e := citescoop.NewBz2Extractor(citescoop.NewParser(nil,
		citescoop.ParserOptions{IgnoreInvalidIdent: *ignoreInvalid}))

	pages := int64(0)
	start := time.Now()
	prev := start
	reportfreq := int64(1000)
	err = e.ExtractEach(f, func(p *citescoop.Page,
		refs map[uint64]citescoop.Revision) error {
		if err := storePage(tx, p, refs); err != nil {
			return err
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

	if err := tx.Commit(); err != nil {
		log.Fatalf("Error committing: %v", err)
	}
	log.Printf("Done after %v: %s pages",
		time.Since(start), humanize.Comma(pages))
}
