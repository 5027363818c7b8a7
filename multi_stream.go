package citescoop

import (
	"compress/bzip2"
	"io"
	"os"
	"sync"
)

// A PageResult is one page's extracted citations plus the revisions
// they reference.
type PageResult struct {
	Page      Page
	Revisions map[uint64]Revision
}

type streamChunk struct {
	offset int64
	pages  int
}

// An IndexedExtractor extracts citations from a multistream dump,
// using the companion index to fan chunks out across workers.
//
// Multistream dumps carry one revision per page, so every citation
// comes back annotated with that revision.
type IndexedExtractor struct {
	parser *Parser

	workerch chan streamChunk
	results  chan *PageResult

	mu  sync.Mutex
	err error
}

// NewIndexedExtractor gets an extractor reading the given multistream
// data file, driven by its bzip2-compressed index file.
func NewIndexedExtractor(indexfn, datafn string, numWorkers int, parser *Parser) (*IndexedExtractor, error) {
	// Fail early if the data file isn't there; workers reopen it.
	f, err := os.Open(datafn)
	if err != nil {
		return nil, err
	}
	f.Close()

	e := &IndexedExtractor{
		parser:   parser,
		workerch: make(chan streamChunk, 1000),
		results:  make(chan *PageResult, 1000),
	}

	wg := sync.WaitGroup{}
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go e.chunkWorker(datafn, &wg)
	}

	go e.indexWorker(indexfn)

	go func() {
		wg.Wait()
		close(e.results)
	}()

	return e, nil
}

// Next gets the next extracted page.  It returns io.EOF once every
// chunk has drained, or the first error any worker hit.
func (e *IndexedExtractor) Next() (*PageResult, error) {
	r, ok := <-e.results
	if !ok {
		if err := e.firstError(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return r, nil
}

func (e *IndexedExtractor) fail(err error) {
	e.mu.Lock()
	if e.err == nil {
		e.err = err
	}
	e.mu.Unlock()
}

func (e *IndexedExtractor) firstError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *IndexedExtractor) indexWorker(indexfn string) {
	defer close(e.workerch)

	r, err := os.Open(indexfn)
	if err != nil {
		e.fail(err)
		return
	}
	defer r.Close()

	cr, err := NewChunkReader(bzip2.NewReader(r))
	if err != nil {
		e.fail(err)
		return
	}
	for {
		offset, count, err := cr.Next()
		e.workerch <- streamChunk{offset: offset, pages: count}
		if err == io.EOF {
			return
		}
		if err != nil {
			e.fail(err)
			return
		}
	}
}

func (e *IndexedExtractor) chunkWorker(datafn string, wg *sync.WaitGroup) {
	defer wg.Done()

	r, err := os.Open(datafn)
	if err != nil {
		e.fail(err)
		return
	}
	defer r.Close()

	store := func(page *Page, revisions map[uint64]Revision) error {
		e.results <- &PageResult{Page: *page, Revisions: revisions}
		return nil
	}

	for chunk := range e.workerch {
		if _, err := r.Seek(chunk.offset, io.SeekStart); err != nil {
			e.fail(err)
			return
		}

		d := newDumpParser(e.parser, store)
		d.maxPages = chunk.pages
		if err := d.run(bzip2.NewReader(r)); err != nil {
			e.fail(err)
			return
		}
	}
}
