package citescoop

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// An IndexEntry is one article's line from a multistream dump index.
type IndexEntry struct {
	// StreamOffset is where the article's bzip2 stream starts in
	// the data file.
	StreamOffset int64
	// PageID is the article's page id.
	PageID uint64
	// Title is the article title.
	Title string
}

func (e IndexEntry) String() string {
	return fmt.Sprintf("%v:%v:%v", e.StreamOffset, e.PageID, e.Title)
}

// An IndexReader reads a wikipedia multistream index.
type IndexReader struct {
	s *bufio.Scanner

	// Offsets in some indexes are written as 32-bit values and
	// wrap; base carries the correction.
	base       int64
	prevOffset int64
}

// NewIndexReader gets an index reader from a stream of index lines.
func NewIndexReader(r io.Reader) *IndexReader {
	return &IndexReader{s: bufio.NewScanner(r)}
}

// Next gets the next entry from the index.
//
// Offsets are assumed to have been meant as incremental, so a value
// lower than its predecessor is read as a 32-bit wraparound.
func (ir *IndexReader) Next() (IndexEntry, error) {
	if !ir.s.Scan() {
		err := ir.s.Err()
		if err == nil {
			err = io.EOF
		}
		return IndexEntry{}, err
	}

	parts := strings.SplitN(ir.s.Text(), ":", 3)
	if len(parts) != 3 {
		return IndexEntry{}, errors.New("bad index record")
	}

	offset, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return IndexEntry{}, err
	}
	pageID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return IndexEntry{}, err
	}

	if offset < ir.prevOffset {
		ir.base += 1 << 32
	}
	ir.prevOffset = offset

	return IndexEntry{
		StreamOffset: offset + ir.base,
		PageID:       pageID,
		Title:        parts[2],
	}, nil
}

// A ChunkReader collapses an index into (offset, page count) pairs,
// one per bzip2 stream.  Useful when you don't care which articles a
// stream holds, just how many and where.
type ChunkReader struct {
	index *IndexReader

	offset int64
	count  int
}

// NewChunkReader gets a chunk reader from a stream of index lines.
func NewChunkReader(r io.Reader) (*ChunkReader, error) {
	cr := &ChunkReader{index: NewIndexReader(r)}
	first, err := cr.index.Next()
	if err != nil {
		return nil, err
	}
	cr.offset = first.StreamOffset
	cr.count = 1
	return cr, nil
}

// Next gets the next chunk's offset and page count.
//
// Note that the last chunk comes back with io.EOF and a valid offset
// and count.
func (cr *ChunkReader) Next() (offset int64, count int, err error) {
	for {
		e, err := cr.index.Next()
		if err != nil {
			offset, count = cr.offset, cr.count
			cr.offset, cr.count = 0, 0
			return offset, count, err
		}

		if e.StreamOffset != cr.offset {
			offset, count = cr.offset, cr.count
			cr.offset, cr.count = e.StreamOffset, 1
			return offset, count, nil
		}
		cr.count++
	}
}
