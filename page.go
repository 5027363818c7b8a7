package citescoop

// A Timestamp is a point in time as seconds since the unix epoch plus
// nanoseconds.
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos,omitempty"`
}

// Before orders timestamps by seconds, then nanos.
func (t Timestamp) Before(o Timestamp) bool {
	if t.Seconds == o.Seconds {
		return t.Nanos < o.Nanos
	}
	return t.Seconds < o.Seconds
}

// A Revision is one snapshot of a page in the dump.
type Revision struct {
	ID        uint64    `json:"revision_id"`
	ParentID  uint64    `json:"parent_id,omitempty"`
	User      string    `json:"user,omitempty"`
	Timestamp Timestamp `json:"timestamp"`
}

// RevisionCitations holds the citations one revision's text contains,
// keyed by citation fingerprint.
type RevisionCitations struct {
	Revision  Revision
	Citations map[string]*ExtractedCitation
}

// A Citation is a deduplicated citation annotated with the revision
// that introduced it and, if it was later dropped, the revision that
// removed it.
type Citation struct {
	Citation        ExtractedCitation `json:"citation"`
	RevisionAdded   uint64            `json:"revision_added"`
	RevisionRemoved *uint64           `json:"revision_removed,omitempty"`
}

// Removed reports whether the citation was removed at some revision.
func (c *Citation) Removed() bool {
	return c.RevisionRemoved != nil
}

// A Page is one article's worth of extracted citations.
type Page struct {
	Title     string     `json:"title"`
	ID        uint64     `json:"page_id"`
	Citations []Citation `json:"citations,omitempty"`
}

// A FileHeader leads a framed output file.
type FileHeader struct {
	PageCount uint64 `json:"page_count,omitempty"`
	Language  string `json:"language,omitempty"`
}
