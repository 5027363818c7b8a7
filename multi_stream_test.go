package citescoop

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexedExtractor(t *testing.T) {
	e, err := NewIndexedExtractor("testdata/multistream-index.txt.bz2",
		"testdata/multistream.xml.bz2", 2, NewParser(nil, ParserOptions{}))
	require.NoError(t, err)

	results := map[string]*PageResult{}
	for {
		r, err := e.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		results[r.Page.Title] = r
	}
	require.Len(t, results, 2)

	mine := results["My Page"]
	require.NotNil(t, mine)
	assert.Equal(t, uint64(1), mine.Page.ID)
	require.Len(t, mine.Page.Citations, 1)
	assert.Equal(t, uint64(5), mine.Page.Citations[0].RevisionAdded)
	assert.Contains(t, mine.Revisions, uint64(5))

	other := results["Other Page"]
	require.NotNil(t, other)
	require.Len(t, other.Page.Citations, 1)
	assert.Equal(t, "Systema Porifera", other.Page.Citations[0].Citation.Title)
	assert.Contains(t, other.Revisions, uint64(8))
}

func TestIndexedExtractorMissingData(t *testing.T) {
	_, err := NewIndexedExtractor("testdata/multistream-index.txt.bz2",
		"testdata/nope.xml.bz2", 2, NewParser(nil, ParserOptions{}))
	require.Error(t, err)
}
