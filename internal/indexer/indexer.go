// Package indexer builds the inverted index of a corpus, restricted to its most frequent terms.
package indexer

import (
	"github.com/RoaringBitmap/roaring"
	"github.com/hyperjump/tango/internal/corpus"
	"github.com/hyperjump/tango/internal/models"
	"github.com/hyperjump/tango/internal/vocabulary"
	"go.uber.org/zap"
)

// Index maps each selected term to the documents containing it.
type Index struct {
	terms    []models.VocabularyEntry
	postings map[string]models.PostingList
}

// Option configures Build.
type Option func(*builder)

type builder struct {
	logger *zap.Logger
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(b *builder) { b.logger = l }
}

// Build indexes every document of c and keeps the postings of the top k terms of the
// corpus token stream. k must be positive; an empty corpus yields an empty index.
func Build(c *corpus.Corpus, k int, opts ...Option) (*Index, error) {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}

	top, err := vocabulary.TopTerms(c.Stream(), k)
	if err != nil {
		return nil, err
	}

	full := make(map[string]*roaring.Bitmap)
	for i := 0; i < c.Len(); i++ {
		id := uint32(c.Document(i).ID)
		for _, tok := range c.Tokens(i) {
			bm, ok := full[tok]
			if !ok {
				bm = roaring.NewBitmap()
				full[tok] = bm
			}
			bm.Add(id)
		}
	}

	idx := &Index{
		terms:    top,
		postings: make(map[string]models.PostingList, len(top)),
	}
	for _, entry := range top {
		ids := full[entry.Term].ToArray()
		list := make(models.PostingList, len(ids))
		for i, id := range ids {
			list[i] = int(id)
		}
		idx.postings[entry.Term] = list
	}
	if b.logger != nil {
		b.logger.Debug("index built",
			zap.Int("documents", c.Len()),
			zap.Int("distinct_terms", len(full)),
			zap.Int("selected_terms", len(top)),
		)
	}
	return idx, nil
}

// Terms returns the selected vocabulary, most frequent first.
func (idx *Index) Terms() []models.VocabularyEntry {
	return append([]models.VocabularyEntry(nil), idx.terms...)
}

// Postings returns the posting list of term and whether term was selected.
func (idx *Index) Postings(term string) (models.PostingList, bool) {
	list, ok := idx.postings[term]
	return list, ok
}

// Map returns the index as a term to posting list mapping.
func (idx *Index) Map() map[string]models.PostingList {
	out := make(map[string]models.PostingList, len(idx.postings))
	for term, list := range idx.postings {
		out[term] = list
	}
	return out
}

// Len returns the number of selected terms.
func (idx *Index) Len() int {
	return len(idx.terms)
}

// Rows returns the vocabulary table in ranking order.
func (idx *Index) Rows() []models.VocabularyRow {
	rows := make([]models.VocabularyRow, len(idx.terms))
	for i, entry := range idx.terms {
		rows[i] = models.VocabularyRow{
			Term:      entry.Term,
			Frequency: entry.Frequency,
			Posts:     idx.postings[entry.Term],
		}
	}
	return rows
}
