// Package corpus holds one batch of documents together with their normalized tokens.
package corpus

import (
	"github.com/hyperjump/tango/internal/models"
	"github.com/hyperjump/tango/internal/normalize"
)

// Corpus is the read-only view shared by the indexer and the TF-IDF scorer.
// Tokens are computed once in New; nothing mutates a Corpus afterwards, so it is
// safe for concurrent readers.
type Corpus struct {
	docs   []models.Document
	tokens [][]string
	size   int
}

// New normalizes every document's title and body. It returns an InvalidInputError
// when a document ID is outside [1, models.MaxDocumentID]. Duplicate IDs are accepted.
func New(docs []models.Document) (*Corpus, error) {
	c := &Corpus{
		docs:   make([]models.Document, len(docs)),
		tokens: make([][]string, len(docs)),
	}
	copy(c.docs, docs)
	for i, doc := range c.docs {
		if doc.ID <= 0 || int64(doc.ID) > models.MaxDocumentID {
			return nil, models.NewInvalidInputError("id", "document %d has id %d outside [1, %d]", i, doc.ID, models.MaxDocumentID)
		}
		c.tokens[i] = normalize.Normalize(doc.Text())
		c.size += len(c.tokens[i])
	}
	return c, nil
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// Document returns the i-th document in batch order.
func (c *Corpus) Document(i int) models.Document {
	return c.docs[i]
}

// Tokens returns the normalized tokens of the i-th document. Callers must not modify the slice.
func (c *Corpus) Tokens(i int) []string {
	return c.tokens[i]
}

// Size returns the total number of tokens across all documents.
func (c *Corpus) Size() int {
	return c.size
}

// Stream returns every token of the corpus in document order, which is the
// normalization of all titles and bodies concatenated.
func (c *Corpus) Stream() []string {
	out := make([]string, 0, c.size)
	for _, toks := range c.tokens {
		out = append(out, toks...)
	}
	return out
}
