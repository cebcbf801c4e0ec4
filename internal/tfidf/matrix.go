// Package tfidf computes the document-term TF-IDF matrix of a corpus and scores query terms against it.
package tfidf

import (
	"math"
	"sort"

	"github.com/hyperjump/tango/internal/corpus"
	"github.com/hyperjump/tango/internal/models"
	"github.com/hyperjump/tango/internal/normalize"
)

type cell struct {
	col    int
	weight float64
}

// Matrix holds one sparse row per document and one column per distinct token.
// Columns are sorted lexicographically. A Matrix is immutable once built.
type Matrix struct {
	terms   []string
	columns map[string]int
	idf     []float64
	rows    [][]cell
	sums    []float64
	opts    Options
}

// BuildMatrix weights every token of every document of c. The vocabulary is every
// distinct token in the corpus. Invalid options fall back to TFL2.
func BuildMatrix(c *corpus.Corpus, opts Options) *Matrix {
	if opts.Validate() != nil || opts.TF == "" {
		opts.TF = TFL2
	}

	df := make(map[string]int)
	counts := make([]map[string]int, c.Len())
	for i := 0; i < c.Len(); i++ {
		counts[i] = make(map[string]int)
		for _, tok := range c.Tokens(i) {
			if counts[i][tok] == 0 {
				df[tok]++
			}
			counts[i][tok]++
		}
	}

	m := &Matrix{
		terms:   make([]string, 0, len(df)),
		columns: make(map[string]int, len(df)),
		rows:    make([][]cell, c.Len()),
		opts:    opts,
	}
	for term := range df {
		m.terms = append(m.terms, term)
	}
	sort.Strings(m.terms)
	n := float64(c.Len())
	m.idf = make([]float64, len(m.terms))
	for col, term := range m.terms {
		m.columns[term] = col
		m.idf[col] = idf(n, float64(df[term]), opts.SmoothIDF)
	}

	m.sums = make([]float64, len(m.terms))
	for i, docCounts := range counts {
		row := make([]cell, 0, len(docCounts))
		for term, count := range docCounts {
			col := m.columns[term]
			row = append(row, cell{col: col, weight: tf(count, opts.SublinearTF) * m.idf[col]})
		}
		sort.Slice(row, func(a, b int) bool { return row[a].col < row[b].col })
		switch opts.TF {
		case TFL2:
			var sq float64
			for _, cl := range row {
				sq += cl.weight * cl.weight
			}
			if sq > 0 {
				norm := math.Sqrt(sq)
				for j := range row {
					row[j].weight /= norm
				}
			}
		case TFLength:
			length := float64(len(c.Tokens(i)))
			for j := range row {
				row[j].weight /= length
			}
		}
		for _, cl := range row {
			m.sums[cl.col] += cl.weight
		}
		m.rows[i] = row
	}
	return m
}

func idf(n, df float64, smooth bool) float64 {
	if smooth {
		return math.Log((1+n)/(1+df)) + 1
	}
	return math.Log(n/df) + 1
}

func tf(count int, sublinear bool) float64 {
	if sublinear {
		return 1 + math.Log(float64(count))
	}
	return float64(count)
}

// Rows returns the number of documents.
func (m *Matrix) Rows() int {
	return len(m.rows)
}

// Cols returns the vocabulary size.
func (m *Matrix) Cols() int {
	return len(m.terms)
}

// Terms returns the vocabulary in column order.
func (m *Matrix) Terms() []string {
	return append([]string(nil), m.terms...)
}

// Options returns the options the matrix was built with.
func (m *Matrix) Options() Options {
	return m.opts
}

// IDF returns the inverse document frequency of term.
func (m *Matrix) IDF(term string) (float64, bool) {
	col, ok := m.columns[term]
	if !ok {
		return 0, false
	}
	return m.idf[col], true
}

// Weight returns the weight of term in document row. Unknown terms and terms absent
// from the row weigh zero.
func (m *Matrix) Weight(row int, term string) float64 {
	col, ok := m.columns[term]
	if !ok {
		return 0
	}
	cells := m.rows[row]
	j := sort.Search(len(cells), func(k int) bool { return cells[k].col >= col })
	if j < len(cells) && cells[j].col == col {
		return cells[j].weight
	}
	return 0
}

// Row returns the non-zero weights of document row keyed by term.
func (m *Matrix) Row(row int) map[string]float64 {
	out := make(map[string]float64, len(m.rows[row]))
	for _, cl := range m.rows[row] {
		out[m.terms[cl.col]] = cl.weight
	}
	return out
}

// Total returns the sum of term's weight over all documents and whether term is in the vocabulary.
func (m *Matrix) Total(term string) (float64, bool) {
	col, ok := m.columns[term]
	if !ok {
		return 0, false
	}
	return m.sums[col], true
}

// Score normalizes query and scores each resulting term independently, in order.
func (m *Matrix) Score(query string) []models.QueryResult {
	return m.score(normalize.Normalize(query))
}

// ScoreTerms normalizes every query term and scores the resulting tokens in order.
// A term that normalizes to nothing (a stopword, punctuation) contributes no result.
func (m *Matrix) ScoreTerms(terms []string) []models.QueryResult {
	var tokens []string
	for _, term := range terms {
		tokens = append(tokens, normalize.Normalize(term)...)
	}
	return m.score(tokens)
}

func (m *Matrix) score(tokens []string) []models.QueryResult {
	results := make([]models.QueryResult, 0, len(tokens))
	for _, tok := range tokens {
		total, ok := m.Total(tok)
		results = append(results, models.QueryResult{Term: tok, Score: total, Found: ok})
	}
	return results
}
