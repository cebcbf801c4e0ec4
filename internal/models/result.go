package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VocabularyEntry is a term and its frequency across the whole token stream.
type VocabularyEntry struct {
	Term      string `json:"term"`
	Frequency int    `json:"frequency"`
}

// PostingList holds the unique document IDs containing a term, ascending.
type PostingList []int

// Join returns the IDs joined by commas, e.g. "1,3".
func (p PostingList) Join() string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// VocabularyRow is one row of the vocabulary table: a top-K term and where it occurs.
type VocabularyRow struct {
	Term      string      `json:"term"`
	Frequency int         `json:"frequency"`
	Posts     PostingList `json:"posts"`
}

// PostsJoined returns the posting list in its persisted form.
func (r VocabularyRow) PostsJoined() string {
	return r.Posts.Join()
}

// QueryResult is the TF-IDF outcome for one query term.
// Found is false when the term never occurs in the corpus; Score is then meaningless.
type QueryResult struct {
	Term  string
	Score float64
	Found bool
}

type queryResultJSON struct {
	Term     string   `json:"term"`
	Score    *float64 `json:"score,omitempty"`
	NotFound bool     `json:"not_found,omitempty"`
}

// MarshalJSON encodes found terms as {term, score} and unseen terms as {term, not_found: true}.
func (r QueryResult) MarshalJSON() ([]byte, error) {
	out := queryResultJSON{Term: r.Term}
	if r.Found {
		score := r.Score
		out.Score = &score
	} else {
		out.NotFound = true
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *QueryResult) UnmarshalJSON(data []byte) error {
	var in queryResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Term = in.Term
	r.Found = !in.NotFound
	r.Score = 0
	if in.Score != nil {
		r.Score = *in.Score
	}
	return nil
}

// Analysis is the output of one engine invocation.
type Analysis struct {
	DocumentCount int             `json:"document_count"`
	TopK          int             `json:"top_k"`
	Query         string          `json:"query"`
	Vocabulary    []VocabularyRow `json:"vocabulary"`
	Scores        []QueryResult   `json:"scores"`
}

// Run is a stored analysis together with the batch it was computed from.
type Run struct {
	ID        string     `json:"id" db:"id"`
	Source    string     `json:"source" db:"source"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	Documents []Document `json:"documents,omitempty"`
	Analysis  *Analysis  `json:"analysis"`
}

// RunSummary is a Run without its documents and analysis, used for listings.
type RunSummary struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	Query         string    `json:"query"`
	TopK          int       `json:"top_k"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ParsePostingList is the inverse of PostingList.Join. An empty string yields an empty list.
func ParsePostingList(s string) (PostingList, error) {
	if s == "" {
		return PostingList{}, nil
	}
	parts := strings.Split(s, ",")
	out := make(PostingList, len(parts))
	for i, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid posting %q: %w", p, err)
		}
		out[i] = id
	}
	return out, nil
}
