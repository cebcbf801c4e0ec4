// Package models defines core data structures for documents, analyses, and stored runs.
package models

import (
	"math"
	"time"
)

// MaxDocumentID is the largest document ID accepted by the engine.
const MaxDocumentID int64 = math.MaxUint32

// Document is a single post handed to the engine. IDs are 1-indexed and stable within a batch.
type Document struct {
	ID    int    `json:"id" db:"doc_id"`
	Title string `json:"title" db:"title"`
	Body  string `json:"body" db:"body"`
}

// Text returns the title and body joined by a space, the text the engine indexes.
func (d Document) Text() string {
	return d.Title + " " + d.Body
}

// Post is a record fetched from a content source before it becomes a Document.
type Post struct {
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	URL        string    `json:"url"`
	Score      int       `json:"score"`
	Subreddit  string    `json:"subreddit"`
	CreatedUTC time.Time `json:"created_utc,omitempty"`
}

// SearchRequest describes what a content source should fetch.
type SearchRequest struct {
	Subreddit  string `json:"subreddit"`
	Query      string `json:"query"`
	Limit      int    `json:"limit"`
	Sort       string `json:"sort,omitempty"`
	TimeFilter string `json:"time_filter,omitempty"`
}
