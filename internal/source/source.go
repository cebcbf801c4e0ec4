// Package source fetches posts for analysis from Reddit or from a saved results workbook.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/tango/internal/models"
	"github.com/hyperjump/tango/internal/sheet"
)

// ErrUnauthorized is returned when credentials are missing or rejected.
var ErrUnauthorized = errors.New("unauthorized")

// ContentSource produces the posts of one batch.
type ContentSource interface {
	Fetch(ctx context.Context, req models.SearchRequest) ([]models.Post, error)
}

// SpreadsheetSource reads posts from a workbook written by sheet.WritePosts.
// The search request is ignored except for Limit, which caps the number of posts.
type SpreadsheetSource struct {
	Path string
}

// Fetch implements ContentSource.
func (s SpreadsheetSource) Fetch(ctx context.Context, req models.SearchRequest) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	posts, err := sheet.ReadPosts(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	if req.Limit > 0 && len(posts) > req.Limit {
		posts = posts[:req.Limit]
	}
	return posts, nil
}

// Documents numbers posts from 1 in order.
func Documents(posts []models.Post) []models.Document {
	docs := make([]models.Document, len(posts))
	for i, p := range posts {
		docs[i] = models.Document{ID: i + 1, Title: p.Title, Body: p.Body}
	}
	return docs
}
