// Package storage defines the persistence interface for analysis runs.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/tango/internal/models"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Storage defines run persistence operations.
type Storage interface {
	// SaveRun stores run with its documents and analysis. An empty ID is replaced
	// with a new UUID and a zero CreatedAt with the current time.
	SaveRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	// ListRuns returns summaries newest first.
	ListRuns(ctx context.Context, offset, limit int) ([]models.RunSummary, error)
	DeleteRun(ctx context.Context, id string) error

	// Stats
	CountRuns(ctx context.Context) (int64, error)
	Size() (int64, error)

	Close() error
}
