package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/smart-intersection/internal/models"
)

// RunCollection defines the interface for run summary operations.
type RunCollection interface {
	InsertRun(ctx context.Context, run models.RunSummary) error
	FindRuns(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (RunCursor, error)
}

// RunCursor defines the interface for run cursor operations.
type RunCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}
