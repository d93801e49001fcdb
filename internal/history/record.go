// Package history models the record of past compiles.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/xshell/internal/pipeline"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("compile record not found")

// Record is one compile run. Exactly one of Assembly (on success) and
// ErrorMessage (on failure) is meaningful.
type Record struct {
	ID           int64
	GUID         string
	SourceID     string
	Succeeded    bool
	Stage        string // failing stage; empty on success
	ErrorMessage string
	ErrorLine    int
	ErrorColumn  int
	Assembly     []string
	Duration     time.Duration
	CreatedAt    time.Time
}

// NewRecord captures a pipeline result.
func NewRecord(sourceID string, res pipeline.Result, took time.Duration, at time.Time) *Record {
	r := &Record{
		GUID:      uuid.NewString(),
		SourceID:  sourceID,
		Succeeded: res.OK(),
		Duration:  took,
		CreatedAt: at,
	}
	if r.Succeeded {
		r.Assembly = res.Lines()
		return r
	}

	err := res.Err()
	r.ErrorMessage = err.Error()
	var perr *pipeline.Error
	if errors.As(err, &perr) {
		r.Stage = string(perr.Stage)
		r.ErrorMessage = perr.Message
		if perr.Pos != nil {
			r.ErrorLine, r.ErrorColumn = perr.Pos.Line, perr.Pos.Column
		}
	}
	return r
}

// ShortGUID returns the first eight characters of the GUID.
func (r *Record) ShortGUID() string {
	if len(r.GUID) < 8 {
		return r.GUID
	}
	return r.GUID[:8]
}

// Status is "ok" or the failing stage.
func (r *Record) Status() string {
	if r.Succeeded {
		return "ok"
	}
	if r.Stage == "" {
		return "failed"
	}
	return r.Stage + " failed"
}

// Repository stores compile records.
type Repository interface {
	// Save inserts r and sets its ID. Records are never updated.
	Save(ctx context.Context, r *Record) error
	FindByID(ctx context.Context, id int64) (*Record, error)
	// FindByGUID accepts a full GUID or a unique prefix of one.
	FindByGUID(ctx context.Context, guid string) (*Record, error)
	// List returns up to limit records, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Record, error)
	// LatestSuccess returns the newest successful record for sourceID.
	LatestSuccess(ctx context.Context, sourceID string) (*Record, error)
}
