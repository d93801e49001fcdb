package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/xshell/internal/history"
)

const compileColumns = `id, guid, source_id, succeeded, stage, error_message, error_line, error_column,
	assembly, duration_us, created_at`

// compileRepository implements history.Repository using SQLite.
type compileRepository struct {
	db *sql.DB
}

func newCompileRepository(db *sql.DB) *compileRepository {
	return &compileRepository{db: db}
}

var _ history.Repository = (*compileRepository)(nil)

func scanCompile(scanner interface{ Scan(...any) error }) (*history.Record, error) {
	var m compileModel
	if err := scanner.Scan(
		&m.ID, &m.GUID, &m.SourceID, &m.Succeeded, &m.Stage, &m.ErrorMessage,
		&m.ErrorLine, &m.ErrorColumn, &m.Assembly, &m.DurationUS, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	r, err := m.toDomain()
	if err != nil {
		return nil, fmt.Errorf("decoding compile %d: %w", m.ID, err)
	}
	return r, nil
}

// Save inserts r and assigns its ID.
func (r *compileRepository) Save(ctx context.Context, rec *history.Record) error {
	if rec.ID != 0 {
		return fmt.Errorf("compile %d already saved", rec.ID)
	}
	m, err := toCompileModel(rec)
	if err != nil {
		return fmt.Errorf("encoding compile: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO compiles (
			guid, source_id, succeeded, stage, error_message, error_line, error_column,
			assembly, duration_us, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.GUID, m.SourceID, m.Succeeded, m.Stage, m.ErrorMessage, m.ErrorLine, m.ErrorColumn,
		m.Assembly, m.DurationUS, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert compile: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

func (r *compileRepository) findOne(ctx context.Context, where string, args ...any) (*history.Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+compileColumns+` FROM compiles WHERE `+where, args...)
	rec, err := scanCompile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, history.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find compile: %w", err)
	}
	return rec, nil
}

// FindByID returns the record with the given ID.
func (r *compileRepository) FindByID(ctx context.Context, id int64) (*history.Record, error) {
	return r.findOne(ctx, `id = ?`, id)
}

// FindByGUID matches a full GUID or a prefix that identifies one record.
func (r *compileRepository) FindByGUID(ctx context.Context, guid string) (*history.Record, error) {
	guid = strings.ToLower(strings.TrimSpace(guid))
	if guid == "" {
		return nil, history.ErrNotFound
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+compileColumns+` FROM compiles WHERE substr(guid, 1, ?) = ? LIMIT 2`, len(guid), guid)
	if err != nil {
		return nil, fmt.Errorf("failed to find compile: %w", err)
	}
	recs, err := collect(rows)
	if err != nil {
		return nil, err
	}
	switch len(recs) {
	case 0:
		return nil, history.ErrNotFound
	case 1:
		return recs[0], nil
	default:
		return nil, fmt.Errorf("guid prefix %q is ambiguous", guid)
	}
}

// List returns the newest records first.
func (r *compileRepository) List(ctx context.Context, limit int) ([]*history.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+compileColumns+` FROM compiles ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list compiles: %w", err)
	}
	return collect(rows)
}

// LatestSuccess returns the newest successful compile of sourceID.
func (r *compileRepository) LatestSuccess(ctx context.Context, sourceID string) (*history.Record, error) {
	return r.findOne(ctx, `source_id = ? AND succeeded = 1 ORDER BY id DESC LIMIT 1`, sourceID)
}

func collect(rows *sql.Rows) ([]*history.Record, error) {
	defer func() { _ = rows.Close() }()
	var out []*history.Record
	for rows.Next() {
		rec, err := scanCompile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compile: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate compiles: %w", err)
	}
	return out, nil
}
