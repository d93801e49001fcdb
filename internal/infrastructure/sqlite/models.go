package sqlite

import (
	"encoding/json"
	"time"

	"github.com/zjrosen/xshell/internal/history"
)

// compileModel is a row of the compiles table.
type compileModel struct {
	ID           int64
	GUID         string
	SourceID     string
	Succeeded    bool
	Stage        *string // nullable
	ErrorMessage *string // nullable
	ErrorLine    *int64  // nullable
	ErrorColumn  *int64  // nullable
	Assembly     *string // nullable, JSON array of lines
	DurationUS   int64
	CreatedAt    int64 // Unix milliseconds
}

func toCompileModel(r *history.Record) (*compileModel, error) {
	m := &compileModel{
		ID:         r.ID,
		GUID:       r.GUID,
		SourceID:   r.SourceID,
		Succeeded:  r.Succeeded,
		DurationUS: r.Duration.Microseconds(),
		CreatedAt:  r.CreatedAt.UnixMilli(),
	}
	if r.Succeeded {
		lines := r.Assembly
		if lines == nil {
			lines = []string{}
		}
		data, err := json.Marshal(lines)
		if err != nil {
			return nil, err
		}
		s := string(data)
		m.Assembly = &s
		return m, nil
	}

	if r.Stage != "" {
		m.Stage = &r.Stage
	}
	msg := r.ErrorMessage
	m.ErrorMessage = &msg
	if r.ErrorLine > 0 {
		line, col := int64(r.ErrorLine), int64(r.ErrorColumn)
		m.ErrorLine, m.ErrorColumn = &line, &col
	}
	return m, nil
}

func (m *compileModel) toDomain() (*history.Record, error) {
	r := &history.Record{
		ID:        m.ID,
		GUID:      m.GUID,
		SourceID:  m.SourceID,
		Succeeded: m.Succeeded,
		Duration:  time.Duration(m.DurationUS) * time.Microsecond,
		CreatedAt: time.UnixMilli(m.CreatedAt),
	}
	if m.Stage != nil {
		r.Stage = *m.Stage
	}
	if m.ErrorMessage != nil {
		r.ErrorMessage = *m.ErrorMessage
	}
	if m.ErrorLine != nil {
		r.ErrorLine = int(*m.ErrorLine)
	}
	if m.ErrorColumn != nil {
		r.ErrorColumn = int(*m.ErrorColumn)
	}
	if m.Assembly != nil {
		if err := json.Unmarshal([]byte(*m.Assembly), &r.Assembly); err != nil {
			return nil, err
		}
	}
	return r, nil
}
