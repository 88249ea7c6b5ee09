package repository

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/apphelix/engagement-tracker/internal/pipeline"
)

var _ pipeline.EngagementStore = (*Store)(nil)

// Store is the engagement store over database/sql. Queries are built with
// squirrel so the same code serves Postgres ($n) and sqlite (?) placeholders.
type Store struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	logger *slog.Logger
}

func NewStore(db *sql.DB, driver string, logger *slog.Logger) *Store {
	var format sq.PlaceholderFormat = sq.Question
	if driver == "postgres" {
		format = sq.Dollar
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(format),
		logger: logger,
	}
}

// Timestamps are stored as RFC 3339 TEXT so the schema is identical on both drivers.

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

// String slices (dependencies, risk factors) are stored as JSON TEXT.

func fmtList(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func parseList(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s.String), &out); err != nil {
		return nil
	}
	return out
}
