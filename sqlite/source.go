// Package sqlite loads record collections from SQLite databases and stores
// pipeline results back into them. Column values are converted according to
// the declared column type, or to an explicit per-column kind.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/asaidimu/go-sift/core/record"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ColumnKind selects how a column value is converted into a document value.
type ColumnKind string

// Supported column kinds.
const (
	KindBoolean ColumnKind = "boolean"
	KindText    ColumnKind = "text"
	KindInteger ColumnKind = "integer"
	KindReal    ColumnKind = "real"
	KindJSON    ColumnKind = "json"
	KindTime    ColumnKind = "time"
)

// Options tunes how rows are read.
type Options struct {
	// Kinds overrides the kind inferred from a column's declared type.
	Kinds map[string]ColumnKind
}

// Source reads documents from a SQLite database.
type Source struct {
	db     *sql.DB
	logger *zap.Logger
	kinds  map[string]ColumnKind
	owned  bool
}

// NewSource wraps an open database handle. The caller keeps ownership of db.
func NewSource(db *sql.DB, logger *zap.Logger, opts *Options) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	kinds := map[string]ColumnKind{}
	if opts != nil {
		for col, kind := range opts.Kinds {
			kinds[col] = kind
		}
	}
	return &Source{db: db, logger: logger, kinds: kinds}
}

// Open opens the database at dsn with the sqlite3 driver. The returned Source
// owns the handle and closes it on Close.
func Open(dsn string, logger *zap.Logger, opts *Options) (*Source, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", dsn, err)
	}
	if strings.Contains(dsn, ":memory:") {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database %s: %w", dsn, err)
	}

	s := NewSource(db, logger, opts)
	s.owned = true
	return s, nil
}

// DB returns the underlying database handle.
func (s *Source) DB() *sql.DB {
	return s.db
}

// Close releases the database handle when the Source opened it.
func (s *Source) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Query runs a SELECT statement and returns one document per row.
func (s *Source) Query(ctx context.Context, query string, args ...any) ([]record.Document, error) {
	s.logger.Debug("Executing SQL SELECT", zap.String("sql", query), zap.Any("params", args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("Failed to execute SELECT query", zap.Error(err), zap.String("sql", query))
		return nil, fmt.Errorf("failed to execute SELECT query: %w", err)
	}
	defer rows.Close()
	return s.readRows(rows)
}

// LoadTable returns every row of table.
func (s *Source) LoadTable(ctx context.Context, table string) ([]record.Document, error) {
	return s.Query(ctx, "SELECT * FROM "+quoteIdentifier(table))
}

// Tables lists the user tables of the database in name order.
func (s *Source) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning tables: %w", err)
	}
	return tables, nil
}

// readRows reads all rows from a *sql.Rows object and converts them into
// documents, using explicit kinds first and declared column types second.
func (s *Source) readRows(rows *sql.Rows) ([]record.Document, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	kinds := make([]ColumnKind, len(columns))
	for i, col := range columns {
		if kind, ok := s.kinds[col]; ok {
			kinds[i] = kind
			continue
		}
		kinds[i] = kindForDeclaredType(types[i].DatabaseTypeName())
	}

	results := []record.Document{}
	for rows.Next() {
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		doc := make(record.Document, len(columns))
		for i, col := range columns {
			doc[col] = s.convert(col, kinds[i], values[i])
		}
		results = append(results, doc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	s.logger.Debug("Rows read", zap.Int("count", len(results)))
	return results, nil
}

func (s *Source) convert(col string, kind ColumnKind, val any) any {
	if val == nil {
		return nil
	}
	if b, ok := val.([]byte); ok && kind != KindJSON {
		val = string(b)
	}

	switch kind {
	case KindBoolean:
		switch v := val.(type) {
		case int64:
			return v != 0
		case bool:
			return v
		}
	case KindText:
		return record.ToComparableString(val)
	case KindInteger:
		if f, ok := val.(float64); ok {
			return int64(f)
		}
	case KindReal:
		if i, ok := val.(int64); ok {
			return float64(i)
		}
	case KindJSON:
		var raw []byte
		switch v := val.(type) {
		case []byte:
			raw = v
		case string:
			raw = []byte(v)
		}
		if raw != nil {
			var decoded any
			if err := json.Unmarshal(raw, &decoded); err == nil {
				return decoded
			}
			s.logger.Warn("Column is not valid JSON, using raw value", zap.String("column", col))
			return string(raw)
		}
	case KindTime:
		if str, ok := val.(string); ok {
			if t, ok := parseTime(str); ok {
				return t
			}
		}
	}
	return val
}

// kindForDeclaredType maps a declared column type to a kind using SQLite's
// affinity rules, with extra recognition of BOOLEAN, JSON and date types.
func kindForDeclaredType(decl string) ColumnKind {
	decl = strings.ToUpper(decl)
	switch {
	case decl == "":
		return ""
	case strings.Contains(decl, "BOOL"):
		return KindBoolean
	case strings.Contains(decl, "JSON"):
		return KindJSON
	case strings.Contains(decl, "DATE"), strings.Contains(decl, "TIME"):
		return KindTime
	case strings.Contains(decl, "INT"):
		return KindInteger
	case strings.Contains(decl, "CHAR"), strings.Contains(decl, "CLOB"), strings.Contains(decl, "TEXT"):
		return KindText
	case strings.Contains(decl, "REAL"), strings.Contains(decl, "FLOA"), strings.Contains(decl, "DOUB"),
		strings.Contains(decl, "NUMERIC"), strings.Contains(decl, "DECIMAL"):
		return KindReal
	}
	return ""
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// quoteIdentifier safely quotes an identifier, such as a table or column name,
// to prevent SQL injection and to handle names that might be keywords or contain
// special characters.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
