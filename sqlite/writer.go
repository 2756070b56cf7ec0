package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/asaidimu/go-sift/core/record"
	"go.uber.org/zap"
)

// WriteOptions controls how documents are stored.
type WriteOptions struct {
	// Replace drops an existing table before writing.
	Replace bool
}

// WriteTable stores docs in table, creating it when it does not exist.
// Columns are the union of the documents' top-level keys in sorted order and
// their declared types are inferred from the first non-nil value of each key.
// Nested objects and arrays are stored as JSON. The whole write runs in one
// transaction; it returns the number of inserted rows.
func (s *Source) WriteTable(ctx context.Context, table string, docs []record.Document, opts *WriteOptions) (int64, error) {
	columns := columnsOf(docs)
	if len(columns) == 0 {
		return 0, fmt.Errorf("cannot write table %s: documents have no fields", table)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if opts != nil && opts.Replace {
		stmt := "DROP TABLE IF EXISTS " + quoteIdentifier(table)
		s.logger.Debug("Executing SQL DROP", zap.String("sql", stmt))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	ddl := createTableSQL(table, columns)
	s.logger.Debug("Executing SQL CREATE", zap.String("sql", ddl))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	insert := insertSQL(table, columns)
	s.logger.Debug("Preparing SQL INSERT", zap.String("sql", insert))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare INSERT statement: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i, doc := range docs {
		args := make([]any, len(columns))
		for j, col := range columns {
			v, err := toColumnValue(doc[col.name])
			if err != nil {
				return 0, fmt.Errorf("document %d field %s: %w", i, col.name, err)
			}
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			s.logger.Error("Failed to execute INSERT", zap.Error(err), zap.Int("document", i))
			return 0, fmt.Errorf("failed to execute INSERT query: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.logger.Info("Documents written", zap.String("table", table), zap.Int64("rows", inserted))
	return inserted, nil
}

type column struct {
	name     string
	declared string
}

func columnsOf(docs []record.Document) []column {
	declared := make(map[string]string)
	for _, doc := range docs {
		for key, value := range doc {
			if current, ok := declared[key]; ok && current != "" {
				continue
			}
			declared[key] = declaredType(value)
		}
	}

	columns := make([]column, 0, len(declared))
	for name, decl := range declared {
		if decl == "" {
			decl = "TEXT"
		}
		columns = append(columns, column{name: name, declared: decl})
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i].name < columns[j].name })
	return columns
}

// declaredType returns the column type for a Go value, or "" when the value
// carries no type information.
func declaredType(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case bool:
		return "BOOLEAN"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "INTEGER"
	case float32, float64, json.Number:
		return "REAL"
	case string:
		return "TEXT"
	case time.Time:
		return "DATETIME"
	case map[string]any, record.Document, []any:
		return "JSON"
	}
	return "TEXT"
}

func toColumnValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool, string, time.Time,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32,
		float32, float64:
		return val, nil
	case uint64:
		return fmt.Sprintf("%d", val), nil
	case json.Number:
		return val.Float64()
	case map[string]any, record.Document, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON value: %w", err)
		}
		return string(b), nil
	}
	return record.ToComparableString(v), nil
}

func createTableSQL(table string, columns []column) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = "    " + quoteIdentifier(col.name) + " " + col.declared
	}
	return "CREATE TABLE IF NOT EXISTS " + quoteIdentifier(table) + " (\n" + strings.Join(defs, ",\n") + "\n);"
}

func insertSQL(table string, columns []column) string {
	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		names[i] = quoteIdentifier(col.name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdentifier(table), strings.Join(names, ", "), strings.Join(marks, ", "))
}
