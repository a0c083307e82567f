// Package executor validates and executes read-only SQL against the
// database. The validation is deliberately conservative and non-parsing: it
// can reject legitimate SELECTs containing forbidden words as identifiers and
// cannot catch keyword obfuscation. That trade-off is the security boundary
// and must not be relaxed.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sadop/sadop/internal/errors"
)

// defaultRowCap is appended as a LIMIT when the statement has none.
const defaultRowCap = 1000

// forbiddenKeywords reject a statement when present as a literal substring of
// the upper-cased text.
var forbiddenKeywords = []string{"DROP", "DELETE", "INSERT", "UPDATE", "ALTER", "CREATE", "TRUNCATE"}

// Result is the structured outcome of one guarded execution.
type Result struct {
	Success  bool                     `json:"success"`
	Data     []map[string]interface{} `json:"data"`
	RowCount int                      `json:"row_count"`
	Columns  []string                 `json:"columns"`
	Error    string                   `json:"error,omitempty"`
}

// Executor runs guarded read-only queries. Each call checks out a dedicated
// connection and releases it on every exit path.
type Executor struct {
	db  *sql.DB
	log *zap.Logger
}

// New creates an executor over the given database handle.
func New(db *sql.DB, log *zap.Logger) *Executor {
	return &Executor{db: db, log: log}
}

// Validate rejects any statement that is not a plain SELECT or that contains
// a forbidden keyword. Pure check; the database is never contacted.
func Validate(sqlText string) error {
	clean := strings.ToUpper(strings.TrimSpace(sqlText))

	if !strings.HasPrefix(clean, "SELECT") {
		return errors.New(errors.ErrTypeQuerySafety,
			"only SELECT queries are allowed for security reasons")
	}

	for _, kw := range forbiddenKeywords {
		if strings.Contains(clean, kw) {
			return errors.Newf(errors.ErrTypeQuerySafety,
				"query contains forbidden keyword: %s", kw)
		}
	}

	return nil
}

// Execute validates and runs a read-only statement, capping the result set at
// the default row limit when the statement carries no LIMIT clause.
func (e *Executor) Execute(ctx context.Context, sqlText string) Result {
	if err := Validate(sqlText); err != nil {
		return failure(err.Error())
	}

	if e.db == nil {
		return failure("failed to connect to database")
	}

	conn, err := e.db.Conn(ctx)
	if err != nil {
		e.log.Error("failed to check out database connection", zap.Error(err))
		return failure(fmt.Sprintf("database error: %v", err))
	}
	defer conn.Close()

	statement := ensureLimit(sqlText)

	rows, err := conn.QueryContext(ctx, statement)
	if err != nil {
		e.log.Error("query execution failed", zap.Error(err))
		return failure(fmt.Sprintf("database error: %v", err))
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return failure(fmt.Sprintf("database error: %v", err))
	}

	data := make([]map[string]interface{}, 0)

	for rows.Next() {
		values := make([]interface{}, len(columns))
		scanTargets := make([]interface{}, len(columns))

		for i := range values {
			scanTargets[i] = &values[i]
		}

		if err := rows.Scan(scanTargets...); err != nil {
			return failure(fmt.Sprintf("database error: %v", err))
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}

		data = append(data, row)
	}

	if err := rows.Err(); err != nil {
		return failure(fmt.Sprintf("database error: %v", err))
	}

	return Result{
		Success:  true,
		Data:     data,
		RowCount: len(data),
		Columns:  columns,
	}
}

// Schema dumps the table layout of the connected database using SHOW TABLES
// and DESCRIBE, one section per table.
func (e *Executor) Schema(ctx context.Context) (string, error) {
	if e.db == nil {
		return "", errors.New(errors.ErrTypeDatabase, "no database connection available")
	}

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTypeDatabase, "failed to check out connection")
	}
	defer conn.Close()

	tables, err := listTables(ctx, conn)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	for _, table := range tables {
		sb.WriteString("Table: " + table + "\n")

		if err := describeTable(ctx, conn, table, &sb); err != nil {
			return "", err
		}

		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func listTables(ctx context.Context, conn *sql.Conn) ([]string, error) {
	rows, err := conn.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to list tables")
	}
	defer rows.Close()

	var tables []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to scan table name")
		}

		tables = append(tables, name)
	}

	return tables, rows.Err()
}

func describeTable(ctx context.Context, conn *sql.Conn, table string, sb *strings.Builder) error {
	rows, err := conn.QueryContext(ctx, "DESCRIBE "+table)
	if err != nil {
		return errors.Wrapf(err, errors.ErrTypeDatabase, "failed to describe table %s", table)
	}
	defer rows.Close()

	for rows.Next() {
		var field, colType, null, key string
		var defaultVal sql.NullString
		var extra string

		if err := rows.Scan(&field, &colType, &null, &key, &defaultVal, &extra); err != nil {
			return errors.Wrap(err, errors.ErrTypeDatabase, "failed to scan column description")
		}

		nullable := "NOT NULL"
		if null == "YES" {
			nullable = "NULL"
		}

		sb.WriteString(fmt.Sprintf("  - %s (%s) %s %s %s\n", field, colType, nullable, key, extra))
	}

	return rows.Err()
}

// ensureLimit appends the default row cap when the statement has no LIMIT
// clause, dropping a trailing semicolon first.
func ensureLimit(sqlText string) string {
	if strings.Contains(strings.ToUpper(sqlText), "LIMIT") {
		return sqlText
	}

	return fmt.Sprintf("%s LIMIT %d", strings.TrimRight(strings.TrimSpace(sqlText), ";"), defaultRowCap)
}

func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}

	return v
}

func failure(message string) Result {
	return Result{
		Success:  false,
		Data:     []map[string]interface{}{},
		RowCount: 0,
		Columns:  []string{},
		Error:    message,
	}
}
