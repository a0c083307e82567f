package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sadop/sadop/internal/errors"
)

func TestValidateRejectsNonSelect(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"drop table", "DROP TABLE users"},
		{"update", "UPDATE users SET x=1"},
		{"insert", "INSERT INTO logs VALUES (1)"},
		{"delete", "delete from transactions"},
		{"explain", "EXPLAIN SELECT * FROM user"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.sql)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeQuerySafety))
		})
	}
}

func TestValidateRejectsForbiddenKeywords(t *testing.T) {
	// The check is a literal substring scan by design; it also rejects
	// legitimate SELECTs that merely mention a forbidden word.
	tests := []string{
		"SELECT * FROM user; DROP TABLE user",
		"SELECT * FROM user WHERE name = 'DELETE'",
		"SELECT created_at FROM logs",
	}

	for _, sqlText := range tests {
		err := Validate(sqlText)
		require.Errorf(t, err, "sql %q", sqlText)
		assert.True(t, errors.IsType(err, errors.ErrTypeQuerySafety))
	}
}

func TestValidateAcceptsPlainSelect(t *testing.T) {
	tests := []string{
		"SELECT * FROM user",
		"  select user_id, email from user where country = 'FR'  ",
		"SELECT SUM(amount) FROM transactions GROUP BY account_id",
	}

	for _, sqlText := range tests {
		assert.NoErrorf(t, Validate(sqlText), "sql %q", sqlText)
	}
}

func TestExecuteRejectsWithoutDatabaseContact(t *testing.T) {
	// A nil handle proves the database is never touched on the rejection
	// path: any contact would panic.
	e := New(nil, zap.NewNop())

	tests := []struct {
		sql           string
		errorContains string
	}{
		{"DROP TABLE users", "only SELECT queries are allowed"},
		{"UPDATE users SET x=1", "only SELECT queries are allowed"},
		{"SELECT * FROM user WHERE note = 'TRUNCATE'", "forbidden keyword: TRUNCATE"},
	}

	for _, tt := range tests {
		result := e.Execute(context.Background(), tt.sql)

		assert.False(t, result.Success)
		assert.Contains(t, result.Error, tt.errorContains)
		assert.Zero(t, result.RowCount)
		assert.Empty(t, result.Data)
		assert.Empty(t, result.Columns)
	}
}

func TestExecuteFailsWithoutConnection(t *testing.T) {
	e := New(nil, zap.NewNop())

	result := e.Execute(context.Background(), "SELECT * FROM user")

	assert.False(t, result.Success)
	assert.Equal(t, "failed to connect to database", result.Error)
}

func TestEnsureLimit(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected string
	}{
		{
			name:     "appends default cap",
			sql:      "SELECT * FROM logs",
			expected: "SELECT * FROM logs LIMIT 1000",
		},
		{
			name:     "keeps existing limit",
			sql:      "SELECT * FROM logs LIMIT 10",
			expected: "SELECT * FROM logs LIMIT 10",
		},
		{
			name:     "keeps lowercase limit",
			sql:      "select * from logs limit 5",
			expected: "select * from logs limit 5",
		},
		{
			name:     "strips trailing semicolon before appending",
			sql:      "SELECT * FROM logs;",
			expected: "SELECT * FROM logs LIMIT 1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ensureLimit(tt.sql))
		})
	}
}
