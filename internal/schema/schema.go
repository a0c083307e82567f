// Package schema defines the fixed relational schema the assistant reasons
// about. The ordered list of qualified column names is process-wide constant
// state: it fixes the dimensionality of the workload vector and the action
// space of the index recommender, so the order must never change at runtime.
package schema

import "strings"

// Table describes one table and its columns in definition order.
type Table struct {
	Name    string
	Columns []string
}

// Tables enumerates the monitored schema. Definition order matters: qualified
// column positions are derived from it.
var Tables = []Table{
	{Name: "user", Columns: []string{"user_id", "full_name", "email", "country", "signup_date"}},
	{Name: "accounts", Columns: []string{"account_id", "user_id", "account_type", "balance", "created_at"}},
	{Name: "transactions", Columns: []string{"transaction_id", "account_id", "amount", "transaction_type", "transaction_date", "status"}},
	{Name: "logs", Columns: []string{"log_id", "user_id", "log_level", "created_at"}},
}

var qualified = buildQualified()

func buildQualified() []string {
	var cols []string
	for _, t := range Tables {
		for _, c := range t.Columns {
			cols = append(cols, t.Name+"."+c)
		}
	}

	return cols
}

// Columns returns the ordered list of qualified "table.column" names.
// Callers must not mutate the returned slice.
func Columns() []string {
	return qualified
}

// NumColumns returns the workload vector dimensionality.
func NumColumns() int {
	return len(qualified)
}

// Split splits a qualified "table.column" name into its parts.
func Split(column string) (table, name string) {
	parts := strings.SplitN(column, ".", 2)
	if len(parts) != 2 {
		return column, ""
	}

	return parts[0], parts[1]
}
