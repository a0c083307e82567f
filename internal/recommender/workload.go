package recommender

import (
	"strings"

	"github.com/sadop/sadop/internal/features"
	"github.com/sadop/sadop/internal/schema"
)

// hotColumnHeat is the heat score assigned to columns likely to be filtered.
const hotColumnHeat = 0.8

// filterColumnHints are substrings marking columns that commonly appear in
// WHERE predicates. This is a coarse heuristic proxy: it does not parse the
// actual predicate columns from the SQL text.
var filterColumnHints = []string{"user_id", "account_id", "transaction_id", "email", "country"}

// EncodeWorkload maps a feature vector to a per-column heat vector over the
// fixed schema enumeration. Pure and deterministic; the result has exactly
// schema.NumColumns() entries in enumeration order.
func EncodeWorkload(fv features.FeatureVector) []float32 {
	workload := make([]float32, schema.NumColumns())

	if fv.HasWhere != 1 {
		return workload
	}

	for i, col := range schema.Columns() {
		for _, hint := range filterColumnHints {
			if strings.Contains(col, hint) {
				workload[i] = hotColumnHeat
				break
			}
		}
	}

	return workload
}
