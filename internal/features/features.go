// Package features derives a fixed-size numeric feature vector from raw SQL
// text. Extraction is a pure lexical scan: no parsing, no I/O, never fails.
package features

import "strings"

// NumFeatures is the length of the model input vector.
const NumFeatures = 10

// FieldNames lists the feature fields in the exact order the frozen
// performance classifier was trained on. Changing the order or count
// requires re-deriving the model artifact.
var FieldNames = []string{
	"tables_count", "query_length", "has_sum", "has_group_by", "has_where",
	"estimated_rows", "uses_index", "full_table_scan", "uses_filesort", "uses_temp_table",
}

// FeatureVector is the lexical summary of one SQL statement. Immutable once
// produced; created fresh per request.
type FeatureVector struct {
	TablesCount   int `json:"tables_count"`
	QueryLength   int `json:"query_length"`
	HasSum        int `json:"has_sum"`
	HasGroupBy    int `json:"has_group_by"`
	HasWhere      int `json:"has_where"`
	EstimatedRows int `json:"estimated_rows"`
	UsesIndex     int `json:"uses_index"`
	FullTableScan int `json:"full_table_scan"`
	UsesFilesort  int `json:"uses_filesort"`
	UsesTempTable int `json:"uses_temp_table"`
}

// Extract computes the feature vector for a SQL statement. The scan is
// case-insensitive. EstimatedRows and UsesIndex are fixed placeholders
// (1000 and 0) pending a real cost estimator; the frozen classifier was
// trained with these exact values, so they must not be "improved" without
// re-deriving the model.
func Extract(sqlText string) FeatureVector {
	upper := strings.ToUpper(sqlText)

	return FeatureVector{
		TablesCount:   1 + strings.Count(upper, " JOIN ") + strings.Count(upper, ","),
		QueryLength:   len(sqlText),
		HasSum:        boolFlag(strings.Contains(upper, "SUM(")),
		HasGroupBy:    boolFlag(strings.Contains(upper, "GROUP BY")),
		HasWhere:      boolFlag(strings.Contains(upper, "WHERE")),
		EstimatedRows: 1000,
		UsesIndex:     0,
		FullTableScan: boolFlag(!strings.Contains(upper, "WHERE")),
		UsesFilesort:  boolFlag(strings.Contains(upper, "ORDER BY")),
		UsesTempTable: boolFlag(strings.Contains(upper, "GROUP BY")),
	}
}

// Vector projects the features to a []float32 in training field order, ready
// to feed the frozen classifier.
func (v FeatureVector) Vector() []float32 {
	return []float32{
		float32(v.TablesCount),
		float32(v.QueryLength),
		float32(v.HasSum),
		float32(v.HasGroupBy),
		float32(v.HasWhere),
		float32(v.EstimatedRows),
		float32(v.UsesIndex),
		float32(v.FullTableScan),
		float32(v.UsesFilesort),
		float32(v.UsesTempTable),
	}
}

func boolFlag(b bool) int {
	if b {
		return 1
	}

	return 0
}
