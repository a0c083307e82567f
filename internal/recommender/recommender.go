// Package recommender wraps the frozen index-recommendation policy. It
// encodes a feature vector into a per-column workload and emits ranked
// candidate indexes with ready-to-run DDL.
package recommender

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sadop/sadop/internal/config"
	"github.com/sadop/sadop/internal/errors"
	"github.com/sadop/sadop/internal/features"
	"github.com/sadop/sadop/internal/onnx"
	"github.com/sadop/sadop/internal/schema"
)

const (
	// heatThreshold is the minimum workload score for a column to be
	// considered a candidate.
	heatThreshold = 0.5

	// maxRecommendations caps the number of recommended indexes per request.
	maxRecommendations = 3
)

// Recommendation is the ordered set of recommended indexes for one request.
type Recommendation struct {
	RecommendedIndexes []string `json:"recommended_indexes"`
	SQLStatements      []string `json:"sql_statements"`
	TotalIndexes       int      `json:"total_indexes"`
}

// Recommender serves the frozen index policy. The artifact is mandatory: a
// missing policy file is a construction error, in contrast to the
// performance predictor's graceful-unavailable stance. The handle is built
// once at startup and injected into request handlers; it is immutable after
// construction.
type Recommender struct {
	policy *onnx.Session
	log    *zap.Logger
}

// New loads the policy artifact and fails fast when it is absent.
func New(cfg config.ModelsConfig, log *zap.Logger) (*Recommender, error) {
	policy, err := onnx.Load(cfg.PolicyPath, cfg.RuntimeLib)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeModel,
			"index policy not found at %s", cfg.PolicyPath)
	}

	log.Info("index policy loaded", zap.String("path", cfg.PolicyPath))

	return &Recommender{policy: policy, log: log}, nil
}

// Recommend encodes the workload and selects candidate indexes. Selection is
// the deterministic heuristic over the workload vector: the loaded policy
// session is retained for the planned policy rollout but is not consulted on
// this path yet.
func (r *Recommender) Recommend(fv features.FeatureVector) Recommendation {
	workload := EncodeWorkload(fv)
	columns := SelectColumns(workload)

	statements := make([]string, 0, len(columns))
	for _, col := range columns {
		statements = append(statements, IndexStatement(col))
	}

	return Recommendation{
		RecommendedIndexes: columns,
		SQLStatements:      statements,
		TotalIndexes:       len(columns),
	}
}

// SelectColumns picks all schema columns with heat strictly above the
// threshold and takes the first maxRecommendations in enumeration order.
// Ties and ordering follow schema-definition order, not score order; the
// selection is a fixed-size prefix of the positive-score subset.
func SelectColumns(workload []float32) []string {
	var selected []string

	for i, col := range schema.Columns() {
		if i >= len(workload) {
			break
		}

		if workload[i] > heatThreshold {
			selected = append(selected, col)
			if len(selected) == maxRecommendations {
				break
			}
		}
	}

	return selected
}

// IndexStatement synthesizes the CREATE INDEX DDL for a qualified column.
func IndexStatement(column string) string {
	table, name := schema.Split(column)
	return fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s(%s);", table, name, table, name)
}

// Close releases the policy session.
func (r *Recommender) Close() error {
	return r.policy.Close()
}
