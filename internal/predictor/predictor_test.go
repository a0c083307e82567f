package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sadop/sadop/internal/config"
	"github.com/sadop/sadop/internal/errors"
	"github.com/sadop/sadop/internal/features"
)

func TestNewWithMissingArtifactIsNotFatal(t *testing.T) {
	cfg := config.ModelsConfig{
		ClassifierPath: "testdata/does-not-exist.onnx",
		RuntimeLib:     "testdata/libonnxruntime.so",
	}

	// Unlike the index recommender, a missing classifier degrades to an
	// unavailable predictor instead of failing construction.
	p := New(cfg, zap.NewNop())
	require.NotNil(t, p)
	assert.False(t, p.Loaded())
}

func TestPredictWithoutModelReturnsModelError(t *testing.T) {
	p := New(config.ModelsConfig{
		ClassifierPath: "testdata/does-not-exist.onnx",
		RuntimeLib:     "testdata/libonnxruntime.so",
	}, zap.NewNop())

	_, err := p.Predict(features.Extract("SELECT * FROM user"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeModel))
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestCloseWithoutModel(t *testing.T) {
	p := New(config.ModelsConfig{
		ClassifierPath: "testdata/does-not-exist.onnx",
	}, zap.NewNop())

	assert.NoError(t, p.Close())
}

func TestDiagnosisFor(t *testing.T) {
	tests := []struct {
		name        string
		isSlow      bool
		probability float64
		expected    string
	}{
		{
			name:        "slow verdict reports slow confidence",
			isSlow:      true,
			probability: 0.873,
			expected:    "Query is likely slow (ML confidence: 87.3%)",
		},
		{
			name:        "fast verdict reports complementary confidence",
			isSlow:      false,
			probability: 0.2,
			expected:    "Query is likely fast (ML confidence: 80.0%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, diagnosisFor(tt.isSlow, tt.probability))
		})
	}
}

func TestRound3(t *testing.T) {
	assert.InDelta(t, 0.873, round3(0.87349), 1e-9)
	assert.InDelta(t, 0.874, round3(0.8735), 1e-9)
	assert.InDelta(t, 0.0, round3(0.0004), 1e-9)
	assert.InDelta(t, 1.0, round3(0.9999), 1e-9)
}
