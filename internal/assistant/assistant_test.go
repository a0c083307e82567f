package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sadop/sadop/internal/errors"
	"github.com/sadop/sadop/internal/features"
	"github.com/sadop/sadop/internal/generate"
	"github.com/sadop/sadop/internal/intent"
	"github.com/sadop/sadop/internal/predictor"
	"github.com/sadop/sadop/internal/recommender"
)

type mockClassifier struct {
	result intent.Intent
}

func (m *mockClassifier) Classify(_ context.Context, _ string) intent.Intent {
	return m.result
}

type mockPredictor struct {
	result predictor.Result
	err    error
	calls  int
}

func (m *mockPredictor) Predict(_ features.FeatureVector) (predictor.Result, error) {
	m.calls++
	return m.result, m.err
}

type mockRecommender struct {
	result recommender.Recommendation
	calls  int
	lastFV features.FeatureVector
}

func (m *mockRecommender) Recommend(fv features.FeatureVector) recommender.Recommendation {
	m.calls++
	m.lastFV = fv

	return m.result
}

type mockGenerator struct {
	diagnosis     string
	generated     generate.GeneratedQuery
	answer        string
	advice        string
	diagnoseCalls int
	generateCalls int
	answerCalls   int
	adviseCalls   int
}

func (m *mockGenerator) Diagnose(_ context.Context, _ string, _ predictor.Result,
	_ recommender.Recommendation, _ features.FeatureVector,
) string {
	m.diagnoseCalls++
	return m.diagnosis
}

func (m *mockGenerator) GenerateQuery(_ context.Context, _ string) generate.GeneratedQuery {
	m.generateCalls++
	return m.generated
}

func (m *mockGenerator) Answer(_ context.Context, _, _ string) string {
	m.answerCalls++
	return m.answer
}

func (m *mockGenerator) Advise(_ context.Context, _ string) string {
	m.adviseCalls++
	return m.advice
}

func newTestAssistant(
	classified intent.Intent,
	pred *mockPredictor,
	rec *mockRecommender,
	gen *mockGenerator,
) *Assistant {
	return New(&mockClassifier{result: classified}, pred, rec, gen, zap.NewNop())
}

func TestHandleSQLQuery(t *testing.T) {
	pred := &mockPredictor{result: predictor.Result{IsSlow: true, SlowProbability: 0.9}}
	rec := &mockRecommender{result: recommender.Recommendation{
		RecommendedIndexes: []string{"user.email"},
		SQLStatements:      []string{"CREATE INDEX idx_user_email ON user(email);"},
		TotalIndexes:       1,
	}}
	gen := &mockGenerator{diagnosis: "full scan on user"}

	a := newTestAssistant(intent.Intent{Type: intent.TypeSQLQuery}, pred, rec, gen)

	resp, err := a.Handle(context.Background(), "SELECT * FROM user WHERE email = 'a@b.c'")
	require.NoError(t, err)

	assert.Equal(t, intent.TypeSQLQuery, resp.Type)
	assert.Equal(t, "full scan on user", resp.Diagnosis)
	require.NotNil(t, resp.MLResult)
	assert.True(t, resp.MLResult.IsSlow)
	require.NotNil(t, resp.RLResult)
	assert.Equal(t, 1, resp.RLResult.TotalIndexes)

	assert.Equal(t, 1, pred.calls)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, 1, gen.diagnoseCalls)
	assert.Zero(t, gen.generateCalls)
}

func TestHandleSQLQueryPropagatesModelError(t *testing.T) {
	pred := &mockPredictor{err: errors.New(errors.ErrTypeModel, "performance model not loaded")}
	rec := &mockRecommender{}
	gen := &mockGenerator{}

	a := newTestAssistant(intent.Intent{Type: intent.TypeSQLQuery}, pred, rec, gen)

	resp, err := a.Handle(context.Background(), "SELECT * FROM user")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.IsType(err, errors.ErrTypeModel))
	assert.Zero(t, gen.diagnoseCalls)
}

func TestHandleQueryGeneration(t *testing.T) {
	pred := &mockPredictor{}
	rec := &mockRecommender{result: recommender.Recommendation{TotalIndexes: 0}}
	gen := &mockGenerator{generated: generate.GeneratedQuery{
		Query:       "SELECT * FROM user",
		Explanation: "placeholder",
	}}

	a := newTestAssistant(intent.Intent{Type: intent.TypeQueryGeneration}, pred, rec, gen)

	resp, err := a.Handle(context.Background(), "best query for active users")
	require.NoError(t, err)

	assert.Equal(t, intent.TypeQueryGeneration, resp.Type)
	assert.Equal(t, "SELECT * FROM user", resp.GeneratedQuery)
	assert.Equal(t, "placeholder", resp.Explanation)
	require.NotNil(t, resp.RLResult)

	// Features are extracted from the generated query, not the request.
	assert.Equal(t, features.Extract("SELECT * FROM user"), rec.lastFV)

	// The performance predictor is not part of this path.
	assert.Zero(t, pred.calls)
	assert.Equal(t, 1, gen.generateCalls)
	assert.Equal(t, 1, rec.calls)
}

func TestHandleOptimizationRequest(t *testing.T) {
	gen := &mockGenerator{advice: "index your WHERE columns"}

	a := newTestAssistant(intent.Intent{Type: intent.TypeOptimizationRequest},
		&mockPredictor{}, &mockRecommender{}, gen)

	resp, err := a.Handle(context.Background(), "how should I index this?")
	require.NoError(t, err)

	assert.Equal(t, intent.TypeOptimizationRequest, resp.Type)
	assert.Equal(t, "index your WHERE columns", resp.Response)
	assert.Equal(t, 1, gen.adviseCalls)
}

func TestHandleGeneralQuestion(t *testing.T) {
	gen := &mockGenerator{answer: "databases are fine"}

	a := newTestAssistant(intent.Intent{Type: intent.TypeGeneralQuestion},
		&mockPredictor{}, &mockRecommender{}, gen)

	resp, err := a.Handle(context.Background(), "are databases fine?")
	require.NoError(t, err)

	assert.Equal(t, intent.TypeGeneralQuestion, resp.Type)
	assert.Equal(t, "databases are fine", resp.Response)
	assert.Equal(t, 1, gen.answerCalls)
}

func TestHandleUnknownIntent(t *testing.T) {
	a := newTestAssistant(intent.Intent{Type: intent.Type("mystery")},
		&mockPredictor{}, &mockRecommender{}, &mockGenerator{})

	resp, err := a.Handle(context.Background(), "???")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.IsType(err, errors.ErrTypeInternal))
}
