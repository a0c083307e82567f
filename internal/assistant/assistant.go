// Package assistant is the routing state machine composing the inference
// engines per incoming request. States are the four intents; transitions are
// one-shot per request with no state carried across requests.
package assistant

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sadop/sadop/internal/errors"
	"github.com/sadop/sadop/internal/features"
	"github.com/sadop/sadop/internal/generate"
	"github.com/sadop/sadop/internal/intent"
	"github.com/sadop/sadop/internal/predictor"
	"github.com/sadop/sadop/internal/recommender"
)

// Classifier determines the intent of a request.
type Classifier interface {
	Classify(ctx context.Context, text string) intent.Intent
}

// Predictor maps a feature vector to a slow/fast verdict.
type Predictor interface {
	Predict(fv features.FeatureVector) (predictor.Result, error)
}

// Recommender emits candidate indexes for a feature vector.
type Recommender interface {
	Recommend(fv features.FeatureVector) recommender.Recommendation
}

// Generator renders natural-language output for each routing branch.
type Generator interface {
	Diagnose(ctx context.Context, query string, pred predictor.Result,
		rec recommender.Recommendation, fv features.FeatureVector) string
	GenerateQuery(ctx context.Context, request string) generate.GeneratedQuery
	Answer(ctx context.Context, question, contextInfo string) string
	Advise(ctx context.Context, request string) string
}

// Response is the composed terminal state of one request. The populated
// fields vary by intent type.
type Response struct {
	Type           intent.Type                 `json:"type"`
	Diagnosis      string                      `json:"diagnosis,omitempty"`
	MLResult       *predictor.Result           `json:"ml_result,omitempty"`
	RLResult       *recommender.Recommendation `json:"rl_result,omitempty"`
	GeneratedQuery string                      `json:"generated_query,omitempty"`
	Explanation    string                      `json:"explanation,omitempty"`
	Response       string                      `json:"response,omitempty"`
}

// Assistant routes requests through the engines.
type Assistant struct {
	classifier  Classifier
	predictor   Predictor
	recommender Recommender
	generator   Generator
	log         *zap.Logger
}

// New creates an assistant over the given engines.
func New(
	classifier Classifier,
	pred Predictor,
	rec Recommender,
	gen Generator,
	log *zap.Logger,
) *Assistant {
	return &Assistant{
		classifier:  classifier,
		predictor:   pred,
		recommender: rec,
		generator:   gen,
		log:         log,
	}
}

// Handle classifies the message and routes it to the matching branch.
func (a *Assistant) Handle(ctx context.Context, message string) (*Response, error) {
	classification := a.classifier.Classify(ctx, message)

	a.log.Info("request classified",
		zap.String("type", string(classification.Type)),
		zap.String("source", string(classification.Source)))

	switch classification.Type {
	case intent.TypeSQLQuery:
		return a.handleSQLQuery(ctx, message)
	case intent.TypeQueryGeneration:
		return a.handleQueryGeneration(ctx, message)
	case intent.TypeOptimizationRequest:
		return &Response{
			Type:     intent.TypeOptimizationRequest,
			Response: a.generator.Advise(ctx, message),
		}, nil
	case intent.TypeGeneralQuestion:
		return &Response{
			Type:     intent.TypeGeneralQuestion,
			Response: a.generator.Answer(ctx, message, ""),
		}, nil
	default:
		return nil, errors.Newf(errors.ErrTypeInternal,
			"unhandled intent type: %s", classification.Type)
	}
}

// handleSQLQuery analyzes a supplied SQL statement. The predictor and
// recommender have no data dependency on each other and run concurrently;
// both results feed the diagnosis.
func (a *Assistant) handleSQLQuery(ctx context.Context, query string) (*Response, error) {
	fv := features.Extract(query)

	var (
		mlResult predictor.Result
		rlResult recommender.Recommendation
	)

	var g errgroup.Group

	g.Go(func() error {
		var err error

		mlResult, err = a.predictor.Predict(fv)

		return err
	})

	g.Go(func() error {
		rlResult = a.recommender.Recommend(fv)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	diagnosis := a.generator.Diagnose(ctx, query, mlResult, rlResult, fv)

	return &Response{
		Type:      intent.TypeSQLQuery,
		Diagnosis: diagnosis,
		MLResult:  &mlResult,
		RLResult:  &rlResult,
	}, nil
}

// handleQueryGeneration produces a query, then analyzes the generated query
// for index opportunities. The performance predictor is not invoked on this
// path.
func (a *Assistant) handleQueryGeneration(ctx context.Context, request string) (*Response, error) {
	gen := a.generator.GenerateQuery(ctx, request)

	fv := features.Extract(gen.Query)
	rlResult := a.recommender.Recommend(fv)

	return &Response{
		Type:           intent.TypeQueryGeneration,
		GeneratedQuery: gen.Query,
		Explanation:    gen.Explanation,
		RLResult:       &rlResult,
	}, nil
}
