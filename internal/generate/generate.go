// Package generate turns structured engine outputs into natural-language
// prose via the remote completion service. Every entry point degrades to a
// deterministic templated string on any remote failure; generation failures
// are never surfaced to the caller as errors.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sadop/sadop/internal/features"
	"github.com/sadop/sadop/internal/llm"
	"github.com/sadop/sadop/internal/predictor"
	"github.com/sadop/sadop/internal/recommender"
)

const (
	diagnoseTemperature = 0.3
	diagnoseMaxTokens   = 800

	explainTemperature = 0.3
	explainMaxTokens   = 300

	generateTemperature = 0.5
	generateMaxTokens   = 500

	answerTemperature = 0.4
	answerMaxTokens   = 400

	adviseTemperature = 0.3
	adviseMaxTokens   = 300
)

// noRecommendationsMessage is returned for an empty recommendation set
// without contacting the remote service.
const noRecommendationsMessage = "No specific index recommendations at this time."

// placeholderQuery is the fixed query returned by GenerateQuery. The remote
// completion result is currently disregarded on this path; real query
// generation has not shipped yet and the placeholder contract is part of the
// component's documented behavior.
const placeholderQuery = "SELECT * FROM user"

// GeneratedQuery is the output of the query-generation mode.
type GeneratedQuery struct {
	Query       string `json:"query"`
	Explanation string `json:"explanation"`
}

// Generator renders diagnoses, explanations, and answers.
type Generator struct {
	svc llm.Service
	log *zap.Logger
}

// New creates a generator over the given completion service.
func New(svc llm.Service, log *zap.Logger) *Generator {
	return &Generator{svc: svc, log: log}
}

// Diagnose turns a prediction and recommendation into a prose diagnosis for
// the analyzed query. Falls back to a templated string embedding the verdict
// and recommended indexes.
func (g *Generator) Diagnose(
	ctx context.Context,
	query string,
	pred predictor.Result,
	rec recommender.Recommendation,
	fv features.FeatureVector,
) string {
	prompt := fmt.Sprintf(
		"Diagnose this SQL query: %s. ML results: %s. RL recommendations: %s. Query features: %s.",
		query, mustJSON(pred), mustJSON(rec), mustJSON(fv))

	text, err := g.svc.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: diagnoseTemperature,
		MaxTokens:   diagnoseMaxTokens,
	})
	if err != nil {
		g.log.Debug("remote diagnosis failed, using templated fallback", zap.Error(err))
		return fallbackDiagnosis(pred, rec)
	}

	return text
}

// ExplainIndexes explains why the recommended indexes help. An empty
// recommendation returns the fixed no-recommendations message without a
// remote call.
func (g *Generator) ExplainIndexes(ctx context.Context, rec recommender.Recommendation) string {
	if len(rec.RecommendedIndexes) == 0 {
		return noRecommendationsMessage
	}

	indexes := strings.Join(rec.RecommendedIndexes, ", ")
	prompt := fmt.Sprintf(
		"Explain why these database indexes are recommended: %s. Keep it concise.", indexes)

	text, err := g.svc.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: explainTemperature,
		MaxTokens:   explainMaxTokens,
	})
	if err != nil {
		g.log.Debug("remote index explanation failed, using templated fallback", zap.Error(err))
		return fmt.Sprintf("Recommended indexes: %s.", indexes)
	}

	return text
}

// GenerateQuery produces one alternative SQL query for a free-text request.
// The remote call is issued but its result is disregarded: this mode always
// returns the fixed placeholder pair. Do not infer real generation behavior
// here; the placeholder contract is deliberate.
func (g *Generator) GenerateQuery(ctx context.Context, request string) GeneratedQuery {
	prompt := fmt.Sprintf("Generate ONE simple SQL query for: %s", request)

	_, err := g.svc.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: generateTemperature,
		MaxTokens:   generateMaxTokens,
	})
	if err != nil {
		g.log.Debug("remote query generation failed", zap.Error(err))

		return GeneratedQuery{
			Query:       placeholderQuery,
			Explanation: "Placeholder query (generation service unavailable)",
		}
	}

	return GeneratedQuery{
		Query:       placeholderQuery,
		Explanation: "Placeholder query pending query-generation rollout",
	}
}

// Answer responds to a general database question, optionally with prior
// structured context.
func (g *Generator) Answer(ctx context.Context, question, contextInfo string) string {
	if contextInfo == "" {
		contextInfo = "No specific query provided"
	}

	prompt := fmt.Sprintf(`You are SADOP - an expert database performance assistant with TWO TOOLS:

**TOOL 1: ML Diagnostic** - Predicts if query is slow/fast
**TOOL 2: RL Optimization** - Recommends optimal indexes

Available Context:
%s

User Question: %q

Instructions:
- If asking about slowness, mention diagnostic tools and index recommendations
- If asking for optimization, explain what Tool 1 found, then Tool 2 recommendations
- If general advice, provide database best practices
- Always be specific and actionable
- Mention "I can analyze specific queries if you provide SQL"

Respond professionally in 150 words max.`, contextInfo, question)

	text, err := g.svc.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are SADOP, a database performance expert with ML diagnostic and RL optimization tools."},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		g.log.Debug("remote answer failed, using templated fallback", zap.Error(err))
		return "I'm SADOP, your database assistant. I can diagnose SQL query performance and recommend indexes; provide a SQL query and I'll analyze it."
	}

	return text
}

// Advise responds to an index-optimization request with best practices.
func (g *Generator) Advise(ctx context.Context, request string) string {
	prompt := fmt.Sprintf(`You are a database optimization expert. User is asking for optimization help:
%q
Provide indexing best practices and common patterns.`, request)

	text, err := g.svc.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: adviseTemperature,
		MaxTokens:   adviseMaxTokens,
	})
	if err != nil {
		g.log.Debug("remote advice failed, using templated fallback", zap.Error(err))

		return "Database optimization tips: index columns used in WHERE and JOIN predicates, " +
			"keep indexes narrow, avoid indexing low-cardinality columns, and review slow-query logs regularly."
	}

	return text
}

// fallbackDiagnosis embeds the structured verdict and recommendations in a
// deterministic template.
func fallbackDiagnosis(pred predictor.Result, rec recommender.Recommendation) string {
	verdict := "FAST QUERY"
	if pred.IsSlow {
		verdict = "SLOW QUERY"
	}

	indexes := "none"
	if len(rec.RecommendedIndexes) > 0 {
		indexes = strings.Join(rec.RecommendedIndexes, ", ")
	}

	return fmt.Sprintf("Verdict: %s. %s Recommended indexes: %s.", verdict, pred.Diagnosis, indexes)
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(data)
}
