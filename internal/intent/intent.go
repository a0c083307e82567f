// Package intent classifies a user request into one of four fixed categories
// that drive request routing. The primary path asks the remote completion
// service for a JSON classification; any failure degrades to a deterministic
// keyword scan, never to an error.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sadop/sadop/internal/llm"
)

// Type is the classified purpose of a user request.
type Type string

const (
	TypeSQLQuery            Type = "sql_query"
	TypeQueryGeneration     Type = "query_generation"
	TypeOptimizationRequest Type = "optimization_request"
	TypeGeneralQuestion     Type = "general_question"
)

// Source tags which classification path produced the intent, so tests can
// assert on the path without callers having to distinguish the result.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Intent is the classification of one request. Produced once per request;
// not persisted.
type Intent struct {
	Type        Type   `json:"type"`
	Rationale   string `json:"intent"`
	RequiresSQL bool   `json:"requires_sql"`
	Source      Source `json:"-"`
}

const (
	classifyTemperature = 0.2
	classifyMaxTokens   = 100
)

const classificationPrompt = `You are a database assistant classifier. Analyze this user input and determine:

User Input: %q

Classification Rules:
1. If it contains SQL (SELECT, INSERT, UPDATE, DELETE, etc.) -> "sql_query"
2. If it asks "best query for...", "optimized query for...", "generate query for..." -> "query_generation"
3. If it asks "why slow?", "performance issues?", "optimize?" -> "general_question"
4. If it asks for index recommendations -> "optimization_request"

Respond ONLY with JSON:
{
    "type": "sql_query" | "query_generation" | "general_question" | "optimization_request",
    "intent": "brief description",
    "requires_sql": true/false
}`

// sqlKeywords trigger the sql_query fallback when present case-insensitively.
var sqlKeywords = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER"}

// generationPhrases trigger the query_generation fallback.
var generationPhrases = []string{
	"best query", "optimized query", "generate query", "create query", "best sql", "optimized sql",
}

// Classifier categorizes requests via the remote completion service with a
// deterministic fallback.
type Classifier struct {
	svc llm.Service
	log *zap.Logger
}

// NewClassifier creates a classifier over the given completion service.
func NewClassifier(svc llm.Service, log *zap.Logger) *Classifier {
	return &Classifier{svc: svc, log: log}
}

// Classify determines the intent of a request. One outbound call per attempt,
// no retries; every failure path lands in the keyword fallback.
func (c *Classifier) Classify(ctx context.Context, text string) Intent {
	raw, err := c.svc.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: formatClassificationPrompt(text)},
		},
		Temperature: classifyTemperature,
		MaxTokens:   classifyMaxTokens,
	})
	if err != nil {
		c.log.Debug("remote classification failed, using keyword fallback", zap.Error(err))
		return ClassifyFallback(text)
	}

	var parsed Intent
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		c.log.Debug("unparseable classification response, using keyword fallback", zap.Error(err))
		return ClassifyFallback(text)
	}

	if !validType(parsed.Type) {
		c.log.Debug("unknown intent type from remote classifier, using keyword fallback",
			zap.String("type", string(parsed.Type)))
		return ClassifyFallback(text)
	}

	parsed.Source = SourceRemote

	return parsed
}

// ClassifyFallback is the deterministic keyword scan used when the remote
// service is unavailable or returns garbage. It never produces
// optimization_request; that category is only reachable through the remote
// path.
func ClassifyFallback(text string) Intent {
	lower := strings.ToLower(text)

	for _, kw := range sqlKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return Intent{
				Type:      TypeSQLQuery,
				Rationale: "SQL query",
				Source:    SourceFallback,
			}
		}
	}

	for _, phrase := range generationPhrases {
		if strings.Contains(lower, phrase) {
			return Intent{
				Type:      TypeQueryGeneration,
				Rationale: "Generate optimized query",
				Source:    SourceFallback,
			}
		}
	}

	return Intent{
		Type:      TypeGeneralQuestion,
		Rationale: "General database question",
		Source:    SourceFallback,
	}
}

func formatClassificationPrompt(text string) string {
	return fmt.Sprintf(classificationPrompt, text)
}

func validType(t Type) bool {
	switch t {
	case TypeSQLQuery, TypeQueryGeneration, TypeOptimizationRequest, TypeGeneralQuestion:
		return true
	default:
		return false
	}
}
