package rewrite

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"docqa/internal/conversation"
	"docqa/internal/llm"
	"docqa/internal/prompt"
)

// HistoryWindow is how many trailing turns inform a rewrite.
const HistoryWindow = 2

// TriggerPolicy decides whether a query depends on conversation context
// and needs rewriting into a standalone question.
type TriggerPolicy interface {
	NeedsRewrite(query string, turns []conversation.Turn) bool
}

const minStandaloneTokens = 5

var pronouns = map[string]struct{}{
	"it": {}, "they": {}, "them": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "he": {}, "she": {},
}

// HeuristicPolicy flags short queries and queries containing a referring
// pronoun as whole tokens. Approximate on purpose; swap the policy for
// anything stricter.
type HeuristicPolicy struct{}

func (HeuristicPolicy) NeedsRewrite(query string, turns []conversation.Turn) bool {
	if len(turns) == 0 {
		return false
	}
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) < minStandaloneTokens {
		return true
	}
	for _, token := range tokens {
		if _, ok := pronouns[token]; ok {
			return true
		}
	}
	return false
}

// Normalizer rewrites follow-up questions into standalone queries using
// the generator. It must never block or corrupt the answer pipeline: any
// generator failure, or the absence of one, returns the original query.
type Normalizer struct {
	gen    llm.Generator
	policy TriggerPolicy
}

func NewNormalizer(gen llm.Generator) *Normalizer {
	return &Normalizer{gen: gen, policy: HeuristicPolicy{}}
}

func NewNormalizerWithPolicy(gen llm.Generator, policy TriggerPolicy) *Normalizer {
	return &Normalizer{gen: gen, policy: policy}
}

// Normalize returns the standalone form of query given the conversation
// so far, or the query unchanged when no rewrite is needed or possible.
func (n *Normalizer) Normalize(ctx context.Context, query string, turns []conversation.Turn) string {
	if len(turns) == 0 || n.gen == nil {
		return query
	}
	if !n.policy.NeedsRewrite(query, turns) {
		return query
	}

	window := turns
	if len(window) > HistoryWindow {
		window = window[len(window)-HistoryWindow:]
	}
	rewritten, err := n.gen.Generate(ctx, prompt.BuildRewritePrompt(query, window))
	if err != nil {
		log.Warn().Err(err).Msg("query rewrite failed, using original query")
		return query
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return query
	}
	log.Debug().Str("original", query).Str("rewritten", rewritten).Msg("query rewritten")
	return rewritten
}
