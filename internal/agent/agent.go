package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"docqa/internal/conversation"
	"docqa/internal/index"
	"docqa/internal/llm"
	"docqa/internal/prompt"
	"docqa/internal/retriever"
	"docqa/internal/rewrite"
)

// Mode is the agent's operating mode, fixed at construction. A generator
// error during a call degrades that single answer to the fallback
// rendering without changing the mode.
type Mode int

const (
	// ModeGenerate produces grounded answers through the generator.
	ModeGenerate Mode = iota
	// ModeFallback lists retrieved passages verbatim; no generator calls.
	ModeFallback
)

func (m Mode) String() string {
	if m == ModeFallback {
		return "fallback"
	}
	return "generate"
}

const (
	fallbackEmptyNotice  = "[FALLBACK MODE] No relevant content found in the document."
	fallbackHint         = "Note: generation backend unavailable; configure a generator model to get grounded answers instead of raw passages."
	fallbackSnippetLimit = 500
)

// Agent answers questions about one document: normalize the query,
// retrieve, then either ground an answer through the generator or render
// the retrieved passages deterministically.
type Agent struct {
	retriever  *retriever.Retriever
	gen        llm.Generator
	normalizer *rewrite.Normalizer
	history    *conversation.History
	topK       int
	mode       Mode
	debug      bool
}

// New wires an agent. A nil generator puts it permanently in fallback
// mode; construction-time generator failures should be mapped to nil by
// the caller.
func New(ret *retriever.Retriever, gen llm.Generator, topK int, debug bool) *Agent {
	mode := ModeGenerate
	if gen == nil {
		mode = ModeFallback
		log.Info().Msg("no generator configured, running in fallback mode (retrieval only)")
	}
	return &Agent{
		retriever:  ret,
		gen:        gen,
		normalizer: rewrite.NewNormalizer(gen),
		history:    conversation.NewHistory(),
		topK:       topK,
		mode:       mode,
		debug:      debug,
	}
}

func (a *Agent) Mode() Mode { return a.mode }

func (a *Agent) History() *conversation.History { return a.history }

// AnswerQuery runs one full query-answer cycle. Generator failures never
// surface as errors; only retrieval failures do (index not built, store
// unreachable). Every completed cycle appends the original query and the
// answer to history, whichever path produced the answer.
func (a *Agent) AnswerQuery(ctx context.Context, userQuery string) (string, error) {
	standalone := a.normalizer.Normalize(ctx, userQuery, a.history.Turns())

	results, err := a.retriever.Retrieve(ctx, standalone, a.topK)
	if err != nil {
		return "", err
	}
	if a.debug {
		retriever.LogResults(standalone, results)
	}

	var answer string
	if a.mode == ModeFallback {
		answer = FallbackResponse(results)
	} else {
		// The prompt carries the original query; the rewrite only steers retrieval.
		grounded := prompt.SystemInstruction + "\n\n" +
			prompt.BuildGroundedPrompt(userQuery, results, a.history.LastN(prompt.GroundingHistoryWindow))
		answer, err = a.gen.Generate(ctx, grounded)
		if err != nil {
			log.Warn().Err(err).Msg("generator call failed, degrading this answer to fallback")
			answer = FallbackResponse(results)
		}
	}

	a.history.Append(userQuery, answer)
	return answer, nil
}

// FallbackResponse renders retrieved passages without any generator
// involvement. Deterministic and always succeeds.
func FallbackResponse(results []index.Result) string {
	if len(results) == 0 {
		return fallbackEmptyNotice
	}

	var b strings.Builder
	b.WriteString("[FALLBACK MODE - Retrieval Only]\n\n")
	fmt.Fprintf(&b, "Found %d relevant passages:\n\n", len(results))
	for i, res := range results {
		fmt.Fprintf(&b, "--- Passage %d (Page %d, Similarity: %.3f) ---\n", i+1, res.Chunk.PageNumber, res.Score)
		// truncation counts runes so multibyte text stays valid
		if runes := []rune(res.Chunk.Text); len(runes) > fallbackSnippetLimit {
			b.WriteString(string(runes[:fallbackSnippetLimit]))
			b.WriteString("...\n")
		} else {
			b.WriteString(res.Chunk.Text)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(fallbackHint)
	return b.String()
}
