package prompt

import (
	"fmt"
	"strings"

	"docqa/internal/conversation"
	"docqa/internal/index"
)

// GroundingHistoryWindow is how many trailing conversation turns are
// included in the grounded prompt.
const GroundingHistoryWindow = 3

// NotFoundResponse is the exact literal the generator must emit when the
// document does not support an answer.
const NotFoundResponse = "Not found in the document."

// SystemInstruction is the fixed grounding contract sent ahead of every
// generation prompt.
const SystemInstruction = `You are a STRICTLY GROUNDED document assistant. You MUST answer ONLY from the retrieved document chunks provided below.

ABSOLUTE RULES (NO EXCEPTIONS):
1. Answer ONLY using information EXPLICITLY present in the retrieved chunks
2. NEVER use your general knowledge, training data, or outside information
3. Do NOT infer, estimate, calculate, or assume ANY information
4. If the answer is NOT explicitly in the chunks, respond EXACTLY: "Not found in the document."
5. For numeric questions: Quote EXACT numbers as written in the document
6. NEVER approximate, round, or calculate numbers
7. Every factual statement MUST have a citation

MANDATORY RESPONSE FORMAT:

Answer:
<short, direct answer using only document text>

Citations:
[pX:cY], [pA:cB]

Evidence:
[pX:cY] "<exact quote from chunk>"
[pA:cB] "<exact quote from chunk>"

If information is missing, ambiguous, or requires inference:
Respond EXACTLY: "Not found in the document."

Do NOT deviate from this format or these rules under ANY circumstances.`

// BuildGroundedPrompt renders the retrieved chunks with their citations,
// the bounded conversation history and the current (original, unrewritten)
// question into a single generation prompt. Prepend SystemInstruction when
// submitting.
func BuildGroundedPrompt(query string, results []index.Result, turns []conversation.Turn) string {
	contextParts := make([]string, 0, len(results))
	for i, res := range results {
		contextParts = append(contextParts, fmt.Sprintf(
			"[CHUNK %d] %s\nPage %d\nText: %s\n",
			i+1, res.Chunk.Citation(), res.Chunk.PageNumber, res.Chunk.Text,
		))
	}
	context := strings.Join(contextParts, "\n---\n")

	var history string
	if len(turns) > 0 {
		historyParts := make([]string, 0, len(turns)*2)
		for _, turn := range turns {
			historyParts = append(historyParts, "User: "+turn.Query)
			historyParts = append(historyParts, "Assistant: "+turn.Answer)
		}
		history = "\n\nPREVIOUS CONVERSATION:\n" + strings.Join(historyParts, "\n")
	}

	return fmt.Sprintf(`RETRIEVED DOCUMENT CHUNKS:
%s

%s

CURRENT USER QUESTION:
%s

INSTRUCTIONS:
Answer the question using ONLY the information in the retrieved chunks above.

If the answer is not explicitly in the chunks, respond with EXACTLY:
"Not found in the document."

If you can answer:
1. Provide a clear, concise answer
2. Include citations using [p<page>:c<chunk_id>] format
3. Include an "Evidence" section with relevant quotes

Your response:`, context, history, query)
}

// BuildRewritePrompt asks the generator to turn a follow-up question into
// a standalone one, using the recent turns for referenced entities and
// nothing else.
func BuildRewritePrompt(query string, turns []conversation.Turn) string {
	historyParts := make([]string, 0, len(turns)*2)
	for _, turn := range turns {
		historyParts = append(historyParts, "User: "+turn.Query)
		historyParts = append(historyParts, "Assistant: "+turn.Answer)
	}

	return fmt.Sprintf(`Given the conversation history below, rewrite the follow-up question to be a standalone question that captures the full context.

CONVERSATION HISTORY:
%s

FOLLOW-UP QUESTION:
%s

INSTRUCTIONS:
- If the question refers to previous context (e.g., "it", "they", "that company"), incorporate that context
- If the question is already standalone, return it as-is
- Keep it concise and clear
- ONLY rewrite for clarity - do NOT add facts or assumptions

STANDALONE QUESTION:`, strings.Join(historyParts, "\n"), query)
}
