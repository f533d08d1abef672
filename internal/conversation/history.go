package conversation

import "github.com/google/uuid"

// Turn is one completed query-answer exchange. Turns are appended in order
// and never mutated or reordered.
type Turn struct {
	Query  string
	Answer string
}

// History is the append-only conversation log. Consumers read bounded
// windows through LastN; the full log stays available for inspection.
type History struct {
	sessionID string
	turns     []Turn
}

func NewHistory() *History {
	return &History{sessionID: uuid.NewString()}
}

func (h *History) SessionID() string { return h.sessionID }

func (h *History) Append(query, answer string) {
	h.turns = append(h.turns, Turn{Query: query, Answer: answer})
}

func (h *History) Len() int { return len(h.turns) }

// Turns returns a snapshot, never the live slice.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// LastN returns a snapshot of up to the n most recent turns.
func (h *History) LastN(n int) []Turn {
	if n <= 0 {
		return nil
	}
	start := len(h.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(h.turns)-start)
	copy(out, h.turns[start:])
	return out
}

func (h *History) Reset() {
	h.turns = nil
}
