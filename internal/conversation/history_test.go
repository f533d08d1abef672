package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_AppendAndLen(t *testing.T) {
	h := NewHistory()
	assert.Equal(t, 0, h.Len())

	h.Append("q1", "a1")
	h.Append("q2", "a2")
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, Turn{Query: "q1", Answer: "a1"}, h.Turns()[0])
}

func TestHistory_TurnsIsSnapshot(t *testing.T) {
	h := NewHistory()
	h.Append("q1", "a1")

	snapshot := h.Turns()
	snapshot[0].Answer = "mutated"
	assert.Equal(t, "a1", h.Turns()[0].Answer)
}

func TestHistory_LastN(t *testing.T) {
	h := NewHistory()
	h.Append("q1", "a1")
	h.Append("q2", "a2")
	h.Append("q3", "a3")

	last2 := h.LastN(2)
	require.Len(t, last2, 2)
	assert.Equal(t, "q2", last2[0].Query)
	assert.Equal(t, "q3", last2[1].Query)

	assert.Len(t, h.LastN(10), 3)
	assert.Empty(t, h.LastN(0))
	assert.Empty(t, h.LastN(-1))
}

func TestHistory_Reset(t *testing.T) {
	h := NewHistory()
	h.Append("q1", "a1")
	h.Reset()
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Turns())
}

func TestHistory_SessionID(t *testing.T) {
	a := NewHistory()
	b := NewHistory()
	assert.NotEmpty(t, a.SessionID())
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}
