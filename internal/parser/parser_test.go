package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractPages_Text(t *testing.T) {
	path := writeFile(t, "doc.txt", "plain text document contents")
	pages, err := ExtractPages(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Equal(t, "plain text document contents", pages[0].Text)
}

func TestExtractPages_WhitespaceOnlyTextDropped(t *testing.T) {
	path := writeFile(t, "doc.txt", "   \n\t\n  ")
	pages, err := ExtractPages(path)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestExtractPages_Markdown(t *testing.T) {
	path := writeFile(t, "doc.md", "# Quarterly Report\n\nRevenue was **$5M** this quarter.\n")
	pages, err := ExtractPages(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.Contains(t, pages[0].Text, "Quarterly Report")
	assert.Contains(t, pages[0].Text, "$5M")
	assert.NotContains(t, pages[0].Text, "#")
	assert.NotContains(t, pages[0].Text, "**")
}

func TestExtractPages_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "doc.exe", "binary")
	_, err := ExtractPages(path)
	assert.ErrorContains(t, err, "unsupported file format")
}

func TestExtractTextFromXML(t *testing.T) {
	xml := `<p:sp><a:t>Slide title</a:t></p:sp><p:sp><a:t>Body text</a:t></p:sp>`
	text := extractTextFromXML(xml)
	assert.Contains(t, text, "Slide title")
	assert.Contains(t, text, "Body text")
}
