package prompt

import (
	"regexp"
	"strconv"
	"strings"
)

// Citation addresses one source chunk referenced by a response.
type Citation struct {
	Page    int
	ChunkID int
}

var citationRe = regexp.MustCompile(`\[p(\d+):c(\d+)\]`)

// refusal phrases checked case-insensitively anywhere in the response
var refusalPhrases = []string{
	"not found in the document",
	"not mentioned in the document",
	"does not contain",
	"information is not available",
}

// FormatReport classifies a generated response against the response
// contract.
type FormatReport struct {
	HasAnswerSection    bool
	HasCitationsSection bool
	HasEvidenceSection  bool
	IsRefusal           bool
	WellFormed          bool
}

// Classify checks the response for the required structural sections and
// refusal phrasing. A response is well-formed when it refuses, or when all
// three sections are present.
func Classify(response string) FormatReport {
	report := FormatReport{
		HasAnswerSection:    strings.Contains(response, "Answer:"),
		HasCitationsSection: strings.Contains(response, "Citations:"),
		HasEvidenceSection:  strings.Contains(response, "Evidence:"),
		IsRefusal:           IsRefusal(response),
	}
	report.WellFormed = report.IsRefusal ||
		(report.HasAnswerSection && report.HasCitationsSection && report.HasEvidenceSection)
	return report
}

// IsRefusal reports whether the response declines to answer from the
// document.
func IsRefusal(response string) bool {
	lower := strings.ToLower(strings.TrimSpace(response))
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// ExtractCitations scans the response for citation tokens, in order of
// appearance, duplicates preserved.
func ExtractCitations(response string) []Citation {
	matches := citationRe.FindAllStringSubmatch(response, -1)
	citations := make([]Citation, 0, len(matches))
	for _, m := range matches {
		page, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		chunkID, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		citations = append(citations, Citation{Page: page, ChunkID: chunkID})
	}
	return citations
}
