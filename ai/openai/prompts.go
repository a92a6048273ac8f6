package openai

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/netsight/ai"
	"github.com/tmc/langchaingo/prompts"
)

const summaryTemplate = `You are helping someone explore their own professional network.

They asked: {{.query}}

These contacts matched, best match first. "filter" means the contact satisfied the
structured filter; "similarity" is how closely the profile matches the question (0 to 1).

{{.candidates}}

Write a short overview (at most 5 sentences) of who these contacts are and which ones look
most relevant to the question. Mention people by name. Use only the facts listed above and
do not invent employers, titles or dates. Do not use bullet points.`

var summaryPrompt = prompts.NewPromptTemplate(summaryTemplate, []string{"query", "candidates"})

// formatCandidates renders candidates as a numbered list for the summary prompt.
func formatCandidates(candidates []ai.Candidate) string {
	var sb strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d. %s", i+1, c.Name)
		switch {
		case c.Position != "" && c.Company != "":
			fmt.Fprintf(&sb, ", %s at %s", c.Position, c.Company)
		case c.Company != "":
			fmt.Fprintf(&sb, ", works at %s", c.Company)
		case c.Position != "":
			fmt.Fprintf(&sb, ", %s", c.Position)
		}
		if !c.ConnectedOn.IsZero() {
			fmt.Fprintf(&sb, "; connected %s", c.ConnectedOn.Format(time.DateOnly))
		}
		if c.GraphMatch {
			sb.WriteString("; filter")
		}
		if c.SemanticScore != nil {
			fmt.Fprintf(&sb, "; similarity %.2f", *c.SemanticScore)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

const filterResponseSchema = `{
  "type": "object",
  "properties": {
    "company": {"type": "string"},
    "name": {"type": "string"},
    "connected_after": {"type": "string", "format": "date"},
    "connected_before": {"type": "string", "format": "date"}
  },
  "additionalProperties": false
}`

const filterPromptTemplate = `Extract structured search filters from a question about someone's professional contacts.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble or
explanation. Start your response directly with { and end with }.

%s

Rules:
- "company" is an employer named explicitly in the question. Never guess one from an industry or role.
- "name" is part of a person's name, only when the question asks about a specific person.
- "connected_after" and "connected_before" are dates in YYYY-MM-DD form, only when the question
  limits when the connection was made. Today is %s.
- Omit every field the question does not state. If nothing applies, return {}.

Example:
Input: "engineers at Acme I connected with since 2022"
Output: {"company":"Acme","connected_after":"2022-01-01"}

Example:
Input: "people working on machine learning"
Output: {}`

// buildFilterPrompt creates the filter extraction system prompt.
func buildFilterPrompt(today time.Time) string {
	return fmt.Sprintf(filterPromptTemplate, filterResponseSchema, today.Format(time.DateOnly))
}
