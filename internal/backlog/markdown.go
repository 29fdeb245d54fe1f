// Package backlog renders tickets as development backlog issues.
package backlog

import (
	"strings"
	"text/template"

	"github.com/spec-kit/ops-desk/internal/domain"
)

var issueTemplate = template.Must(template.New("issue").Parse(`# {{.Number}} - {{.Category}}

| Platform: {{or .Platform "N/A"}} |

## Description
{{.Description}}

## Acceptance Criteria
- [ ] Issue is reproducible on {{or .Platform "all platforms"}}
- [ ] Root cause identified
- [ ] Fix implemented and tested
- [ ] No regression in related features
- [ ] Documentation updated if needed

## Notes
_Add additional context here_
`))

type issue struct {
	Number      string
	Category    string
	Platform    string
	Description string
}

// Markdown renders ticket as a backlog issue. platform overrides the ticket's own
// platform when set; extra is appended to the description after a blank line.
func Markdown(ticket *domain.Ticket, platform *domain.Platform, extra string) string {
	data := issue{
		Number:   ticket.Number,
		Category: string(ticket.Category),
	}
	switch {
	case platform != nil:
		data.Platform = string(*platform)
	case ticket.Platform != nil:
		data.Platform = string(*ticket.Platform)
	}
	if ticket.Description != nil {
		data.Description = *ticket.Description
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		data.Description += "\n\n" + extra
	}

	var b strings.Builder
	// The template only reads string fields, so execution cannot fail.
	_ = issueTemplate.Execute(&b, data)
	return b.String()
}
