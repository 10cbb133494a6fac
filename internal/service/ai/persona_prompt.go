package ai

import (
	"fmt"
	"strings"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/persona"
)

// BuildPreamble creates the fixed system prompt that scopes the assistant to
// the portfolio subject.
func BuildPreamble(p persona.Persona) string {
	name := p.DisplayName()

	lines := []string{
		fmt.Sprintf("You are an AI assistant for %s, a %s.", p.Name, p.Title),
	}
	if p.Education != "" {
		lines = append(lines, fmt.Sprintf("%s is studying %s.", name, p.Education))
	}
	if len(p.Strengths) > 0 {
		lines = append(lines, fmt.Sprintf("%s is proficient in %s.", name, joinWithAnd(p.Strengths)))
	}
	if len(p.Links) > 0 {
		links := make([]string, 0, len(p.Links))
		for _, link := range p.Links {
			links = append(links, fmt.Sprintf("%s is %s", link.Label, link.URL))
		}
		lines = append(lines, fmt.Sprintf("%s's %s.", name, joinLinks(links)))
	}
	lines = append(lines,
		fmt.Sprintf("Only answer questions about %s, %s's skills, experience, or general programming topics.", name, name),
		"Keep responses concise and helpful.",
	)

	return strings.Join(lines, "\n")
}

func joinWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

func joinLinks(links []string) string {
	if len(links) <= 2 {
		return strings.Join(links, " and ")
	}
	return strings.Join(links[:len(links)-1], ", ") + " and " + links[len(links)-1]
}
