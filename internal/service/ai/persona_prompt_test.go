package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/persona"
)

func TestBuildPreambleForSeedPersona(t *testing.T) {
	preamble := BuildPreamble(persona.Seed()[0])

	want := strings.Join([]string{
		"You are an AI assistant for Utkarsh Barad, a Python and Full Stack Developer.",
		"Utkarsh is studying BSC-CS/IT at Silver Oak University.",
		"Utkarsh is proficient in Python, web development, and keeping up with emerging technologies.",
		"Utkarsh's GitHub is https://github.com/utkarshbhai007 and LinkedIn is https://linkedin.com/in/utkarsh-barad.",
		"Only answer questions about Utkarsh, Utkarsh's skills, experience, or general programming topics.",
		"Keep responses concise and helpful.",
	}, "\n")
	assert.Equal(t, want, preamble)
}

func TestBuildPreambleSkipsMissingSections(t *testing.T) {
	preamble := BuildPreamble(persona.Persona{Name: "Ada", Title: "Engineer"})

	assert.Equal(t, "You are an AI assistant for Ada, a Engineer.\n"+
		"Only answer questions about Ada, Ada's skills, experience, or general programming topics.\n"+
		"Keep responses concise and helpful.", preamble)
}

func TestJoinHelpers(t *testing.T) {
	assert.Equal(t, "", joinWithAnd(nil))
	assert.Equal(t, "Go", joinWithAnd([]string{"Go"}))
	assert.Equal(t, "Go and SQL", joinWithAnd([]string{"Go", "SQL"}))
	assert.Equal(t, "Go, SQL, and Rust", joinWithAnd([]string{"Go", "SQL", "Rust"}))
	assert.Equal(t, "a, b and c", joinLinks([]string{"a", "b", "c"}))
}
