package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/readmepro/internal/profile"
	"github.com/kalambet/readmepro/internal/readme"
)

func TestHTML(t *testing.T) {
	s := profile.Initial()
	s.Name = "Alice"
	s.Skills = []profile.Skill{{Name: "Go", Level: 70, Category: "Backend"}}
	s.Projects = []profile.Project{{Name: "tool", URL: "https://example.com/tool", Featured: true}}

	out, err := HTML(readme.Compile(s))
	require.NoError(t, err)

	assert.Contains(t, out, "<h1>👋 Hi there! I'm Alice</h1>")
	assert.Contains(t, out, "<h4>Backend</h4>")
	assert.Contains(t, out, `<a href="https://example.com/tool">tool</a>`)
	assert.Contains(t, out, "<hr>")
}

func TestHTML_GFMStrikethrough(t *testing.T) {
	out, err := HTML("~~old~~")
	require.NoError(t, err)
	assert.Contains(t, out, "<del>old</del>")
}

func TestTerminal_NoTTYStyle(t *testing.T) {
	out, err := Terminal("# Title\n\nsome **bold** text\n", "notty", 40)
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")
}

func TestTerminal_UnknownStyle(t *testing.T) {
	_, err := Terminal("# x", "no-such-style", 0)
	assert.Error(t, err)
}
