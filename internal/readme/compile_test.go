package readme

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/readmepro/internal/profile"
)

// only returns s with exactly the named sections enabled.
func only(s profile.State, ids ...string) profile.State {
	for i := range s.Sections {
		s.Sections[i].Enabled = false
		for _, id := range ids {
			if s.Sections[i].ID == id {
				s.Sections[i].Enabled = true
			}
		}
	}
	return s
}

func TestCompile_AllDisabledIsFooter(t *testing.T) {
	s := only(profile.Initial())
	s.Name = "Alice"
	s.Username = "alice"
	s.Skills = []profile.Skill{{Name: "Go", Level: 90, Category: "Backend"}}

	assert.Equal(t, Footer, Compile(s))
}

func TestCompile_EmptyState(t *testing.T) {
	want := "# 👋 Hi there!\n\n" + Footer
	assert.Equal(t, want, Compile(profile.Initial()))
}

func TestCompile_OrdersByOrderNotPosition(t *testing.T) {
	s := profile.Initial()
	s.Username = "alice"
	s.Name = "Alice"
	s.Sections = []profile.Section{
		{ID: "header", Type: profile.SectionHeader, Enabled: true, Order: 5},
		{ID: "stats", Type: profile.SectionStats, Enabled: true, Order: 1},
	}

	out := Compile(s)
	statsAt := strings.Index(out, "### 📊 GitHub Stats")
	headerAt := strings.Index(out, "# 👋 Hi there! I'm Alice")
	require.NotEqual(t, -1, statsAt)
	require.NotEqual(t, -1, headerAt)
	assert.Less(t, statsAt, headerAt)
}

func TestCompile_TiesKeepPlanOrder(t *testing.T) {
	s := profile.Initial()
	s.Username = "alice"
	s.Location = "Berlin"
	s.Sections = []profile.Section{
		{ID: "stats", Type: profile.SectionStats, Enabled: true, Order: 1},
		{ID: "about", Type: profile.SectionAbout, Enabled: true, Order: 1},
	}

	out := Compile(s)
	assert.Less(t, strings.Index(out, "GitHub Stats"), strings.Index(out, "Location"))
}

func TestCompile_UnknownSectionTypeSkipped(t *testing.T) {
	s := profile.Initial()
	s.Sections = []profile.Section{{ID: "x", Type: "custom", Enabled: true}}

	assert.Equal(t, Footer, Compile(s))
}

func TestCompile_Idempotent(t *testing.T) {
	s := profile.Initial()
	s.Name = "Alice"
	s.Username = "alice"
	s.CurrentLearning = "Go & Rust"
	s.Skills = []profile.Skill{{Name: "Go", Level: 70, Category: "Backend"}}
	s.Gists = []profile.Gist{{Title: "t", Language: "Go", Content: "package main"}}

	assert.Equal(t, Compile(s), Compile(s))
}

func TestHeader(t *testing.T) {
	s := profile.Initial()
	s.Name = "Alice"
	s.Bio = "I like **Go**."
	s.CurrentWork = "readmepro"
	s.CurrentLearning = "Rust & C++"

	want := "# 👋 Hi there! I'm Alice\n\n" +
		"### 🧠 About Me\nI like **Go**.\n\n" +
		"### 🚀 What I'm Up To\n\n" +
		"- 🔭 Working on **readmepro**\n" +
		"- 🌱 Learning **Rust & C++**\n" +
		"![Currently Learning](https://img.shields.io/badge/Currently_Learning-Rust%20%26%20C%2B%2B-blue?style=for-the-badge)\n\n" +
		"\n"
	assert.Equal(t, want, header(s))
}

func TestHeader_WorkOnly(t *testing.T) {
	s := profile.Initial()
	s.CurrentWork = "x"

	assert.Equal(t, "# 👋 Hi there!\n\n### 🚀 What I'm Up To\n\n- 🔭 Working on **x**\n\n", header(s))
}

func TestAbout_SingleLink(t *testing.T) {
	s := profile.Initial()
	s.SocialLinks = profile.SocialLinks{GitHub: "https://github.com/x"}

	out := about(s)
	assert.Equal(t, "### 🌐 Connect with me\n\n- [Github](https://github.com/x)\n\n", out)
	assert.Equal(t, 1, strings.Count(out, "- ["))
}

func TestAbout_FixedPlatformOrder(t *testing.T) {
	s := profile.Initial()
	s.Location = "Berlin"
	s.SocialLinks = profile.SocialLinks{YouTube: "y", GitHub: "g", LinkedIn: "l"}

	want := "📍 **Location:** Berlin\n\n" +
		"### 🌐 Connect with me\n\n" +
		"- [Github](g)\n- [Linkedin](l)\n- [Youtube](y)\n\n"
	assert.Equal(t, want, about(s))
}

func TestAbout_Empty(t *testing.T) {
	assert.Empty(t, about(profile.Initial()))
}

func TestSkills_BarAndGrouping(t *testing.T) {
	s := profile.Initial()
	s.Skills = []profile.Skill{
		{Name: "Go", Level: 70, Category: "Backend", Icon: "🐹"},
		{Name: "React", Level: 40, Category: "Frontend"},
		{Name: "Rust", Level: 100, Category: "Backend", Icon: "🦀"},
	}

	want := "### 🛠️ Skills\n\n" +
		"#### Backend\n" +
		"- 🐹 **Go** `███████░░░` 70%\n" +
		"- 🦀 **Rust** `██████████` 100%\n" +
		"\n" +
		"#### Frontend\n" +
		"- 🔧 **React** `████░░░░░░` 40%\n" +
		"\n"
	assert.Equal(t, want, skills(s))
}

func TestBar(t *testing.T) {
	tests := []struct {
		level      int
		wantFilled int
	}{
		{0, 0},
		{9, 0},
		{70, 7},
		{79, 7},
		{100, 10},
		{150, 10},
		{-5, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.level), func(t *testing.T) {
			b := bar(tt.level)
			assert.Equal(t, tt.wantFilled, strings.Count(b, barFilled))
			assert.Equal(t, barWidth-tt.wantFilled, strings.Count(b, barEmpty))
		})
	}
}

func TestSkills_Empty(t *testing.T) {
	assert.Empty(t, skills(profile.Initial()))
}

func TestProjects_FeaturedCap(t *testing.T) {
	s := profile.Initial()
	s.Projects = append(s.Projects, profile.Project{Name: "hidden", Featured: false})
	for i := 0; i < 10; i++ {
		s.Projects = append(s.Projects, profile.Project{Name: fmt.Sprintf("p%d", i), Featured: true})
	}

	out := projects(s)
	assert.Equal(t, 6, strings.Count(out, "#### 📌 "))
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "[p6]")

	last := -1
	for i := 0; i < 6; i++ {
		at := strings.Index(out, fmt.Sprintf("[p%d]", i))
		require.Greater(t, at, last)
		last = at
	}
}

func TestProjects_Format(t *testing.T) {
	s := profile.Initial()
	s.Projects = []profile.Project{{
		Name: "tool", URL: "https://github.com/a/tool", Description: "A tool",
		Language: "Go", Stars: 12, Forks: 3, Featured: true,
	}}

	want := "### 🚀 Featured Projects\n\n" +
		"#### 📌 [tool](https://github.com/a/tool)\n" +
		"*A tool*\n\n" +
		"**Tech Stack:** `Go` ・ ⭐ **12** ・ 🍴 **3**\n\n" +
		"---\n\n"
	assert.Equal(t, want, projects(s))
}

func TestProjects_NoneFeatured(t *testing.T) {
	s := profile.Initial()
	s.Projects = []profile.Project{{Name: "x"}}
	assert.Empty(t, projects(s))
}

func TestGists_Truncation(t *testing.T) {
	long := strings.Repeat("a", 350)
	exact := strings.Repeat("b", 300)
	s := profile.Initial()
	s.Gists = []profile.Gist{
		{Title: "long", Language: "Go", Content: long},
		{Title: "exact", Language: "Go", Content: exact},
	}

	out := gists(s)
	assert.Contains(t, out, "```go\n"+strings.Repeat("a", 300)+"...\n```")
	assert.NotContains(t, out, strings.Repeat("a", 301))
	assert.Contains(t, out, "```go\n"+exact+"\n```")
}

func TestGists_TruncatesRunes(t *testing.T) {
	assert.Equal(t, "ééé...", truncate("éééé", 3))
	assert.Equal(t, "éé", truncate("éé", 3))
}

func TestGists_TruncatesAstralRunesWhole(t *testing.T) {
	// 301 runes: the emoji at position 300 is kept intact, not split into
	// a surrogate half.
	over := strings.Repeat("a", 299) + "😀" + "b"
	assert.Equal(t, strings.Repeat("a", 299)+"😀...", truncate(over, gistPreviewLen))

	// 300 runes but 302 UTF-16 units: the limit counts runes, so nothing is cut.
	atLimit := strings.Repeat("a", 298) + "😀😀"
	assert.Equal(t, atLimit, truncate(atLimit, gistPreviewLen))

	s := profile.Initial()
	s.Gists = []profile.Gist{{Title: "emoji", Language: "Text", Content: over}}
	assert.Contains(t, gists(s), "😀...\n```")
}

func TestGists_CapAndFormat(t *testing.T) {
	s := profile.Initial()
	for i := 0; i < 5; i++ {
		s.Gists = append(s.Gists, profile.Gist{Title: fmt.Sprintf("g%d", i), Language: "Text", Content: "x", URL: "u"})
	}
	s.Gists[0].Description = "first"

	out := gists(s)
	assert.Equal(t, 3, strings.Count(out, "[View full gist](u)"))
	assert.NotContains(t, out, "#### g3")
	assert.True(t, strings.HasPrefix(out, "### 💻 Code Snippets\n\n#### g0\nfirst\n\n```text\nx\n```\n\n[View full gist](u)\n\n---\n\n#### g1\n```text\n"))
}

func TestStats(t *testing.T) {
	s := profile.Initial()
	assert.Empty(t, stats(s), "no username, no stats")

	s.Username = "alice"
	s.Stats = profile.Stats{Repositories: 4, Followers: 99}
	out := stats(s)
	assert.Equal(t, "### 📊 GitHub Stats\n\n- 📦 **Public Repos:** 4\n", out)
	assert.NotContains(t, out, "Contributions")
	assert.NotContains(t, out, "99")

	s.Stats.Contributions = 7
	assert.Contains(t, stats(s), "- 📈 **Contributions:** 7\n")
}

func TestEncodeComponent(t *testing.T) {
	assert.Equal(t, "Machine%20Learning", encodeComponent("Machine Learning"))
	assert.Equal(t, "a-b_c.d!e~f*g'h(i)", encodeComponent("a-b_c.d!e~f*g'h(i)"))
	assert.Equal(t, "%2F%3F%23", encodeComponent("/?#"))
	assert.Equal(t, "%C3%A9", encodeComponent("é"))
}

func TestGistSnippet(t *testing.T) {
	g := profile.Gist{Title: "Hello", Language: "Python", Content: "print('hi')"}
	assert.Equal(t, "### Hello\n```python\nprint('hi')\n```", GistSnippet(g))
}
