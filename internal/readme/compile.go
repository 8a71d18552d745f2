// Package readme turns a profile snapshot into GitHub profile Markdown.
//
// Compile is pure: the same state always yields the same document, nothing
// is cached, and absent data is omitted rather than reported as an error.
package readme

import (
	"sort"
	"strings"

	"github.com/kalambet/readmepro/internal/profile"
)

// Footer closes every compiled document, including one with no enabled
// sections.
const Footer = "### 🙌 Thanks for stopping by!\n"

type formatter func(s profile.State) string

// formatters maps each known section type to its renderer. Types missing
// from the table render nothing.
var formatters = map[profile.SectionType]formatter{
	profile.SectionHeader:   header,
	profile.SectionAbout:    about,
	profile.SectionSkills:   skills,
	profile.SectionProjects: projects,
	profile.SectionGists:    gists,
	profile.SectionStats:    stats,
}

// Compile renders the enabled sections of s in ascending Order, ties kept in
// plan order, followed by Footer.
func Compile(s profile.State) string {
	plan := make([]profile.Section, 0, len(s.Sections))
	for _, sec := range s.Sections {
		if sec.Enabled {
			plan = append(plan, sec)
		}
	}
	sort.SliceStable(plan, func(i, j int) bool { return plan[i].Order < plan[j].Order })

	var b strings.Builder
	for _, sec := range plan {
		if f, ok := formatters[sec.Type]; ok {
			b.WriteString(f(s))
		}
	}
	b.WriteString(Footer)
	return b.String()
}
