package readme

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kalambet/readmepro/internal/profile"
)

const (
	maxFeaturedProjects = 6
	maxGists            = 3
	gistPreviewLen      = 300

	barWidth  = 10
	barFilled = "█"
	barEmpty  = "░"

	learningBadgeURL = "https://img.shields.io/badge/Currently_Learning-%s-blue?style=for-the-badge"
)

func header(s profile.State) string {
	var b strings.Builder
	if s.Name != "" {
		fmt.Fprintf(&b, "# 👋 Hi there! I'm %s\n\n", s.Name)
	} else {
		b.WriteString("# 👋 Hi there!\n\n")
	}

	if s.Bio != "" {
		fmt.Fprintf(&b, "### 🧠 About Me\n%s\n\n", s.Bio)
	}

	if s.CurrentWork != "" || s.CurrentLearning != "" {
		b.WriteString("### 🚀 What I'm Up To\n\n")
		if s.CurrentWork != "" {
			fmt.Fprintf(&b, "- 🔭 Working on **%s**\n", s.CurrentWork)
		}
		if s.CurrentLearning != "" {
			fmt.Fprintf(&b, "- 🌱 Learning **%s**\n", s.CurrentLearning)
			fmt.Fprintf(&b, "![Currently Learning]("+learningBadgeURL+")\n\n", encodeComponent(s.CurrentLearning))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func about(s profile.State) string {
	var b strings.Builder
	if s.Location != "" {
		fmt.Fprintf(&b, "📍 **Location:** %s\n\n", s.Location)
	}

	var links []profile.Link
	for _, l := range s.SocialLinks.Entries() {
		if l.URL != "" {
			links = append(links, l)
		}
	}
	if len(links) > 0 {
		b.WriteString("### 🌐 Connect with me\n\n")
		for _, l := range links {
			fmt.Fprintf(&b, "- [%s](%s)\n", capitalize(l.Platform), l.URL)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func skills(s profile.State) string {
	if len(s.Skills) == 0 {
		return ""
	}

	// group by category, categories in order of first appearance
	var order []string
	grouped := make(map[string][]profile.Skill)
	for _, sk := range s.Skills {
		if _, seen := grouped[sk.Category]; !seen {
			order = append(order, sk.Category)
		}
		grouped[sk.Category] = append(grouped[sk.Category], sk)
	}

	var b strings.Builder
	b.WriteString("### 🛠️ Skills\n\n")
	for _, cat := range order {
		fmt.Fprintf(&b, "#### %s\n", cat)
		for _, sk := range grouped[cat] {
			icon := sk.Icon
			if icon == "" {
				icon = profile.DefaultSkillIcon
			}
			fmt.Fprintf(&b, "- %s **%s** `%s` %d%%\n", icon, sk.Name, bar(sk.Level), sk.Level)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// bar renders level as ten cells, one filled cell per whole ten percent.
// The remainder is dropped, so 79 renders seven filled cells.
func bar(level int) string {
	filled := min(max(level/10, 0), barWidth)
	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, barWidth-filled)
}

func projects(s profile.State) string {
	var featured []profile.Project
	for _, p := range s.Projects {
		if p.Featured {
			featured = append(featured, p)
			if len(featured) == maxFeaturedProjects {
				break
			}
		}
	}
	if len(featured) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("### 🚀 Featured Projects\n\n")
	for _, p := range featured {
		fmt.Fprintf(&b, "#### 📌 [%s](%s)\n", p.Name, p.URL)
		fmt.Fprintf(&b, "*%s*\n\n", p.Description)
		fmt.Fprintf(&b, "**Tech Stack:** `%s` ・ ⭐ **%d** ・ 🍴 **%d**\n\n", p.Language, p.Stars, p.Forks)
		b.WriteString("---\n\n")
	}
	return b.String()
}

func gists(s profile.State) string {
	if len(s.Gists) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("### 💻 Code Snippets\n\n")
	for i, g := range s.Gists {
		if i == maxGists {
			break
		}
		fmt.Fprintf(&b, "#### %s\n", g.Title)
		if g.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", g.Description)
		}
		b.WriteString("```" + strings.ToLower(g.Language) + "\n")
		b.WriteString(truncate(g.Content, gistPreviewLen))
		b.WriteString("\n```\n\n")
		fmt.Fprintf(&b, "[View full gist](%s)\n\n", g.URL)
		b.WriteString("---\n\n")
	}
	return b.String()
}

// truncate keeps the first n characters of s and marks the cut with "...".
// Characters are runes, so multi-byte text is never split mid-character.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

func stats(s profile.State) string {
	if s.Username == "" {
		return ""
	}
	out := fmt.Sprintf("### 📊 GitHub Stats\n\n- 📦 **Public Repos:** %d\n", s.Stats.Repositories)
	if s.Stats.Contributions > 0 {
		out += fmt.Sprintf("- 📈 **Contributions:** %d\n", s.Stats.Contributions)
	}
	return out
}

// capitalize upper-cases the first letter only: "linkedin" -> "Linkedin".
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return strings.ToUpper(string(r)) + s[size:]
}

// encodeComponent percent-encodes everything except the characters
// A-Z a-z 0-9 - _ . ! ~ * ' ( ), byte by byte over UTF-8.
func encodeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
