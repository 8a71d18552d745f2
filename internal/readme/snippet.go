package readme

import (
	"strings"

	"github.com/kalambet/readmepro/internal/profile"
)

// GistSnippet renders one gist as a standalone block with its full content,
// for copying into another document.
func GistSnippet(g profile.Gist) string {
	return "### " + g.Title + "\n```" + strings.ToLower(g.Language) + "\n" + g.Content + "\n```"
}
