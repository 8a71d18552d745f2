package github

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kalambet/readmepro/internal/profile"
)

// ErrInvalidGistURL is returned when no gist id can be taken from a URL.
var ErrInvalidGistURL = errors.New("invalid gist URL")

const (
	noDescription   = "No description available"
	unknownLanguage = "Unknown"
	plainText       = "Text"
)

// ImportProfile fetches username's profile and repositories (perPage of
// them, by stars) and returns the update to apply to current.
func (c *Client) ImportProfile(ctx context.Context, current profile.State, username string, perPage, limit int) (profile.Patch, error) {
	u, err := c.GetUser(ctx, username)
	if err != nil {
		return profile.Patch{}, fmt.Errorf("fetching user %s: %w", username, err)
	}
	repos, err := c.GetUserRepos(ctx, username, perPage)
	if err != nil {
		return profile.Patch{}, fmt.Errorf("fetching repos for %s: %w", username, err)
	}
	return ImportPatch(current, u, repos, limit), nil
}

// ImportGist fetches the gist a URL points at.
func (c *Client) ImportGist(ctx context.Context, rawURL string) (profile.Gist, error) {
	id, err := ParseGistID(rawURL)
	if err != nil {
		return profile.Gist{}, err
	}
	g, err := c.GetGist(ctx, id)
	if err != nil {
		return profile.Gist{}, fmt.Errorf("fetching gist %s: %w", id, err)
	}
	return GistFromAPI(g), nil
}

// ImportPatch maps a GitHub user and their repositories onto an update for
// current. Identity fields keep their current value when GitHub has none;
// the GitHub link is replaced while the other links stay; contributions are
// not known to the API and are kept. The first limit repositories become
// projects, featured when they have at least one star.
func ImportPatch(current profile.State, u *User, repos []Repo, limit int) profile.Patch {
	name := orElse(u.Name, current.Name)
	bio := orElse(u.Bio, current.Bio)
	location := orElse(u.Location, current.Location)
	website := orElse(u.Blog, current.Website)

	links := current.SocialLinks
	links.GitHub = u.HTMLURL

	stats := profile.Stats{
		Followers:     u.Followers,
		Following:     u.Following,
		Repositories:  u.PublicRepos,
		Contributions: current.Stats.Contributions,
	}

	if limit < 0 || limit > len(repos) {
		limit = len(repos)
	}
	projects := make([]profile.Project, 0, limit)
	for _, r := range repos[:limit] {
		projects = append(projects, ProjectFromRepo(r))
	}

	return profile.Patch{
		Name:        &name,
		Bio:         &bio,
		Location:    &location,
		Website:     &website,
		SocialLinks: &links,
		Stats:       &stats,
		Projects:    &projects,
	}
}

// ProjectFromRepo converts one repository into a profile project.
func ProjectFromRepo(r Repo) profile.Project {
	return profile.Project{
		ID:          strconv.FormatInt(r.ID, 10),
		Name:        r.Name,
		Description: orElse(r.Description, noDescription),
		URL:         r.HTMLURL,
		Language:    orElse(r.Language, unknownLanguage),
		Stars:       r.Stars,
		Forks:       r.Forks,
		Featured:    r.Stars > 0,
	}
}

// ParseGistID takes the last path segment of a gist URL, dropping any
// fragment. A bare id is returned unchanged.
func ParseGistID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	id := raw[strings.LastIndex(raw, "/")+1:]
	if i := strings.Index(id, "#"); i >= 0 {
		id = id[:i]
	}
	if id == "" {
		return "", ErrInvalidGistURL
	}
	return id, nil
}

// GistFromAPI converts a fetched gist using its first file, by filename
// order. The title falls back to the file name and the language to "Text".
func GistFromAPI(g *Gist) profile.Gist {
	var first GistFile
	if len(g.Files) > 0 {
		names := make([]string, 0, len(g.Files))
		for name := range g.Files {
			names = append(names, name)
		}
		sort.Strings(names)
		first = g.Files[names[0]]
		if first.Filename == "" {
			first.Filename = names[0]
		}
	}

	return profile.Gist{
		ID:          g.ID,
		Title:       orElse(g.Description, first.Filename),
		Description: g.Description,
		URL:         g.HTMLURL,
		Language:    orElse(first.Language, plainText),
		Content:     first.Content,
	}
}

func orElse(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
