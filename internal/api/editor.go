package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kalambet/readmepro/internal/github"
	"github.com/kalambet/readmepro/internal/profile"
	"github.com/kalambet/readmepro/internal/publish"
	"github.com/kalambet/readmepro/internal/storage"
)

// defaultSkillLevel is used when a new skill names neither a level nor a
// level name ("Intermediate").
const defaultSkillLevel = 60

// GitHubClient is the subset of *github.Client used by the API.
type GitHubClient interface {
	ImportProfile(ctx context.Context, current profile.State, username string, perPage, limit int) (profile.Patch, error)
	ImportGist(ctx context.Context, rawURL string) (profile.Gist, error)
	GetUserLanguageStats(ctx context.Context, username string) (map[string]github.LanguageStat, error)
}

// Publisher pushes a profile snapshot to GitHub.
type Publisher interface {
	Publish(ctx context.Context, s profile.State, token string) (storage.Publish, error)
}

// PublishHistory lists recorded publish attempts.
type PublishHistory interface {
	ListPublishes(username string, limit int) ([]storage.Publish, error)
}

// SkillInput is the payload for adding a skill. LevelName, when set, wins
// over Level. A missing icon is looked up in the catalog.
type SkillInput struct {
	Name      string `json:"name"`
	Level     *int   `json:"level,omitempty"`
	LevelName string `json:"levelName,omitempty"`
	Category  string `json:"category,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

// GistInput is the payload for adding a gist by hand.
type GistInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Language    string `json:"language,omitempty"`
	Content     string `json:"content"`
}

// editor validates user input before it becomes an action. The profile
// manager itself never rejects anything.
type editor struct {
	deps AppDeps
}

func (e editor) addSkill(in SkillInput) (profile.Skill, error) {
	level := defaultSkillLevel
	switch {
	case in.LevelName != "":
		l, ok := profile.LevelByName(in.LevelName)
		if !ok {
			return profile.Skill{}, fmt.Errorf("%w: unknown level %q", profile.ErrInvalid, in.LevelName)
		}
		level = l
	case in.Level != nil:
		level = *in.Level
	}

	sk := profile.Skill{
		ID:       uuid.New().String(),
		Name:     strings.TrimSpace(in.Name),
		Level:    level,
		Category: strings.TrimSpace(in.Category),
		Icon:     in.Icon,
	}
	if sk.Category == "" {
		sk.Category = "Other"
	}
	if sk.Icon == "" {
		sk.Icon = profile.IconFor(sk.Name)
	}
	if err := profile.ValidateNewSkill(e.deps.Profile.Snapshot(), sk); err != nil {
		return profile.Skill{}, err
	}
	e.deps.Profile.Dispatch(profile.AddSkill{Skill: sk})
	return sk, nil
}

func (e editor) updateSkill(id string, p profile.SkillPatch) (profile.State, error) {
	s := e.deps.Profile.Snapshot()
	if !hasID(s.Skills, id, func(sk profile.Skill) string { return sk.ID }) {
		return profile.State{}, fmt.Errorf("skill %q: %w", id, errNotFound)
	}
	if err := profile.ValidateSkillPatch(s, id, p); err != nil {
		return profile.State{}, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	return e.deps.Profile.Dispatch(profile.UpdateSkill{ID: id, Patch: p}), nil
}

func (e editor) removeSkill(id string) (profile.State, error) {
	if !hasID(e.deps.Profile.Snapshot().Skills, id, func(sk profile.Skill) string { return sk.ID }) {
		return profile.State{}, fmt.Errorf("skill %q: %w", id, errNotFound)
	}
	return e.deps.Profile.Dispatch(profile.RemoveSkill{ID: id}), nil
}

func (e editor) addGist(g profile.Gist) (profile.Gist, error) {
	if err := profile.ValidateGist(g); err != nil {
		return profile.Gist{}, err
	}
	return e.storeGist(g), nil
}

// storeGist fills defaults and appends g without validation. Imported
// gists go straight here: an empty first file is kept as empty content.
func (e editor) storeGist(g profile.Gist) profile.Gist {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.Language == "" {
		g.Language = "Text"
	}
	e.deps.Profile.Dispatch(profile.AddGist{Gist: g})
	return g
}

func (e editor) importGist(ctx context.Context, rawURL string) (profile.Gist, error) {
	if e.deps.GitHub == nil {
		return profile.Gist{}, fmt.Errorf("GitHub client not configured")
	}
	g, err := e.deps.GitHub.ImportGist(ctx, rawURL)
	if err != nil {
		return profile.Gist{}, fmt.Errorf("importing gist: %w", err)
	}
	return e.storeGist(g), nil
}

func (e editor) removeGist(id string) (profile.State, error) {
	if !hasID(e.deps.Profile.Snapshot().Gists, id, func(g profile.Gist) string { return g.ID }) {
		return profile.State{}, fmt.Errorf("gist %q: %w", id, errNotFound)
	}
	return e.deps.Profile.Dispatch(profile.RemoveGist{ID: id}), nil
}

func (e editor) toggleSection(id string, enabled bool) (profile.State, error) {
	if err := profile.ValidateSectionID(e.deps.Profile.Snapshot(), id); err != nil {
		return profile.State{}, err
	}
	return e.deps.Profile.Dispatch(profile.ToggleSection{ID: id, Enabled: enabled}), nil
}

func (e editor) reorderSections(secs []profile.Section) (profile.State, error) {
	if err := profile.ValidateSections(secs); err != nil {
		return profile.State{}, err
	}
	return e.deps.Profile.Dispatch(profile.ReorderSections{Sections: secs}), nil
}

func (e editor) loadTemplate(name string) (profile.State, error) {
	t, err := profile.TemplateByName(name)
	if err != nil {
		return profile.State{}, err
	}
	return e.deps.Profile.Dispatch(profile.LoadTemplate{Patch: t.Patch}), nil
}

// importGitHub fills the profile from a GitHub account. An empty username
// falls back to the profile's username, then the configured one.
func (e editor) importGitHub(ctx context.Context, username string) (profile.State, error) {
	if e.deps.GitHub == nil {
		return profile.State{}, fmt.Errorf("GitHub client not configured")
	}
	current := e.deps.Profile.Snapshot()
	username = e.username(username, current)
	if username == "" {
		return profile.State{}, fmt.Errorf("%w: GitHub username is required", profile.ErrInvalid)
	}

	p, err := e.deps.GitHub.ImportProfile(ctx, current, username, e.deps.ReposPerPage, e.deps.ImportLimit)
	if err != nil {
		return profile.State{}, fmt.Errorf("importing %s: %w", username, err)
	}
	p.Username = &username
	return e.deps.Profile.Dispatch(profile.UpdateFields{Patch: p}), nil
}

func (e editor) languageStats(ctx context.Context, username string) (map[string]github.LanguageStat, error) {
	if e.deps.GitHub == nil {
		return nil, fmt.Errorf("GitHub client not configured")
	}
	username = e.username(username, e.deps.Profile.Snapshot())
	if username == "" {
		return nil, fmt.Errorf("%w: GitHub username is required", profile.ErrInvalid)
	}
	return e.deps.GitHub.GetUserLanguageStats(ctx, username)
}

// publish pushes the current snapshot. token overrides the configured
// GitHub token when non-empty.
func (e editor) publish(ctx context.Context, token string) (storage.Publish, error) {
	if e.deps.Publisher == nil {
		return storage.Publish{}, fmt.Errorf("publisher not configured")
	}
	if token == "" {
		token = e.deps.GitHubToken
	}
	return e.deps.Publisher.Publish(ctx, e.deps.Profile.Snapshot(), token)
}

func (e editor) compile() string {
	return publish.Compile(e.deps.Profile.Snapshot(), e.deps.Metrics)
}

func (e editor) username(explicit string, s profile.State) string {
	if u := strings.TrimSpace(explicit); u != "" {
		return u
	}
	if s.Username != "" {
		return s.Username
	}
	return e.deps.DefaultUsername
}

func hasID[T any](items []T, id string, key func(T) string) bool {
	for _, it := range items {
		if key(it) == id {
			return true
		}
	}
	return false
}
