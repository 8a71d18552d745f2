package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/readmepro/internal/github"
	"github.com/kalambet/readmepro/internal/metrics"
	"github.com/kalambet/readmepro/internal/profile"
	"github.com/kalambet/readmepro/internal/publish"
	"github.com/kalambet/readmepro/internal/readme"
	"github.com/kalambet/readmepro/internal/storage"
)

const testToken = "test-token-12345"

type fakeGitHub struct {
	patch    profile.Patch
	gist     profile.Gist
	langs    map[string]github.LanguageStat
	err      error
	username string
}

func (f *fakeGitHub) ImportProfile(_ context.Context, _ profile.State, username string, _, _ int) (profile.Patch, error) {
	f.username = username
	return f.patch, f.err
}

func (f *fakeGitHub) ImportGist(_ context.Context, rawURL string) (profile.Gist, error) {
	if f.err != nil {
		return profile.Gist{}, f.err
	}
	if _, err := github.ParseGistID(rawURL); err != nil {
		return profile.Gist{}, err
	}
	return f.gist, nil
}

func (f *fakeGitHub) GetUserLanguageStats(_ context.Context, username string) (map[string]github.LanguageStat, error) {
	f.username = username
	return f.langs, f.err
}

type fakePusher struct {
	ok    bool
	token string
}

func (p *fakePusher) CreateOrUpdateReadme(_ context.Context, _, _, token string) bool {
	p.token = token
	return p.ok
}

type testEnv struct {
	handler http.Handler
	deps    AppDeps
	store   *storage.Store
	gh      *fakeGitHub
	pusher  *fakePusher
}

func setupAppHandler(t *testing.T, token string) *testEnv {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	rec := metrics.New(nil)
	gh := &fakeGitHub{}
	pusher := &fakePusher{ok: true}
	deps := AppDeps{
		Profile:      profile.NewManager(),
		GitHub:       gh,
		Publisher:    publish.NewService(pusher, store, rec),
		History:      store,
		Metrics:      rec,
		Token:        token,
		GitHubToken:  "ghp_config",
		ReposPerPage: 50,
		ImportLimit:  10,
	}
	return &testEnv{handler: NewAppHandler(deps), deps: deps, store: store, gh: gh, pusher: pusher}
}

func authReq(method, url, body, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (e *testEnv) do(t *testing.T, method, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, authReq(method, url, body, testToken))
	return rr
}

// expect fails the test now if rr does not carry the wanted status.
func expect(t *testing.T, rr *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, rr.Code, "body = %s", rr.Body.String())
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body = %s", rr.Body.String())
	return v
}

func decodeState(t *testing.T, rr *httptest.ResponseRecorder) profile.State {
	t.Helper()
	return decodeBody[profile.State](t, rr)
}

func errorType(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody[struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}](t, rr)
	return body.Error.Type
}

func TestAuth_RejectsMissingToken(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, authReq(http.MethodGet, "/profile", "", ""))
	expect(t, rr, http.StatusUnauthorized)
	assert.Equal(t, "authentication_error", errorType(t, rr))

	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, authReq(http.MethodGet, "/profile", "", "wrong"))
	expect(t, rr, http.StatusUnauthorized)
}

func TestHealthAndMetrics_ArePublic(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	expect(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), `"ok"`)

	env.do(t, http.MethodGet, "/readme", "")

	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	expect(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), "readmepro_compile_total 1")
}

func TestProfile_GetAndPatch(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := env.do(t, http.MethodGet, "/profile", "")
	expect(t, rr, http.StatusOK)
	require.Len(t, decodeState(t, rr).Sections, 6)

	rr = env.do(t, http.MethodPatch, "/profile", `{"name":"Ada","socialLinks":{"github":"https://github.com/ada"}}`)
	expect(t, rr, http.StatusOK)
	s := decodeState(t, rr)
	assert.Equal(t, "Ada", s.Name)
	assert.Equal(t, "https://github.com/ada", s.SocialLinks.GitHub)
	assert.Len(t, s.Sections, 6, "sections touched by unrelated patch")
}

func TestProfile_PatchRejectsUnknownSectionType(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := env.do(t, http.MethodPatch, "/profile", `{"sections":[{"id":"x","type":"banner","enabled":true}]}`)
	expect(t, rr, http.StatusBadRequest)
}

func TestProfile_InvalidJSON(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := env.do(t, http.MethodPatch, "/profile", `{not json`)
	expect(t, rr, http.StatusBadRequest)
	assert.Equal(t, "invalid_request_error", errorType(t, rr))
}

func TestSkills_AddUpdateRemove(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := env.do(t, http.MethodPost, "/skills", `{"name":"Go","levelName":"expert","category":"Backend"}`)
	expect(t, rr, http.StatusCreated)
	sk := decodeBody[profile.Skill](t, rr)
	assert.NotEmpty(t, sk.ID)
	assert.Equal(t, 100, sk.Level)
	assert.Equal(t, "🐹", sk.Icon)

	rr = env.do(t, http.MethodPost, "/skills", `{"name":"go"}`)
	expect(t, rr, http.StatusBadRequest)

	rr = env.do(t, http.MethodPatch, "/skills/"+sk.ID, `{"level":70}`)
	expect(t, rr, http.StatusOK)
	assert.Equal(t, 70, decodeState(t, rr).Skills[0].Level)

	rr = env.do(t, http.MethodPatch, "/skills/"+sk.ID, `{"level":170}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "out-of-range level")

	rr = env.do(t, http.MethodDelete, "/skills/"+sk.ID, "")
	expect(t, rr, http.StatusNoContent)
	assert.Empty(t, env.deps.Profile.Snapshot().Skills)

	rr = env.do(t, http.MethodDelete, "/skills/"+sk.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code, "second delete")
}

func TestSkills_DefaultsAndUnknownLevel(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := env.do(t, http.MethodPost, "/skills", `{"name":"Zig"}`)
	expect(t, rr, http.StatusCreated)
	sk := decodeBody[profile.Skill](t, rr)
	assert.Equal(t, defaultSkillLevel, sk.Level)
	assert.Equal(t, "Other", sk.Category)
	assert.Equal(t, profile.DefaultSkillIcon, sk.Icon)

	rr = env.do(t, http.MethodPost, "/skills", `{"name":"Odin","levelName":"wizard"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "unknown level")
}

func TestGists_AddSnippetRemove(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := env.do(t, http.MethodPost, "/gists", `{"title":"Hello","content":"fmt.Println(1)","language":"Go"}`)
	expect(t, rr, http.StatusCreated)
	g := decodeBody[profile.Gist](t, rr)

	rr = env.do(t, http.MethodGet, "/gists/"+g.ID+"/snippet", "")
	expect(t, rr, http.StatusOK)
	assert.Equal(t, readme.GistSnippet(g), rr.Body.String())

	rr = env.do(t, http.MethodPost, "/gists", `{"title":"","content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "missing title")
	rr = env.do(t, http.MethodPost, "/gists", `{"title":"t","content":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "missing content")

	rr = env.do(t, http.MethodDelete, "/gists/"+g.ID, "")
	expect(t, rr, http.StatusNoContent)
	rr = env.do(t, http.MethodGet, "/gists/"+g.ID+"/snippet", "")
	assert.Equal(t, http.StatusNotFound, rr.Code, "snippet after delete")
}

func TestGists_Import(t *testing.T) {
	env := setupAppHandler(t, testToken)
	env.gh.gist = profile.Gist{ID: "abc", Title: "util.go", Language: "Go", Content: "package util", URL: "https://gist.github.com/u/abc"}

	rr := env.do(t, http.MethodPost, "/gists/import", `{"url":"https://gist.github.com/u/abc"}`)
	expect(t, rr, http.StatusCreated)
	got := env.deps.Profile.Snapshot().Gists
	require.Len(t, got, 1)
	assert.Equal(t, "abc", got[0].ID)

	rr = env.do(t, http.MethodPost, "/gists/import", `{"url":"https://gist.github.com/"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "bad url")
}

func TestGists_ImportKeepsEmptyFile(t *testing.T) {
	env := setupAppHandler(t, testToken)
	env.gh.gist = profile.Gist{ID: "e1", Title: "notes.txt", URL: "https://gist.github.com/u/e1"}

	rr := env.do(t, http.MethodPost, "/gists/import", `{"url":"https://gist.github.com/u/e1"}`)
	expect(t, rr, http.StatusCreated)
	g := decodeBody[profile.Gist](t, rr)
	assert.Equal(t, "e1", g.ID)
	assert.Empty(t, g.Content)
	assert.Equal(t, "Text", g.Language)
	assert.Len(t, env.deps.Profile.Snapshot().Gists, 1)
}

func TestSections_ToggleAndReorder(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := env.do(t, http.MethodPatch, "/sections/gists", `{"enabled":true}`)
	expect(t, rr, http.StatusOK)
	for _, sec := range decodeState(t, rr).Sections {
		if sec.ID == "gists" {
			assert.True(t, sec.Enabled, "gists still disabled")
		}
	}

	rr = env.do(t, http.MethodPatch, "/sections/nope", `{"enabled":true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "unknown section")
	rr = env.do(t, http.MethodPatch, "/sections/gists", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "missing enabled")

	body := `[{"id":"stats","type":"stats","title":"Stats","enabled":true,"order":0},
		{"id":"header","type":"header","title":"Header","enabled":true,"order":1}]`
	rr = env.do(t, http.MethodPut, "/sections", body)
	expect(t, rr, http.StatusOK)
	s := decodeState(t, rr)
	require.Len(t, s.Sections, 2)
	assert.Equal(t, "stats", s.Sections[0].ID)

	rr = env.do(t, http.MethodPut, "/sections", `[{"id":"x","type":"banner"}]`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "unknown type")
}

func TestTemplates_ListAndLoad(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := env.do(t, http.MethodGet, "/templates", "")
	expect(t, rr, http.StatusOK)
	assert.Len(t, decodeBody[[]profile.Template](t, rr), 3)

	rr = env.do(t, http.MethodPost, "/templates/developer", "")
	expect(t, rr, http.StatusOK)
	assert.NotEmpty(t, decodeState(t, rr).Skills, "developer template added no skills")

	rr = env.do(t, http.MethodPost, "/templates/astronaut", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUndoRedoReset(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := env.do(t, http.MethodPost, "/undo", "")
	expect(t, rr, http.StatusConflict)

	env.do(t, http.MethodPatch, "/profile", `{"name":"Ada"}`)
	rr = env.do(t, http.MethodPost, "/reset", "")
	require.Empty(t, decodeState(t, rr).Name)

	rr = env.do(t, http.MethodPost, "/undo", "")
	assert.Equal(t, "Ada", decodeState(t, rr).Name)
	rr = env.do(t, http.MethodPost, "/redo", "")
	assert.Empty(t, decodeState(t, rr).Name)

	rr = env.do(t, http.MethodGet, "/history", "")
	assert.Equal(t, map[string]int{"undo": 2, "redo": 0}, decodeBody[map[string]int](t, rr))
}

func TestImport_SetsUsername(t *testing.T) {
	env := setupAppHandler(t, testToken)
	name := "The Octocat"
	env.gh.patch = profile.Patch{Name: &name}

	rr := env.do(t, http.MethodPost, "/import", `{"username":"octocat"}`)
	expect(t, rr, http.StatusOK)
	s := decodeState(t, rr)
	assert.Equal(t, "octocat", s.Username)
	assert.Equal(t, "The Octocat", s.Name)

	// Without a body the profile's username is reused.
	rr = env.do(t, http.MethodPost, "/import", "")
	expect(t, rr, http.StatusOK)
	assert.Equal(t, "octocat", env.gh.username)
}

func TestImport_Errors(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := env.do(t, http.MethodPost, "/import", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code, "no username")

	env.gh.err = &github.StatusError{Code: http.StatusNotFound}
	rr = env.do(t, http.MethodPost, "/import", `{"username":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code, "unknown user")

	env.gh.err = &github.StatusError{Code: http.StatusInternalServerError}
	rr = env.do(t, http.MethodPost, "/import", `{"username":"ghost"}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code, "upstream error")
}

func TestLanguageStats(t *testing.T) {
	env := setupAppHandler(t, testToken)
	env.gh.langs = map[string]github.LanguageStat{"Go": {Count: 2, Bytes: 300}}

	rr := env.do(t, http.MethodGet, "/stats/languages?username=octocat", "")
	expect(t, rr, http.StatusOK)
	got := decodeBody[map[string]github.LanguageStat](t, rr)
	assert.Equal(t, int64(300), got["Go"].Bytes)
}

func TestReadme_ExportAndPreview(t *testing.T) {
	env := setupAppHandler(t, testToken)
	env.do(t, http.MethodPatch, "/profile", `{"name":"Ada"}`)

	rr := env.do(t, http.MethodGet, "/readme", "")
	expect(t, rr, http.StatusOK)
	assert.Equal(t, readme.Compile(env.deps.Profile.Snapshot()), rr.Body.String())
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/markdown"), rr.Header().Get("Content-Type"))
	assert.Empty(t, rr.Header().Get("Content-Disposition"))

	rr = env.do(t, http.MethodGet, "/readme?download=1", "")
	assert.Equal(t, `attachment; filename="README.md"`, rr.Header().Get("Content-Disposition"))

	rr = env.do(t, http.MethodGet, "/preview", "")
	expect(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), "<h1>")
}

func TestPublish_RecordsHistory(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := env.do(t, http.MethodPost, "/publish", "")
	expect(t, rr, http.StatusBadRequest)

	env.do(t, http.MethodPatch, "/profile", `{"username":"ada"}`)
	rr = env.do(t, http.MethodPost, "/publish", "")
	expect(t, rr, http.StatusOK)
	assert.Equal(t, "ghp_config", env.pusher.token, "configured token")

	rr = env.do(t, http.MethodPost, "/publish", `{"token":"ghp_override"}`)
	expect(t, rr, http.StatusOK)
	assert.Equal(t, "ghp_override", env.pusher.token)

	env.pusher.ok = false
	rr = env.do(t, http.MethodPost, "/publish", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code, "failed publish")

	rr = env.do(t, http.MethodGet, "/publishes?limit=10", "")
	expect(t, rr, http.StatusOK)
	list := decodeBody[[]storage.Publish](t, rr)
	require.Len(t, list, 3)
	assert.Equal(t, storage.PublishFailed, list[0].Status, "newest first")
}

func TestPublishes_EmptyWithoutUsername(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := env.do(t, http.MethodGet, "/publishes", "")
	expect(t, rr, http.StatusOK)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestCatalog(t *testing.T) {
	env := setupAppHandler(t, testToken)

	rr := env.do(t, http.MethodGet, "/catalog", "")
	got := decodeBody[struct {
		Categories []string             `json:"categories"`
		Levels     []profile.SkillLevel `json:"levels"`
	}](t, rr)
	assert.Len(t, got.Categories, 8)
	assert.Len(t, got.Levels, 5)
}
