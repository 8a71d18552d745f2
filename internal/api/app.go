package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/readmepro/internal/metrics"
	"github.com/kalambet/readmepro/internal/preview"
	"github.com/kalambet/readmepro/internal/profile"
	"github.com/kalambet/readmepro/internal/readme"
	"github.com/kalambet/readmepro/internal/storage"
)

type AppDeps struct {
	Profile   *profile.Manager
	GitHub    GitHubClient      // optional; import and stats return an error without it
	Publisher Publisher         // optional
	History   PublishHistory    // optional; GET /publishes returns an empty list without it
	Metrics   *metrics.Recorder // optional; /metrics is not mounted without it
	Token     string

	GitHubToken     string
	DefaultUsername string
	ReposPerPage    int
	ImportLimit     int
}

// NewAppHandler returns the editor API. /health and /metrics are public,
// every other route requires the bearer token.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Get("/profile", handleGetProfile(deps))
		r.Patch("/profile", handlePatchProfile(deps))
		r.Post("/reset", handleReset(deps))
		r.Post("/undo", handleUndo(deps))
		r.Post("/redo", handleRedo(deps))
		r.Get("/history", handleHistory(deps))

		r.Post("/skills", handleAddSkill(deps))
		r.Patch("/skills/{id}", handleUpdateSkill(deps))
		r.Delete("/skills/{id}", handleRemoveSkill(deps))

		r.Post("/gists", handleAddGist(deps))
		r.Post("/gists/import", handleImportGist(deps))
		r.Get("/gists/{id}/snippet", handleGistSnippet(deps))
		r.Delete("/gists/{id}", handleRemoveGist(deps))

		r.Patch("/sections/{id}", handleToggleSection(deps))
		r.Put("/sections", handleReorderSections(deps))

		r.Get("/templates", handleListTemplates)
		r.Post("/templates/{name}", handleLoadTemplate(deps))
		r.Get("/catalog", handleCatalog)

		r.Post("/import", handleImport(deps))
		r.Get("/stats/languages", handleLanguageStats(deps))

		r.Get("/readme", handleReadme(deps))
		r.Get("/preview", handlePreview(deps))
		r.Post("/publish", handlePublish(deps))
		r.Get("/publishes", handleListPublishes(deps))
	})

	return r
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Profile.Snapshot())
	}
}

func handlePatchProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p profile.Patch
		if !decodeBody(w, r, &p) {
			return
		}
		if p.Sections != nil {
			if err := profile.ValidateSections(*p.Sections); err != nil {
				writeErr(w, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, deps.Profile.Dispatch(profile.UpdateFields{Patch: p}))
	}
}

func handleReset(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Profile.Dispatch(profile.Reset{}))
	}
}

func handleUndo(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := deps.Profile.Undo()
		if !ok {
			httpError(w, http.StatusConflict, "invalid_request_error", "nothing to undo")
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func handleRedo(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := deps.Profile.Redo()
		if !ok {
			httpError(w, http.StatusConflict, "invalid_request_error", "nothing to redo")
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func handleHistory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		undo, redo := deps.Profile.History()
		writeJSON(w, http.StatusOK, map[string]int{"undo": undo, "redo": redo})
	}
}

func handleAddSkill(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in SkillInput
		if !decodeBody(w, r, &in) {
			return
		}
		sk, err := editor{deps}.addSkill(in)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sk)
	}
}

func handleUpdateSkill(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p profile.SkillPatch
		if !decodeBody(w, r, &p) {
			return
		}
		s, err := editor{deps}.updateSkill(chi.URLParam(r, "id"), p)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func handleRemoveSkill(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := (editor{deps}).removeSkill(chi.URLParam(r, "id")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleAddGist(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in GistInput
		if !decodeBody(w, r, &in) {
			return
		}
		g, err := editor{deps}.addGist(profile.Gist{
			Title:       in.Title,
			Description: in.Description,
			URL:         in.URL,
			Language:    in.Language,
			Content:     in.Content,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	}
}

func handleImportGist(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.URL == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "url is required")
			return
		}
		g, err := editor{deps}.importGist(r.Context(), req.URL)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	}
}

func handleGistSnippet(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		for _, g := range deps.Profile.Snapshot().Gists {
			if g.ID == id {
				w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
				w.Write([]byte(readme.GistSnippet(g)))
				return
			}
		}
		httpError(w, http.StatusNotFound, "not_found", "gist %q not found", id)
	}
}

func handleRemoveGist(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := (editor{deps}).removeGist(chi.URLParam(r, "id")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleToggleSection(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Enabled *bool `json:"enabled"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Enabled == nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "enabled is required")
			return
		}
		s, err := editor{deps}.toggleSection(chi.URLParam(r, "id"), *req.Enabled)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func handleReorderSections(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var secs []profile.Section
		if !decodeBody(w, r, &secs) {
			return
		}
		s, err := editor{deps}.reorderSections(secs)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func handleListTemplates(w http.ResponseWriter, r *http.Request) {
	ts, err := profile.Templates()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func handleLoadTemplate(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := editor{deps}.loadTemplate(chi.URLParam(r, "name"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":  profile.SkillCategories,
		"levels":      profile.SkillLevels,
		"defaultIcon": profile.DefaultSkillIcon,
	})
}

func handleImport(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
		}
		if r.ContentLength != 0 && !decodeBody(w, r, &req) {
			return
		}
		s, err := editor{deps}.importGitHub(r.Context(), req.Username)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func handleLanguageStats(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := editor{deps}.languageStats(r.Context(), r.URL.Query().Get("username"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func handleReadme(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		md := editor{deps}.compile()
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		if download, _ := strconv.ParseBool(r.URL.Query().Get("download")); download {
			w.Header().Set("Content-Disposition", `attachment; filename="README.md"`)
		}
		w.Write([]byte(md))
	}
}

func handlePreview(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		html, err := preview.HTML(editor{deps}.compile())
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}
}

func handlePublish(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token string `json:"token"`
		}
		if r.ContentLength != 0 && !decodeBody(w, r, &req) {
			return
		}
		rec, err := editor{deps}.publish(r.Context(), req.Token)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleListPublishes(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		username := editor{deps}.username(r.URL.Query().Get("username"), deps.Profile.Snapshot())

		list := []storage.Publish{}
		if deps.History != nil && username != "" {
			var err error
			list, err = deps.History.ListPublishes(username, limit)
			if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "listing publishes: %v", err)
				return
			}
		}
		writeJSON(w, http.StatusOK, list)
	}
}
