package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/readmepro/internal/profile"
)

// NewMCPServer creates an MCP server exposing the profile editor as tools
// and the current profile and README as resources.
func NewMCPServer(deps AppDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"readmepro",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("readmepro edits a GitHub profile and renders it as a profile README. Edit with the tools, read the result from profile://readme."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("get_readme",
			mcp.WithDescription("Compile the current profile into GitHub-flavored Markdown."),
		),
		mcpGetReadme(deps),
	)

	s.AddTool(
		mcp.NewTool("update_profile",
			mcp.WithDescription("Set one or more identity fields. Omitted fields are left unchanged."),
			mcp.WithString("username", mcp.Description("GitHub username")),
			mcp.WithString("name", mcp.Description("Display name")),
			mcp.WithString("bio", mcp.Description("Short bio, may contain Markdown")),
			mcp.WithString("location", mcp.Description("Location line")),
			mcp.WithString("website", mcp.Description("Personal website")),
			mcp.WithString("email", mcp.Description("Contact email")),
			mcp.WithString("current_work", mcp.Description("What you are working on")),
			mcp.WithString("current_learning", mcp.Description("What you are learning")),
		),
		mcpUpdateProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("add_skill",
			mcp.WithDescription("Add a skill. Names are unique regardless of case."),
			mcp.WithString("name", mcp.Description("Skill name"), mcp.Required()),
			mcp.WithNumber("level", mcp.Description("Proficiency 0-100")),
			mcp.WithString("level_name", mcp.Description("Learning, Beginner, Intermediate, Advanced or Expert")),
			mcp.WithString("category", mcp.Description("Category label (default Other)")),
			mcp.WithString("icon", mcp.Description("Glyph shown before the name")),
		),
		mcpAddSkill(deps),
	)

	s.AddTool(
		mcp.NewTool("remove_skill",
			mcp.WithDescription("Remove a skill by id."),
			mcp.WithString("id", mcp.Description("Skill id"), mcp.Required()),
		),
		mcpRemoveSkill(deps),
	)

	s.AddTool(
		mcp.NewTool("add_gist",
			mcp.WithDescription("Add a code snippet to the gists section."),
			mcp.WithString("title", mcp.Description("Snippet title"), mcp.Required()),
			mcp.WithString("content", mcp.Description("Snippet source"), mcp.Required()),
			mcp.WithString("language", mcp.Description("Language used for the code fence")),
			mcp.WithString("description", mcp.Description("One-line description")),
			mcp.WithString("url", mcp.Description("Link to the full snippet")),
		),
		mcpAddGist(deps),
	)

	s.AddTool(
		mcp.NewTool("import_gist",
			mcp.WithDescription("Import a public GitHub gist by URL."),
			mcp.WithString("url", mcp.Description("Gist URL"), mcp.Required()),
		),
		mcpImportGist(deps),
	)

	s.AddTool(
		mcp.NewTool("remove_gist",
			mcp.WithDescription("Remove a gist by id."),
			mcp.WithString("id", mcp.Description("Gist id"), mcp.Required()),
		),
		mcpRemoveGist(deps),
	)

	s.AddTool(
		mcp.NewTool("toggle_section",
			mcp.WithDescription("Enable or disable a README section."),
			mcp.WithString("id", mcp.Description("Section id (header, about, skills, projects, gists, stats)"), mcp.Required()),
			mcp.WithBoolean("enabled", mcp.Description("Whether the section is rendered"), mcp.Required()),
		),
		mcpToggleSection(deps),
	)

	s.AddTool(
		mcp.NewTool("reorder_sections",
			mcp.WithDescription("Put sections in the given order. Unlisted sections follow in their current order."),
			mcp.WithArray("ids", mcp.Description("Section ids, first to last"), mcp.Required()),
		),
		mcpReorderSections(deps),
	)

	s.AddTool(
		mcp.NewTool("load_template",
			mcp.WithDescription("Merge a built-in template (developer, designer, student) into the profile."),
			mcp.WithString("name", mcp.Description("Template name"), mcp.Required()),
		),
		mcpLoadTemplate(deps),
	)

	s.AddTool(
		mcp.NewTool("import_github",
			mcp.WithDescription("Fill the profile from a GitHub account: name, bio, stats and top repositories."),
			mcp.WithString("username", mcp.Description("GitHub username (defaults to the profile's)")),
		),
		mcpImportGitHub(deps),
	)

	s.AddTool(
		mcp.NewTool("undo",
			mcp.WithDescription("Undo the last profile change."),
		),
		mcpUndo(deps),
	)

	s.AddTool(
		mcp.NewTool("publish",
			mcp.WithDescription("Write the compiled README to the user's GitHub profile repository."),
		),
		mcpPublish(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"profile://state",
			"Profile",
			mcp.WithResourceDescription("Current profile state as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfile(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"profile://readme",
			"README",
			mcp.WithResourceDescription("Compiled profile README"),
			mcp.WithMIMEType("text/markdown"),
		),
		mcpResourceReadme(deps),
	)

	return s
}

func mcpGetReadme(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcpText(editor{deps}.compile()), nil
	}
}

func mcpUpdateProfile(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var p profile.Patch
		fields := []struct {
			arg string
			dst **string
		}{
			{"username", &p.Username},
			{"name", &p.Name},
			{"bio", &p.Bio},
			{"location", &p.Location},
			{"website", &p.Website},
			{"email", &p.Email},
			{"current_work", &p.CurrentWork},
			{"current_learning", &p.CurrentLearning},
		}
		args := req.GetArguments()
		var changed []string
		for _, f := range fields {
			if _, ok := args[f.arg]; !ok {
				continue
			}
			v := req.GetString(f.arg, "")
			*f.dst = &v
			changed = append(changed, f.arg)
		}
		if len(changed) == 0 {
			return mcpError("no fields given"), nil
		}

		deps.Profile.Dispatch(profile.UpdateFields{Patch: p})
		return mcpText(fmt.Sprintf("Updated %v", changed)), nil
	}
}

func mcpAddSkill(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}
		in := SkillInput{
			Name:      name,
			LevelName: req.GetString("level_name", ""),
			Category:  req.GetString("category", ""),
			Icon:      req.GetString("icon", ""),
		}
		if _, ok := req.GetArguments()["level"]; ok {
			level := req.GetInt("level", defaultSkillLevel)
			in.Level = &level
		}

		sk, err := editor{deps}.addSkill(in)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to add skill: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Added skill %s (%s, %d%%)", sk.ID, sk.Name, sk.Level)), nil
	}
}

func mcpRemoveSkill(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}
		if _, err := (editor{deps}).removeSkill(id); err != nil {
			return mcpError(fmt.Sprintf("failed to remove skill: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Removed skill %s", id)), nil
	}
}

func mcpAddGist(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcpError("title is required"), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}

		g, err := editor{deps}.addGist(profile.Gist{
			Title:       title,
			Content:     content,
			Language:    req.GetString("language", ""),
			Description: req.GetString("description", ""),
			URL:         req.GetString("url", ""),
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to add gist: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Added gist %s", g.ID)), nil
	}
}

func mcpImportGist(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := req.RequireString("url")
		if err != nil {
			return mcpError("url is required"), nil
		}
		g, err := editor{deps}.importGist(ctx, url)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to import gist: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Imported gist %s (%s)", g.ID, g.Title)), nil
	}
}

func mcpRemoveGist(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}
		if _, err := (editor{deps}).removeGist(id); err != nil {
			return mcpError(fmt.Sprintf("failed to remove gist: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Removed gist %s", id)), nil
	}
}

func mcpToggleSection(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}
		enabled, err := req.RequireBool("enabled")
		if err != nil {
			return mcpError("enabled is required"), nil
		}
		if _, err := (editor{deps}).toggleSection(id, enabled); err != nil {
			return mcpError(fmt.Sprintf("failed to toggle section: %v", err)), nil
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		return mcpText(fmt.Sprintf("Section %s %s", id, state)), nil
	}
}

func mcpReorderSections(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := req.RequireStringSlice("ids")
		if err != nil || len(ids) == 0 {
			return mcpError("ids is required"), nil
		}
		secs, err := profile.MoveSectionsFirst(deps.Profile.Snapshot().Sections, ids)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to reorder sections: %v", err)), nil
		}
		if _, err := (editor{deps}).reorderSections(secs); err != nil {
			return mcpError(fmt.Sprintf("failed to reorder sections: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Sections reordered: %v", ids)), nil
	}
}

func mcpLoadTemplate(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}
		if _, err := (editor{deps}).loadTemplate(name); err != nil {
			return mcpError(fmt.Sprintf("failed to load template: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Loaded template %s", name)), nil
	}
}

func mcpImportGitHub(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s, err := editor{deps}.importGitHub(ctx, req.GetString("username", ""))
		if err != nil {
			return mcpError(fmt.Sprintf("import failed: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Imported %s: %d projects, %d repositories", s.Username, len(s.Projects), s.Stats.Repositories)), nil
	}
}

func mcpUndo(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := deps.Profile.Undo(); !ok {
			return mcpError("nothing to undo"), nil
		}
		return mcpText("Undone"), nil
	}
}

func mcpPublish(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rec, err := editor{deps}.publish(ctx, "")
		if err != nil {
			return mcpError(fmt.Sprintf("publish failed: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Published README to %s/%s (%d bytes)", rec.Username, rec.Username, rec.ContentBytes)), nil
	}
}

func mcpResourceProfile(deps AppDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Profile.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceReadme(deps AppDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     editor{deps}.compile(),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
