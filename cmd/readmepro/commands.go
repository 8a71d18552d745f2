package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/readmepro/internal/config"
	"github.com/kalambet/readmepro/internal/github"
	"github.com/kalambet/readmepro/internal/preview"
	"github.com/kalambet/readmepro/internal/profile"
	"github.com/kalambet/readmepro/internal/storage"
)

// profileFields maps CLI field names onto the profile's JSON keys.
var profileFields = map[string]string{
	"username":         "username",
	"name":             "name",
	"bio":              "bio",
	"location":         "location",
	"website":          "website",
	"email":            "email",
	"current-work":     "currentWork",
	"current-learning": "currentLearning",
}

var socialPlatforms = []string{"github", "linkedin", "twitter", "website", "instagram", "youtube"}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit the profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profile")
		if err != nil {
			return err
		}

		var s any
		if err := decodeJSON(resp, &s); err != nil {
			return err
		}
		return printJSON(os.Stdout, s)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set a profile field (name, bio, location, current-work, social.github, ...)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, value := args[0], args[1]

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body, err := fieldPatch(cmd, client, field, value)
		if err != nil {
			return err
		}
		resp, err := client.patch(cmd.Context(), "/profile", body)
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}

		printSuccess("Set %s = %s", field, value)
		return nil
	},
}

// fieldPatch builds the PATCH body for one field. Social links are replaced
// as a whole object, so the current links are fetched and one is changed.
func fieldPatch(cmd *cobra.Command, client *apiClient, field, value string) (map[string]any, error) {
	if key, ok := profileFields[field]; ok {
		return map[string]any{key: value}, nil
	}

	platform, ok := strings.CutPrefix(field, "social.")
	if !ok || !contains(socialPlatforms, platform) {
		return nil, fmt.Errorf("unknown field %q (valid: %s, social.<%s>)",
			field, strings.Join(sortedKeys(profileFields), ", "), strings.Join(socialPlatforms, "|"))
	}

	resp, err := client.get(cmd.Context(), "/profile")
	if err != nil {
		return nil, err
	}
	var current struct {
		SocialLinks map[string]string `json:"socialLinks"`
	}
	if err := decodeJSON(resp, &current); err != nil {
		return nil, err
	}
	if current.SocialLinks == nil {
		current.SocialLinks = map[string]string{}
	}
	current.SocialLinks[platform] = value
	return map[string]any{"socialLinks": current.SocialLinks}, nil
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open profile JSON in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profile")
		if err != nil {
			return err
		}

		var s any
		if err := decodeJSON(resp, &s); err != nil {
			return err
		}

		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}

		tmpFile, err := os.CreateTemp("", "readmepro-profile-*.json")
		if err != nil {
			return fmt.Errorf("creating temp file: %w", err)
		}
		tmpPath := tmpFile.Name()
		defer os.Remove(tmpPath)

		if _, err := tmpFile.Write(data); err != nil {
			tmpFile.Close()
			return err
		}
		tmpFile.Close()

		editorCmd := exec.Command(editor, tmpPath)
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr
		if err := editorCmd.Run(); err != nil {
			return fmt.Errorf("editor exited with error: %w", err)
		}

		edited, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		var fields map[string]any
		if err := json.Unmarshal(edited, &fields); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}

		patchResp, err := client.patch(cmd.Context(), "/profile", fields)
		if err != nil {
			return err
		}
		if err := decodeJSON(patchResp, nil); err != nil {
			return err
		}

		printSuccess("Profile updated")
		return nil
	},
}

var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the empty starting profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return postAndReport(cmd, "/reset", "Profile reset (undo with `readmepro profile undo`)")
	},
}

var profileUndoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the last change",
	RunE: func(cmd *cobra.Command, args []string) error {
		return postAndReport(cmd, "/undo", "Undone")
	},
}

var profileRedoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Redo the last undone change",
	RunE: func(cmd *cobra.Command, args []string) error {
		return postAndReport(cmd, "/redo", "Redone")
	},
}

func postAndReport(cmd *cobra.Command, path, msg string) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	resp, err := client.post(cmd.Context(), path, nil)
	if err != nil {
		return err
	}
	if err := decodeJSON(resp, nil); err != nil {
		return err
	}
	printSuccess("%s", msg)
	return nil
}

func init() {
	profileCmd.AddCommand(profileShowCmd, profileSetCmd, profileEditCmd, profileResetCmd, profileUndoCmd, profileRedoCmd)
}

// --- skills ---

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Manage skills",
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := fetchProfile(cmd)
		if err != nil {
			return err
		}
		if len(s.Skills) == 0 {
			fmt.Println("No skills yet.")
			return nil
		}
		for _, sk := range s.Skills {
			fmt.Printf("%s  %s %-20s %3d%%  %s\n",
				colorize(colorCyan, shortID(sk.ID)), sk.Icon, sk.Name, sk.Level, sk.Category)
		}
		return nil
	},
}

var skillAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a skill",
	Long: `Add a skill. The level is a number from 0 to 100 or one of
Learning, Beginner, Intermediate, Advanced, Expert.

Examples:
  readmepro skill add Go --level expert --category Backend
  readmepro skill add "Tailwind" --level 70 --category Frontend`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("level")
		category, _ := cmd.Flags().GetString("category")
		icon, _ := cmd.Flags().GetString("icon")

		body := map[string]any{"name": args[0]}
		if level != "" {
			if n, err := strconv.Atoi(level); err == nil {
				body["level"] = n
			} else {
				body["levelName"] = level
			}
		}
		if category != "" {
			body["category"] = category
		}
		if icon != "" {
			body["icon"] = icon
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/skills", body)
		if err != nil {
			return err
		}
		var sk profile.Skill
		if err := decodeJSON(resp, &sk); err != nil {
			return err
		}
		printSuccess("Added %s %s (%d%%) [%s]", sk.Icon, sk.Name, sk.Level, shortID(sk.ID))
		return nil
	},
}

var skillUpdateCmd = &cobra.Command{
	Use:   "update <id-or-name>",
	Short: "Change a skill's name, level, category or icon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{}
		for _, f := range []string{"name", "category", "icon"} {
			if cmd.Flags().Changed(f) {
				v, _ := cmd.Flags().GetString(f)
				body[f] = v
			}
		}
		if cmd.Flags().Changed("level") {
			v, _ := cmd.Flags().GetString("level")
			n, err := parseLevel(v)
			if err != nil {
				return err
			}
			body["level"] = n
		}
		if len(body) == 0 {
			return fmt.Errorf("nothing to update: pass --name, --level, --category or --icon")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		id, err := resolveSkill(cmd, client, args[0])
		if err != nil {
			return err
		}
		resp, err := client.patch(cmd.Context(), "/skills/"+url.PathEscape(id), body)
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("Updated skill %s", shortID(id))
		return nil
	},
}

var skillRemoveCmd = &cobra.Command{
	Use:     "rm <id-or-name>",
	Aliases: []string{"remove"},
	Short:   "Remove a skill",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		id, err := resolveSkill(cmd, client, args[0])
		if err != nil {
			return err
		}
		resp, err := client.delete(cmd.Context(), "/skills/"+url.PathEscape(id))
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("Removed skill %s", args[0])
		return nil
	},
}

// parseLevel accepts a number or a named level.
func parseLevel(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	if n, ok := profile.LevelByName(v); ok {
		return n, nil
	}
	return 0, fmt.Errorf("invalid level %q", v)
}

// resolveSkill accepts a full id, an id prefix, or a case-insensitive name.
func resolveSkill(cmd *cobra.Command, client *apiClient, ref string) (string, error) {
	s, err := fetchProfileWith(cmd, client)
	if err != nil {
		return "", err
	}
	var match []string
	for _, sk := range s.Skills {
		if sk.ID == ref || strings.EqualFold(sk.Name, ref) {
			return sk.ID, nil
		}
		if strings.HasPrefix(sk.ID, ref) {
			match = append(match, sk.ID)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return "", fmt.Errorf("no skill matches %q", ref)
	default:
		return "", fmt.Errorf("%q matches %d skills", ref, len(match))
	}
}

func init() {
	skillAddCmd.Flags().String("level", "", "level 0-100 or a named level (default Intermediate)")
	skillAddCmd.Flags().String("category", "", "category (default Other)")
	skillAddCmd.Flags().String("icon", "", "icon glyph (default from the catalog)")
	skillUpdateCmd.Flags().String("name", "", "new name")
	skillUpdateCmd.Flags().String("level", "", "level 0-100 or a named level")
	skillUpdateCmd.Flags().String("category", "", "new category")
	skillUpdateCmd.Flags().String("icon", "", "new icon")
	skillCmd.AddCommand(skillListCmd, skillAddCmd, skillUpdateCmd, skillRemoveCmd)
}

// --- gists ---

var gistCmd = &cobra.Command{
	Use:   "gist",
	Short: "Manage code snippets",
}

var gistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List gists",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := fetchProfile(cmd)
		if err != nil {
			return err
		}
		if len(s.Gists) == 0 {
			fmt.Println("No gists yet.")
			return nil
		}
		for _, g := range s.Gists {
			fmt.Printf("%s  %-30s %s\n", colorize(colorCyan, shortID(g.ID)), g.Title, g.Language)
		}
		return nil
	},
}

var gistAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a snippet from a file or stdin",
	Long: `Add a snippet from a file or stdin.

Examples:
  readmepro gist add "Retry helper" --file retry.go --language Go
  pbpaste | readmepro gist add "One-liner" --language Bash`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		language, _ := cmd.Flags().GetString("language")
		description, _ := cmd.Flags().GetString("description")
		link, _ := cmd.Flags().GetString("url")

		var content []byte
		var err error
		if file != "" {
			content, err = os.ReadFile(file)
		} else {
			content, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("reading snippet: %w", err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/gists", map[string]any{
			"title":       args[0],
			"content":     string(content),
			"language":    language,
			"description": description,
			"url":         link,
		})
		if err != nil {
			return err
		}
		var g profile.Gist
		if err := decodeJSON(resp, &g); err != nil {
			return err
		}
		printSuccess("Added gist %s [%s]", g.Title, shortID(g.ID))
		return nil
	},
}

var gistImportCmd = &cobra.Command{
	Use:   "import <gist-url>",
	Short: "Import a public GitHub gist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := github.ParseGistID(args[0]); err != nil {
			return err
		}
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		printStep("Fetching gist...")
		resp, err := client.post(cmd.Context(), "/gists/import", map[string]string{"url": args[0]})
		if err != nil {
			return err
		}
		var g profile.Gist
		if err := decodeJSON(resp, &g); err != nil {
			return err
		}
		printSuccess("Imported %s (%s)", g.Title, g.Language)
		return nil
	},
}

var gistRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a gist",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		id, err := resolveGist(cmd, client, args[0])
		if err != nil {
			return err
		}
		resp, err := client.delete(cmd.Context(), "/gists/"+url.PathEscape(id))
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("Removed gist %s", shortID(id))
		return nil
	},
}

var gistSnippetCmd = &cobra.Command{
	Use:   "snippet <id>",
	Short: "Print a gist as a Markdown snippet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		id, err := resolveGist(cmd, client, args[0])
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/gists/"+url.PathEscape(id)+"/snippet")
		if err != nil {
			return err
		}
		md, err := readText(resp)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func resolveGist(cmd *cobra.Command, client *apiClient, ref string) (string, error) {
	s, err := fetchProfileWith(cmd, client)
	if err != nil {
		return "", err
	}
	var match []string
	for _, g := range s.Gists {
		if g.ID == ref {
			return g.ID, nil
		}
		if strings.HasPrefix(g.ID, ref) {
			match = append(match, g.ID)
		}
	}
	if len(match) != 1 {
		return "", fmt.Errorf("no single gist matches %q", ref)
	}
	return match[0], nil
}

func init() {
	gistAddCmd.Flags().String("file", "", "read the snippet from a file (default: stdin)")
	gistAddCmd.Flags().String("language", "", "language for the code fence")
	gistAddCmd.Flags().String("description", "", "one-line description")
	gistAddCmd.Flags().String("url", "", "link to the full snippet")
	gistCmd.AddCommand(gistListCmd, gistAddCmd, gistImportCmd, gistRemoveCmd, gistSnippetCmd)
}

// --- sections ---

var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Enable, disable or reorder README sections",
}

var sectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sections in render order",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := fetchProfile(cmd)
		if err != nil {
			return err
		}
		secs := append([]profile.Section(nil), s.Sections...)
		sort.SliceStable(secs, func(i, j int) bool { return secs[i].Order < secs[j].Order })
		for _, sec := range secs {
			mark := colorize(colorGreen, "on ")
			if !sec.Enabled {
				mark = colorize(colorYellow, "off")
			}
			fmt.Printf("%2d  %s  %-10s %s\n", sec.Order, mark, sec.ID, sec.Title)
		}
		return nil
	},
}

func sectionToggleCmd(use string, enabled bool) *cobra.Command {
	verb := "Disable"
	if enabled {
		verb = "Enable"
	}
	return &cobra.Command{
		Use:   use + " <id>",
		Short: verb + " a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			resp, err := client.patch(cmd.Context(), "/sections/"+url.PathEscape(args[0]), map[string]bool{"enabled": enabled})
			if err != nil {
				return err
			}
			if err := decodeJSON(resp, nil); err != nil {
				return err
			}
			printSuccess("%sd section %s", verb, args[0])
			return nil
		},
	}
}

var sectionOrderCmd = &cobra.Command{
	Use:   "order <id>...",
	Short: "Put sections first, in the given order",
	Long: `Put the named sections first, in the given order. Sections not named
keep their relative order after them.

Example:
  readmepro section order header skills projects`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		s, err := fetchProfileWith(cmd, client)
		if err != nil {
			return err
		}
		secs, err := profile.MoveSectionsFirst(s.Sections, args)
		if err != nil {
			return err
		}
		resp, err := client.put(cmd.Context(), "/sections", secs)
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("Sections reordered")
		return nil
	},
}

func init() {
	sectionCmd.AddCommand(sectionListCmd, sectionToggleCmd("enable", true), sectionToggleCmd("disable", false), sectionOrderCmd)
}

// --- templates ---

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "List or load built-in profile templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := profile.Templates()
		if err != nil {
			return err
		}
		for _, t := range ts {
			fmt.Printf("%s  %s\n", colorize(colorBold, fmt.Sprintf("%-10s", t.Name)), t.Description)
		}
		return nil
	},
}

var templateLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Merge a template into the profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return postAndReport(cmd, "/templates/"+url.PathEscape(args[0]), "Loaded template "+args[0])
	},
}

func init() {
	templateCmd.AddCommand(templateListCmd, templateLoadCmd)
}

// --- github ---

var importCmd = &cobra.Command{
	Use:   "import [username]",
	Short: "Fill the profile from a GitHub account",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{}
		if len(args) == 1 {
			body["username"] = args[0]
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		printStep("Fetching GitHub profile and repositories...")
		resp, err := client.post(cmd.Context(), "/import", body)
		if err != nil {
			return err
		}
		var s profile.State
		if err := decodeJSON(resp, &s); err != nil {
			return err
		}
		featured := 0
		for _, p := range s.Projects {
			if p.Featured {
				featured++
			}
		}
		printSuccess("Imported %s: %d projects (%d featured), %d repositories, %d followers",
			s.Username, len(s.Projects), featured, s.Stats.Repositories, s.Stats.Followers)
		return nil
	},
}

var languagesCmd = &cobra.Command{
	Use:   "languages [username]",
	Short: "Show language usage across a user's repositories",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/stats/languages"
		if len(args) == 1 {
			path += "?username=" + url.QueryEscape(args[0])
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		printStep("Collecting repository languages...")
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}
		var stats map[string]github.LanguageStat
		if err := decodeJSON(resp, &stats); err != nil {
			return err
		}
		printLanguageStats(cmd, stats)
		return nil
	},
}

func printLanguageStats(cmd *cobra.Command, stats map[string]github.LanguageStat) {
	langs := make([]string, 0, len(stats))
	var total int64
	for l, st := range stats {
		langs = append(langs, l)
		total += st.Bytes
	}
	sort.Slice(langs, func(i, j int) bool {
		if stats[langs[i]].Bytes != stats[langs[j]].Bytes {
			return stats[langs[i]].Bytes > stats[langs[j]].Bytes
		}
		return langs[i] < langs[j]
	})
	out := cmd.OutOrStdout()
	if len(langs) == 0 {
		fmt.Fprintln(out, "No languages found.")
		return
	}
	for _, l := range langs {
		st := stats[l]
		pct := 0.0
		if total > 0 {
			pct = float64(st.Bytes) * 100 / float64(total)
		}
		fmt.Fprintf(out, "%-16s %5.1f%%  %3d repos\n", l, pct, st.Count)
	}
}

// --- readme ---

var readmeCmd = &cobra.Command{
	Use:   "readme",
	Short: "Print or save the compiled README",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		md, err := fetchReadme(cmd)
		if err != nil {
			return err
		}
		if output == "" {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		if err := os.WriteFile(output, []byte(md), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		printSuccess("README written to %s", output)
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the README in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		md, err := fetchReadme(cmd)
		if err != nil {
			return err
		}
		out, err := preview.Terminal(md, previewStyle(cfg), cfg.Preview.Width)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

// previewStyle honours --no-color by switching glamour to plain output.
func previewStyle(cfg config.Config) string {
	if noColor {
		return "notty"
	}
	return cfg.Preview.Style
}

func fetchReadme(cmd *cobra.Command) (string, error) {
	client, err := newAPIClient()
	if err != nil {
		return "", err
	}
	resp, err := client.get(cmd.Context(), "/readme")
	if err != nil {
		return "", err
	}
	return readText(resp)
}

func init() {
	readmeCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
}

// --- publish ---

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Write the README to your GitHub profile repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		s, err := fetchProfileWith(cmd, client)
		if err != nil {
			return err
		}
		if s.Username == "" {
			return fmt.Errorf("profile has no GitHub username; run `readmepro profile set username <name>`")
		}
		if !yes && !confirm(cmd, fmt.Sprintf("Publish README.md to %s/%s?", s.Username, s.Username)) {
			printWarning("Publish cancelled")
			return nil
		}

		printStep("Publishing to %s/%s...", s.Username, s.Username)
		resp, err := client.post(cmd.Context(), "/publish", nil)
		if err != nil {
			return err
		}
		var rec storage.Publish
		if err := decodeJSON(resp, &rec); err != nil {
			if strings.Contains(err.Error(), "no GitHub token") {
				printWarning("%s", config.MissingTokenHint())
			}
			return err
		}
		printSuccess("Published %d bytes to https://github.com/%s", rec.ContentBytes, rec.Username)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past publish attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), fmt.Sprintf("/publishes?limit=%d", limit))
		if err != nil {
			return err
		}
		var list []storage.Publish
		if err := decodeJSON(resp, &list); err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No publishes yet.")
			return nil
		}
		for _, p := range list {
			status := colorize(colorGreen, p.Status)
			if p.Status != storage.PublishSucceeded {
				status = colorize(colorRed, p.Status)
			}
			fmt.Printf("%s  %s  %-7s  %6d bytes  %s\n",
				colorize(colorCyan, shortID(p.ID)),
				p.CreatedAt.Local().Format("2006-01-02 15:04"),
				status, p.ContentBytes, shortID(p.ContentSHA256))
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	historyCmd.Flags().Int("limit", 20, "maximum number of entries")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configSetTokenCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Store a GitHub token in the secret store (read from stdin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, "GitHub token: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading token: %w", err)
		}
		if err := config.SetGitHubToken(config.NewKeychain(), line); err != nil {
			return err
		}
		printSuccess("GitHub token stored; restart the server to use it")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configSetTokenCmd)
}

// --- helpers ---

func fetchProfile(cmd *cobra.Command) (profile.State, error) {
	client, err := newAPIClient()
	if err != nil {
		return profile.State{}, err
	}
	return fetchProfileWith(cmd, client)
}

func fetchProfileWith(cmd *cobra.Command, client *apiClient) (profile.State, error) {
	resp, err := client.get(cmd.Context(), "/profile")
	if err != nil {
		return profile.State{}, err
	}
	var s profile.State
	if err := decodeJSON(resp, &s); err != nil {
		return profile.State{}, err
	}
	return s, nil
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
