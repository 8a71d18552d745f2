package profile

import "strings"

// DefaultSkillIcon is used when a skill has no icon of its own.
const DefaultSkillIcon = "🔧"

// SkillCategories are the categories offered by the editor. Category is free
// text in the state; this list only seeds pickers.
var SkillCategories = []string{"Frontend", "Backend", "Database", "DevOps", "Mobile", "Design", "Testing", "Other"}

// SkillLevel is a named proficiency and its bar value.
type SkillLevel struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

var SkillLevels = []SkillLevel{
	{Name: "Learning", Level: 20},
	{Name: "Beginner", Level: 40},
	{Name: "Intermediate", Level: 60},
	{Name: "Advanced", Level: 80},
	{Name: "Expert", Level: 100},
}

// LevelByName resolves a named level case-insensitively.
func LevelByName(name string) (int, bool) {
	for _, l := range SkillLevels {
		if strings.EqualFold(l.Name, name) {
			return l.Level, true
		}
	}
	return 0, false
}

var skillIcons = map[string]string{
	"JavaScript": "🟨",
	"TypeScript": "🔷",
	"React":      "⚛️",
	"Vue":        "💚",
	"Angular":    "🔴",
	"HTML":       "🌐",
	"CSS":        "🎨",
	"SASS":       "💅",
	"Tailwind":   "🌊",
	"Bootstrap":  "🅱️",

	"Node.js": "💚",
	"Python":  "🐍",
	"Java":    "☕",
	"C++":     "⚡",
	"Go":      "🐹",
	"Rust":    "🦀",
	"PHP":     "🐘",
	"Ruby":    "💎",
	"Swift":   "🍎",
	"Kotlin":  "🎯",

	"MongoDB":    "🍃",
	"PostgreSQL": "🐘",
	"MySQL":      "🐬",
	"Redis":      "🔴",
	"SQLite":     "📊",

	"Docker":     "🐳",
	"Kubernetes": "☸️",
	"AWS":        "☁️",
	"Firebase":   "🔥",
	"Git":        "📚",
	"Linux":      "🐧",
	"Jenkins":    "🔧",
	"Terraform":  "🏗️",

	"React Native": "📱",
	"Flutter":      "🦋",
	"iOS":          "🍎",
	"Android":      "🤖",

	"Figma":       "🎨",
	"Photoshop":   "🖼️",
	"Illustrator": "✏️",
	"Sketch":      "📐",
}

// IconFor returns the catalog icon for a skill name (exact match), or
// DefaultSkillIcon.
func IconFor(name string) string {
	if icon, ok := skillIcons[name]; ok {
		return icon
	}
	return DefaultSkillIcon
}
