package profile

// State is the complete profile being edited: identity, links, skills,
// projects, snippets, stats, and the section plan that drives rendering.
type State struct {
	Username        string `json:"username" yaml:"username"`
	Name            string `json:"name" yaml:"name"`
	Bio             string `json:"bio" yaml:"bio"` // may carry inline Markdown from the editor
	Location        string `json:"location" yaml:"location"`
	Website         string `json:"website" yaml:"website"`
	Email           string `json:"email" yaml:"email"`
	CurrentWork     string `json:"currentWork" yaml:"currentWork"`
	CurrentLearning string `json:"currentLearning" yaml:"currentLearning"`

	SocialLinks    SocialLinks     `json:"socialLinks" yaml:"socialLinks"`
	Skills         []Skill         `json:"skills" yaml:"skills"`
	Projects       []Project       `json:"projects" yaml:"projects"`
	Gists          []Gist          `json:"gists" yaml:"gists"`
	Stats          Stats           `json:"stats" yaml:"stats"`
	Sections       []Section       `json:"sections" yaml:"sections"`
	CustomSections []CustomSection `json:"customSections" yaml:"customSections"`
}

// SocialLinks maps the fixed set of platforms to URLs. An empty URL means
// the platform is not set.
type SocialLinks struct {
	GitHub    string `json:"github" yaml:"github"`
	LinkedIn  string `json:"linkedin" yaml:"linkedin"`
	Twitter   string `json:"twitter" yaml:"twitter"`
	Website   string `json:"website" yaml:"website"`
	Instagram string `json:"instagram" yaml:"instagram"`
	YouTube   string `json:"youtube" yaml:"youtube"`
}

// Link is one platform/URL pair.
type Link struct {
	Platform string
	URL      string
}

// Entries returns all platforms in declaration order, including unset ones.
func (l SocialLinks) Entries() []Link {
	return []Link{
		{Platform: "github", URL: l.GitHub},
		{Platform: "linkedin", URL: l.LinkedIn},
		{Platform: "twitter", URL: l.Twitter},
		{Platform: "website", URL: l.Website},
		{Platform: "instagram", URL: l.Instagram},
		{Platform: "youtube", URL: l.YouTube},
	}
}

type Skill struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name" validate:"required"`
	Level    int    `json:"level" yaml:"level" validate:"min=0,max=100"`
	Category string `json:"category" yaml:"category"`
	Icon     string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

type Project struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	URL         string `json:"url" yaml:"url"`
	Language    string `json:"language" yaml:"language"`
	Stars       int    `json:"stars" yaml:"stars"`
	Forks       int    `json:"forks" yaml:"forks"`
	Featured    bool   `json:"featured" yaml:"featured"`
}

type Gist struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title" validate:"required"`
	Description string `json:"description" yaml:"description"`
	URL         string `json:"url" yaml:"url"`
	Language    string `json:"language" yaml:"language"`
	Content     string `json:"content" yaml:"content" validate:"required"`
}

// Stats holds GitHub counters. Followers and Following are imported but not
// rendered.
type Stats struct {
	Followers     int `json:"followers" yaml:"followers"`
	Following     int `json:"following" yaml:"following"`
	Repositories  int `json:"repositories" yaml:"repositories"`
	Contributions int `json:"contributions" yaml:"contributions"`
}

// SectionType names a block of the generated document.
type SectionType string

const (
	SectionHeader   SectionType = "header"
	SectionAbout    SectionType = "about"
	SectionSkills   SectionType = "skills"
	SectionProjects SectionType = "projects"
	SectionGists    SectionType = "gists"
	SectionStats    SectionType = "stats"
)

// SectionTypes lists every known section type.
var SectionTypes = []SectionType{
	SectionHeader, SectionAbout, SectionSkills, SectionProjects, SectionGists, SectionStats,
}

// Known reports whether t is one of the known section types.
func (t SectionType) Known() bool {
	for _, k := range SectionTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Section is one entry of the rendering plan.
type Section struct {
	ID      string      `json:"id" yaml:"id"`
	Type    SectionType `json:"type" yaml:"type"`
	Title   string      `json:"title" yaml:"title"`
	Enabled bool        `json:"enabled" yaml:"enabled"`
	Order   int         `json:"order" yaml:"order"`
}

// CustomSection is carried in the state but not rendered.
type CustomSection struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Order   int    `json:"order" yaml:"order"`
}
