package profile

// Initial returns the fixed starting state: empty identity, no skills,
// projects or gists, and the default six-section plan with gists disabled.
func Initial() State {
	return State{
		Skills:   []Skill{},
		Projects: []Project{},
		Gists:    []Gist{},
		Sections: []Section{
			{ID: "header", Type: SectionHeader, Title: "Header", Enabled: true, Order: 0},
			{ID: "about", Type: SectionAbout, Title: "About Me", Enabled: true, Order: 1},
			{ID: "skills", Type: SectionSkills, Title: "Skills", Enabled: true, Order: 2},
			{ID: "projects", Type: SectionProjects, Title: "Projects", Enabled: true, Order: 3},
			{ID: "gists", Type: SectionGists, Title: "Code Snippets", Enabled: false, Order: 4},
			{ID: "stats", Type: SectionStats, Title: "GitHub Stats", Enabled: true, Order: 5},
		},
		CustomSections: []CustomSection{},
	}
}

// Patch is a partial State. Nil fields are left untouched when merged.
// Nested objects (SocialLinks, Stats) and slices replace the current value
// wholesale, so callers changing one link must resubmit the full object.
type Patch struct {
	Username        *string `json:"username,omitempty" yaml:"username,omitempty"`
	Name            *string `json:"name,omitempty" yaml:"name,omitempty"`
	Bio             *string `json:"bio,omitempty" yaml:"bio,omitempty"`
	Location        *string `json:"location,omitempty" yaml:"location,omitempty"`
	Website         *string `json:"website,omitempty" yaml:"website,omitempty"`
	Email           *string `json:"email,omitempty" yaml:"email,omitempty"`
	CurrentWork     *string `json:"currentWork,omitempty" yaml:"currentWork,omitempty"`
	CurrentLearning *string `json:"currentLearning,omitempty" yaml:"currentLearning,omitempty"`

	SocialLinks    *SocialLinks     `json:"socialLinks,omitempty" yaml:"socialLinks,omitempty"`
	Skills         *[]Skill         `json:"skills,omitempty" yaml:"skills,omitempty"`
	Projects       *[]Project       `json:"projects,omitempty" yaml:"projects,omitempty"`
	Gists          *[]Gist          `json:"gists,omitempty" yaml:"gists,omitempty"`
	Stats          *Stats           `json:"stats,omitempty" yaml:"stats,omitempty"`
	Sections       *[]Section       `json:"sections,omitempty" yaml:"sections,omitempty"`
	CustomSections *[]CustomSection `json:"customSections,omitempty" yaml:"customSections,omitempty"`
}

// PatchFrom builds a Patch that sets every field of s.
func PatchFrom(s State) Patch {
	s = s.Clone()
	return Patch{
		Username:        &s.Username,
		Name:            &s.Name,
		Bio:             &s.Bio,
		Location:        &s.Location,
		Website:         &s.Website,
		Email:           &s.Email,
		CurrentWork:     &s.CurrentWork,
		CurrentLearning: &s.CurrentLearning,
		SocialLinks:     &s.SocialLinks,
		Skills:          &s.Skills,
		Projects:        &s.Projects,
		Gists:           &s.Gists,
		Stats:           &s.Stats,
		Sections:        &s.Sections,
		CustomSections:  &s.CustomSections,
	}
}

func (p Patch) mergeInto(s *State) {
	setString(&s.Username, p.Username)
	setString(&s.Name, p.Name)
	setString(&s.Bio, p.Bio)
	setString(&s.Location, p.Location)
	setString(&s.Website, p.Website)
	setString(&s.Email, p.Email)
	setString(&s.CurrentWork, p.CurrentWork)
	setString(&s.CurrentLearning, p.CurrentLearning)
	if p.SocialLinks != nil {
		s.SocialLinks = *p.SocialLinks
	}
	if p.Skills != nil {
		s.Skills = append([]Skill{}, (*p.Skills)...)
	}
	if p.Projects != nil {
		s.Projects = append([]Project{}, (*p.Projects)...)
	}
	if p.Gists != nil {
		s.Gists = append([]Gist{}, (*p.Gists)...)
	}
	if p.Stats != nil {
		s.Stats = *p.Stats
	}
	if p.Sections != nil {
		s.Sections = append([]Section{}, (*p.Sections)...)
	}
	if p.CustomSections != nil {
		s.CustomSections = append([]CustomSection{}, (*p.CustomSections)...)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// SkillPatch is a partial Skill used by UpdateSkill.
type SkillPatch struct {
	Name     *string `json:"name,omitempty"`
	Level    *int    `json:"level,omitempty"`
	Category *string `json:"category,omitempty"`
	Icon     *string `json:"icon,omitempty"`
}

// Clone returns a deep copy of s; slices are never shared with the original.
func (s State) Clone() State {
	cp := s
	cp.Skills = cloneSlice(s.Skills)
	cp.Projects = cloneSlice(s.Projects)
	cp.Gists = cloneSlice(s.Gists)
	cp.Sections = cloneSlice(s.Sections)
	cp.CustomSections = cloneSlice(s.CustomSections)
	return cp
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// Action is one of the closed set of profile mutations.
type Action interface {
	// Name identifies the action in logs and the HTTP API.
	Name() string
	apply(s *State)
}

// Reduce applies a to a copy of s and returns the copy. s is never modified.
// Actions referring to unknown ids leave the state unchanged.
func Reduce(s State, a Action) State {
	next := s.Clone()
	if a != nil {
		a.apply(&next)
	}
	return next
}

// UpdateFields merges a partial state into the current one.
type UpdateFields struct{ Patch Patch }

func (UpdateFields) Name() string { return "update_profile" }
func (a UpdateFields) apply(s *State) { a.Patch.mergeInto(s) }

// AddSkill appends a skill without checking for duplicates.
type AddSkill struct{ Skill Skill }

func (AddSkill) Name() string { return "add_skill" }
func (a AddSkill) apply(s *State) { s.Skills = append(s.Skills, a.Skill) }

// RemoveSkill drops the skill with the given id.
type RemoveSkill struct{ ID string }

func (RemoveSkill) Name() string { return "remove_skill" }
func (a RemoveSkill) apply(s *State) {
	s.Skills = filter(s.Skills, func(sk Skill) bool { return sk.ID != a.ID })
}

// UpdateSkill merges a partial skill into the skill with the given id.
type UpdateSkill struct {
	ID    string
	Patch SkillPatch
}

func (UpdateSkill) Name() string { return "update_skill" }
func (a UpdateSkill) apply(s *State) {
	for i := range s.Skills {
		if s.Skills[i].ID != a.ID {
			continue
		}
		setString(&s.Skills[i].Name, a.Patch.Name)
		setString(&s.Skills[i].Category, a.Patch.Category)
		setString(&s.Skills[i].Icon, a.Patch.Icon)
		if a.Patch.Level != nil {
			s.Skills[i].Level = *a.Patch.Level
		}
	}
}

// AddGist appends a gist.
type AddGist struct{ Gist Gist }

func (AddGist) Name() string { return "add_gist" }
func (a AddGist) apply(s *State) { s.Gists = append(s.Gists, a.Gist) }

// RemoveGist drops the gist with the given id.
type RemoveGist struct{ ID string }

func (RemoveGist) Name() string { return "remove_gist" }
func (a RemoveGist) apply(s *State) {
	s.Gists = filter(s.Gists, func(g Gist) bool { return g.ID != a.ID })
}

// ToggleSection sets the enabled flag of the section with the given id.
type ToggleSection struct {
	ID      string
	Enabled bool
}

func (ToggleSection) Name() string { return "toggle_section" }
func (a ToggleSection) apply(s *State) {
	for i := range s.Sections {
		if s.Sections[i].ID == a.ID {
			s.Sections[i].Enabled = a.Enabled
		}
	}
}

// ReorderSections replaces the section plan wholesale.
type ReorderSections struct{ Sections []Section }

func (ReorderSections) Name() string { return "reorder_sections" }
func (a ReorderSections) apply(s *State) {
	s.Sections = append([]Section{}, a.Sections...)
}

// LoadTemplate merges a full or partial state, same as UpdateFields.
type LoadTemplate struct{ Patch Patch }

func (LoadTemplate) Name() string { return "load_template" }
func (a LoadTemplate) apply(s *State) { a.Patch.mergeInto(s) }

// Reset restores the initial state.
type Reset struct{}

func (Reset) Name() string { return "reset_profile" }
func (Reset) apply(s *State) { *s = Initial() }

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
