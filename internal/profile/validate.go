package profile

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid marks input rejected by caller-side validation. The reducer
// itself accepts anything; these checks belong to whoever builds actions
// from user input.
var ErrInvalid = errors.New("invalid input")

var validate = validator.New()

// ValidateNewSkill checks a skill before it is dispatched with AddSkill:
// the name is required and must not already exist (case-insensitively),
// and the level must be within 0..100.
func ValidateNewSkill(s State, sk Skill) error {
	sk.Name = strings.TrimSpace(sk.Name)
	if err := validate.Struct(sk); err != nil {
		return fmt.Errorf("%w: skill: %v", ErrInvalid, err)
	}
	for _, existing := range s.Skills {
		if strings.EqualFold(existing.Name, sk.Name) {
			return fmt.Errorf("%w: skill %q already exists", ErrInvalid, sk.Name)
		}
	}
	return nil
}

// ValidateSkillPatch checks an UpdateSkill payload against the current
// state.
func ValidateSkillPatch(s State, id string, p SkillPatch) error {
	if p.Level != nil && (*p.Level < 0 || *p.Level > 100) {
		return fmt.Errorf("%w: level must be between 0 and 100", ErrInvalid)
	}
	if p.Name == nil {
		return nil
	}
	name := strings.TrimSpace(*p.Name)
	if name == "" {
		return fmt.Errorf("%w: skill name is required", ErrInvalid)
	}
	for _, existing := range s.Skills {
		if existing.ID != id && strings.EqualFold(existing.Name, name) {
			return fmt.Errorf("%w: skill %q already exists", ErrInvalid, name)
		}
	}
	return nil
}

// ValidateGist requires a title and content.
func ValidateGist(g Gist) error {
	g.Title = strings.TrimSpace(g.Title)
	g.Content = strings.TrimSpace(g.Content)
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("%w: gist: %v", ErrInvalid, err)
	}
	return nil
}

// ValidateSectionID requires id to name a section in s.
func ValidateSectionID(s State, id string) error {
	for _, sec := range s.Sections {
		if sec.ID == id {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown section %q", ErrInvalid, id)
}

// ValidateSections rejects a reorder payload with missing or duplicate ids
// or an unknown section type. The compiler would skip unknown types, but a
// caller submitting one has almost certainly made a typo.
func ValidateSections(secs []Section) error {
	seen := make(map[string]struct{}, len(secs))
	for _, sec := range secs {
		if sec.ID == "" {
			return fmt.Errorf("%w: section id is required", ErrInvalid)
		}
		if !sec.Type.Known() {
			return fmt.Errorf("%w: unknown section type %q", ErrInvalid, sec.Type)
		}
		if _, dup := seen[sec.ID]; dup {
			return fmt.Errorf("%w: duplicate section %q", ErrInvalid, sec.ID)
		}
		seen[sec.ID] = struct{}{}
	}
	return nil
}

// MoveSectionsFirst returns a new plan with the sections named by ids at
// the front, in that order, followed by the rest in their current render
// order. Order is renumbered from 0.
func MoveSectionsFirst(current []Section, ids []string) ([]Section, error) {
	rendered := slices.Clone(current)
	slices.SortStableFunc(rendered, func(a, b Section) int { return cmp.Compare(a.Order, b.Order) })

	index := make(map[string]int, len(rendered))
	for i, sec := range rendered {
		index[sec.ID] = i
	}
	out := make([]Section, 0, len(rendered))
	picked := make(map[string]bool, len(ids))
	for _, id := range ids {
		i, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown section %q", ErrInvalid, id)
		}
		if picked[id] {
			return nil, fmt.Errorf("%w: duplicate section %q", ErrInvalid, id)
		}
		picked[id] = true
		out = append(out, rendered[i])
	}
	for _, sec := range rendered {
		if !picked[sec.ID] {
			out = append(out, sec)
		}
	}
	for i := range out {
		out[i].Order = i
	}
	return out, nil
}
