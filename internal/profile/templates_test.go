package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_AllParseAndAreValid(t *testing.T) {
	tpls, err := Templates()
	require.NoError(t, err)
	require.NotEmpty(t, tpls)

	names := make([]string, 0, len(tpls))
	for _, tpl := range tpls {
		names = append(names, tpl.Name)
		assert.NotEmpty(t, tpl.Description, tpl.Name)
		if tpl.Patch.Sections != nil {
			assert.NoError(t, ValidateSections(*tpl.Patch.Sections), tpl.Name)
		}
	}
	assert.Equal(t, []string{"designer", "developer", "student"}, names)
}

func TestTemplateByName(t *testing.T) {
	tpl, err := TemplateByName("developer")
	require.NoError(t, err)
	require.NotNil(t, tpl.Patch.Skills)

	s := Reduce(Initial(), LoadTemplate{Patch: tpl.Patch})
	assert.Equal(t, "Rust", s.CurrentLearning)
	assert.Empty(t, s.Username, "templates leave identity alone")

	_, err = TemplateByName("../templates/developer")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
	_, err = TemplateByName("missing")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestDecode_DefaultsMissingFields(t *testing.T) {
	s, err := Decode([]byte("username: alice\nname: Alice\nstats:\n  repositories: 3\n"))
	require.NoError(t, err)

	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, 3, s.Stats.Repositories)
	assert.Equal(t, Initial().Sections, s.Sections)
}

func TestLoadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"Bob","skills":[{"id":"1","name":"Go","level":70,"category":"Backend"}]}`), 0o600))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Bob", s.Name)
	require.Len(t, s.Skills, 1)
	assert.Equal(t, 70, s.Skills[0].Level)
}
