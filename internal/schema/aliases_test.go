package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAliases(t *testing.T) {
	table := DefaultAliases()

	col, ok := table.Resolve(ConceptUserID, []string{"Email", "TelegramUserID"})
	require.True(t, ok)
	assert.Equal(t, "TelegramUserID", col)

	col, ok = table.Resolve(ConceptPlan, []string{"Investment_Plan Selected"})
	require.True(t, ok)
	assert.Equal(t, "Investment_Plan Selected", col)

	_, ok = table.Resolve(ConceptRisk, []string{"Email"})
	assert.False(t, ok)
}

func TestLoadAliases(t *testing.T) {
	t.Run("missing_file_uses_defaults", func(t *testing.T) {
		table, err := LoadAliases(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultAliases()[ConceptUserID], table[ConceptUserID])
	})

	t.Run("empty_path_uses_defaults", func(t *testing.T) {
		table, err := LoadAliases("")
		require.NoError(t, err)
		assert.Equal(t, DefaultAliases()[ConceptRisk], table[ConceptRisk])
	})

	t.Run("overrides_replace_per_concept", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.yaml")
		require.NoError(t, os.WriteFile(path, []byte("user_id: [MemberID, id]\n"), 0o600))

		table, err := LoadAliases(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"MemberID", "id"}, table[ConceptUserID])
		// Untouched concepts keep their defaults.
		assert.Equal(t, DefaultAliases()[ConceptPlan], table[ConceptPlan])
	})

	t.Run("invalid_yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.yaml")
		require.NoError(t, os.WriteFile(path, []byte("user_id: [unclosed\n"), 0o600))

		_, err := LoadAliases(path)
		assert.Error(t, err)
	})
}
