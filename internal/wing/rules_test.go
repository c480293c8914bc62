package wing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	r := NewRules("")

	assert.Equal(t, 3, r.SpotsFor("Mining"))
	assert.Equal(t, 7, r.SpotsFor("AX Conflict Zone"))

	assert.True(t, r.PlatformAllowed("Odyssey", "PC"))
	assert.False(t, r.PlatformAllowed("Odyssey", "Xbox"))
	assert.True(t, r.PlatformAllowed("Horizons", "Xbox"))
	assert.True(t, r.PlatformAllowed("", "Xbox"))
	assert.True(t, r.PlatformAllowed("Odyssey", ""))
	assert.True(t, r.PlatformAllowed("Unknown Version", "Xbox"))
}

func TestRulesFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "rules.yml")

	data := `
default_spots: 5
activity_spots:
  Racing: 11
version_platforms:
  Odyssey: ["PC", "Mac"]
`
	require.NoError(t, os.WriteFile(file, []byte(data), 0o644))

	r := NewRules(file)

	assert.Equal(t, 5, r.SpotsFor("Mining"))
	assert.Equal(t, 11, r.SpotsFor("Racing"))
	assert.True(t, r.PlatformAllowed("Odyssey", "Mac"))
	assert.False(t, r.PlatformAllowed("Odyssey", "Xbox"))
}

func TestRulesMissingFile(t *testing.T) {
	r := NewRules(filepath.Join(t.TempDir(), "absent.yml"))

	// falls back to built-in defaults
	assert.Equal(t, 3, r.SpotsFor("Mining"))
}
