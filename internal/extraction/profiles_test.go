package extraction

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileNames(strategies []Strategy) []string {
	var names []string
	for _, s := range strategies {
		names = append(names, s.Profile.Name)
	}
	return names
}

func TestProfileSet_Cascade(t *testing.T) {
	t.Run("should end with the fallback for unknown hosts", func(t *testing.T) {
		cascade := DefaultProfileSet().Cascade("https://unknown.example/receta")
		assert.Equal(t, []string{"desktop-chrome", "mobile-safari", "generic"}, profileNames(cascade))
		assert.Zero(t, cascade[0].Delay)
	})

	t.Run("should put domain profiles first with their delay", func(t *testing.T) {
		cascade := DefaultProfileSet().Cascade("https://cookpad.com/es/recetas/123")
		assert.Equal(t, []string{"cookpad-browser", "desktop-chrome", "mobile-safari", "generic"}, profileNames(cascade))
		assert.Equal(t, 1500*time.Millisecond, cascade[0].Delay)
	})

	t.Run("should apply the priority list to defaults", func(t *testing.T) {
		set := DefaultProfileSet()
		set.Priority = []string{"mobile-safari"}
		assert.Equal(t, []string{"mobile-safari", "desktop-chrome", "generic"}, profileNames(set.Cascade("https://x.example/")))
	})

	t.Run("should still return the fallback for an unparseable url", func(t *testing.T) {
		cascade := DefaultProfileSet().Cascade("://bad")
		assert.Equal(t, "generic", cascade[len(cascade)-1].Profile.Name)
	})
}

func TestLoadProfileSet(t *testing.T) {
	t.Run("should return built-ins for an empty path", func(t *testing.T) {
		set, err := LoadProfileSet("")
		require.NoError(t, err)
		assert.Equal(t, DefaultProfileSet().Fallback.Name, set.Fallback.Name)
	})

	t.Run("should merge a yaml file over the built-ins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profiles.yaml")
		yamlDoc := `
rules:
  - domains: ["hard.example"]
    initial_delay: 3s
    profiles:
      - name: hard-referer
        timeout: 12s
        headers:
          User-Agent: custom
          Referer: https://www.google.com/
priority: ["mobile-safari"]
`
		require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

		set, err := LoadProfileSet(path)
		require.NoError(t, err)

		cascade := set.Cascade("https://hard.example/r/1")
		assert.Equal(t, []string{"hard-referer", "mobile-safari", "desktop-chrome", "generic"}, profileNames(cascade))
		assert.Equal(t, 3*time.Second, cascade[0].Delay)
		assert.Equal(t, 12*time.Second, cascade[0].Profile.Timeout)
		assert.Equal(t, "custom", cascade[0].Profile.Headers["User-Agent"])
	})

	t.Run("should reject rules without domains", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profiles.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules:\n  - profiles:\n      - name: x\n"), 0o644))

		_, err := LoadProfileSet(path)
		assert.Error(t, err)
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, err := LoadProfileSet(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
