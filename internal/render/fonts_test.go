package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

// ResolveFont must always return a usable face, whatever it is given.
func TestResolveFont_NeverFails(t *testing.T) {
	tests := []struct {
		name       string
		customPath string
		candidates []string
	}{
		{"empty everything", "", nil},
		{"empty candidate list", "", []string{}},
		{"missing custom path", filepath.Join(os.TempDir(), "definitely-missing.ttf"), nil},
		{"all candidates missing", "", []string{"/nonexistent/a.ttf", "/nonexistent/b.ttf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			face := ResolveFont(tt.customPath, 40, tt.candidates, discardLogger())
			require.NotNil(t, face)
			assert.NotNil(t, face.Metrics(), "face must be measurable")
		})
	}
}

func TestResolveFont_CustomPathWins(t *testing.T) {
	// A real TTF on disk: the embedded Go Regular data round-tripped to a file.
	path := filepath.Join(t.TempDir(), "custom.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0644))

	face := ResolveFont(path, 40, nil, discardLogger())
	require.NotNil(t, face)
	assert.Positive(t, face.Metrics().Height.Ceil())
}

func TestResolveFont_CandidateChain(t *testing.T) {
	good := filepath.Join(t.TempDir(), "good.ttf")
	require.NoError(t, os.WriteFile(good, goregular.TTF, 0644))

	// First candidates are unreadable or garbage; the chain must move on.
	garbage := filepath.Join(t.TempDir(), "garbage.ttf")
	require.NoError(t, os.WriteFile(garbage, []byte("not a font"), 0644))

	face := ResolveFont("", 28, []string{"/nonexistent/x.ttf", garbage, good}, discardLogger())
	require.NotNil(t, face)
	assert.Positive(t, face.Metrics().Height.Ceil())
}
