package render

import (
	"image/color"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHexToRGB(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  color.RGBA
	}{
		{"white with hash", "#FFFFFF", color.RGBA{255, 255, 255, 255}},
		{"white without hash", "FFFFFF", color.RGBA{255, 255, 255, 255}},
		{"lowercase", "#ff8000", color.RGBA{255, 128, 0, 255}},
		{"short form", "#F0A", color.RGBA{255, 0, 170, 255}},
		{"short form no hash", "fff", color.RGBA{255, 255, 255, 255}},
		{"black", "#000000", color.RGBA{0, 0, 0, 255}},
		{"surrounding whitespace", " #FFFFFF ", color.RGBA{255, 255, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HexToRGB(tt.input, discardLogger()))
		})
	}
}

// Invalid input decodes to black and logs a warning; it must never fail.
func TestHexToRGB_InvalidFallsBackToBlack(t *testing.T) {
	black := color.RGBA{A: 255}
	tests := []struct {
		name  string
		input string
	}{
		{"word", "xyz"},
		{"empty", ""},
		{"wrong length", "#FFFF"},
		{"non-hex digits", "#GGGGGG"},
		{"hash only", "#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, black, HexToRGB(tt.input, discardLogger()))
		})
	}
}

// TestHexToRGB_InvalidLogsWarning checks the warning actually reaches the
// injected logger; silent fallback would make misconfiguration invisible.
func TestHexToRGB_InvalidLogsWarning(t *testing.T) {
	var buf logBuffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	HexToRGB("not-a-color", log)

	assert.Contains(t, buf.String(), "Invalid hex color")
}

type logBuffer struct {
	data []byte
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *logBuffer) String() string { return string(b.data) }
