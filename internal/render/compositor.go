// Package render is the text-rendering engine: font fallback resolution,
// hex color decoding and the compositing of greeting text onto template
// images.
package render

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/tartampluch/go-greetings/internal/config"
)

// Spec describes a single text-compositing job on a template image.
type Spec struct {
	// Text is the greeting, possibly containing line-break markers when
	// Multiline is set.
	Text string

	// Position is the text origin. In center-aligned single-line mode only
	// the Y component is used. In multi-line mode a non-positive Y centers
	// the block vertically.
	Position image.Point

	FontSize  float64
	FontColor string // hex string, decoded via HexToRGB

	// FontPath optionally points at a custom TTF; the fallback chain applies
	// when it is empty or unreadable.
	FontPath string

	CenterAlign bool
	Multiline   bool

	// OutputName, when set, persists the rendered JPEG under the
	// compositor's output directory with this filename.
	OutputName string
}

// Compositor renders personalized greeting images.
type Compositor struct {
	outputDir string
	log       *slog.Logger
}

// NewCompositor creates a compositor saving artifacts under outputDir.
func NewCompositor(outputDir string, log *slog.Logger) *Compositor {
	return &Compositor{
		outputDir: outputDir,
		log:       log.With(config.LogKeyComponent, config.CompRender),
	}
}

// Render composites spec.Text onto a copy of the template image and returns
// the JPEG-encoded result. When spec.OutputName is set the image is also
// written to the output directory and the saved path is returned.
//
// A missing template is an error the caller must treat as recoverable for
// that one event; the template file is never modified.
func (c *Compositor) Render(templatePath string, spec Spec) (data []byte, savedPath string, err error) {
	src, err := imaging.Open(templatePath)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", config.ErrTemplateOpen, err)
	}

	// Clone normalizes any raster input to NRGBA; JPEG encoding below
	// flattens it to 3 channels.
	dc := gg.NewContextForImage(imaging.Clone(src))

	face := ResolveFont(spec.FontPath, spec.FontSize, config.FontCandidates, c.log)
	dc.SetFontFace(face)
	dc.SetColor(HexToRGB(spec.FontColor, c.log))

	width := float64(dc.Width())
	height := float64(dc.Height())

	if spec.Multiline {
		// Each line is horizontally centered on its own; the block starts at
		// the given Y, or is vertically centered when Y is not positive.
		lines := strings.Split(spec.Text, config.LineBreak)
		lineHeight := spec.FontSize + config.LineGutter
		totalHeight := float64(len(lines)) * lineHeight

		startY := float64(spec.Position.Y)
		if spec.Position.Y <= 0 {
			startY = (height - totalHeight) / 2
		}

		for i, line := range lines {
			lineY := startY + float64(i)*lineHeight
			dc.DrawStringAnchored(line, width/2, lineY, 0.5, 1)
		}
	} else if spec.CenterAlign {
		// x = (imageWidth - textWidth) / 2; the X component of the position
		// is ignored.
		dc.DrawStringAnchored(spec.Text, width/2, float64(spec.Position.Y), 0.5, 1)
	} else {
		dc.DrawStringAnchored(spec.Text, float64(spec.Position.X), float64(spec.Position.Y), 0, 1)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dc.Image(), imaging.JPEG, imaging.JPEGQuality(config.JPEGQuality)); err != nil {
		return nil, "", fmt.Errorf("%s: %w", config.ErrImageEncode, err)
	}

	c.log.Debug(config.MsgImageRendered,
		config.LogKeyText, spec.Text,
		config.LogKeySizeBytes, buf.Len(),
	)

	if spec.OutputName != "" {
		savedPath, err = c.save(spec.OutputName, buf.Bytes())
		if err != nil {
			return nil, "", err
		}
	}

	return buf.Bytes(), savedPath, nil
}

// save writes the encoded image into the output directory, creating it on
// first use. Identical output names overwrite each other: two employees
// sharing a name and date collide, which is acceptable for a once-per-day
// batch.
func (c *Compositor) save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(c.outputDir, config.DirPermDefault); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrOutputDir, err)
	}
	path := filepath.Join(c.outputDir, name)
	if err := os.WriteFile(path, data, config.FilePermDefault); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrImageSave, err)
	}
	c.log.Info(config.MsgImageSaved, config.LogKeyPath, path)
	return path, nil
}
