package render

import (
	"log/slog"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/tartampluch/go-greetings/internal/config"
)

// ResolveFont returns a usable font face, never an error. Tiers, in order:
//
//  1. customPath, if set and readable
//  2. the ordered candidate list of well-known system font files
//  3. the embedded Go Regular TTF
//  4. the fixed-size bitmap font (basicfont), which cannot fail
//
// The winning tier is logged so "text renders in the wrong typeface" reports
// can be diagnosed from the run log.
func ResolveFont(customPath string, size float64, candidates []string, log *slog.Logger) font.Face {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(config.LogKeyComponent, config.CompRender)

	if customPath != "" {
		if face, err := loadFace(customPath, size); err == nil {
			log.Info(config.MsgFontResolved,
				config.LogKeyTier, config.FontTierCustom,
				config.LogKeyFile, customPath,
			)
			return face
		} else {
			log.Warn(config.ErrFontParse,
				config.LogKeyTier, config.FontTierCustom,
				config.LogKeyFile, customPath,
				config.LogKeyError, err,
			)
		}
	}

	for _, path := range candidates {
		face, err := loadFace(path, size)
		if err != nil {
			continue
		}
		log.Info(config.MsgFontResolved,
			config.LogKeyTier, config.FontTierSystem,
			config.LogKeyFile, path,
		)
		return face
	}

	if f, err := truetype.Parse(goregular.TTF); err == nil {
		log.Info(config.MsgFontResolved, config.LogKeyTier, config.FontTierEmbedded)
		return truetype.NewFace(f, &truetype.Options{Size: size})
	}

	log.Warn(config.MsgFontFallback, config.LogKeyTier, config.FontTierBitmap)
	return basicfont.Face7x13
}

// loadFace reads and parses a TTF file into a face at the requested size.
func loadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}
