package render

import (
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tartampluch/go-greetings/internal/config"
)

// HexToRGB decodes a hex color string ("#RRGGBB", "RRGGBB", "#RGB" or "RGB")
// into an opaque RGBA value. Invalid input never fails: it decodes to black
// and logs a warning, so a bad configuration value cannot abort a run.
func HexToRGB(hexColor string, log *slog.Logger) color.RGBA {
	black := color.RGBA{A: 0xFF}

	s := strings.TrimPrefix(strings.TrimSpace(hexColor), "#")
	if len(s) == config.HexColorShort {
		var b strings.Builder
		for _, c := range s {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		s = b.String()
	}
	if len(s) != config.HexColorLong {
		warnInvalidHex(log, hexColor)
		return black
	}

	var channels [3]uint8
	for i := range channels {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			warnInvalidHex(log, hexColor)
			return black
		}
		channels[i] = uint8(v)
	}

	return color.RGBA{R: channels[0], G: channels[1], B: channels[2], A: 0xFF}
}

func warnInvalidHex(log *slog.Logger, value string) {
	if log == nil {
		log = slog.Default()
	}
	log.Warn(config.MsgInvalidHexColor,
		config.LogKeyComponent, config.CompRender,
		config.LogKeyValue, fmt.Sprintf("%q", value),
	)
}
