// Package greetings produces the localized greeting and subject lines
// composited onto cards and used for email subjects.
package greetings

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/go-greetings/internal/config"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves greeting strings for one language, falling back to
// English and finally to built-in defaults when a translation is missing.
type Translator struct {
	localizer *i18n.Localizer
	log       *slog.Logger
}

// New builds a translator for the given language code.
func New(lang string, log *slog.Logger) *Translator {
	log = log.With(config.LogKeyComponent, config.CompI18n)

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		// The embed is part of the binary; this only happens if the locales
		// directory is emptied at build time.
		log.Error(config.ErrLocalesAccess, config.LogKeyError, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			log.Debug(config.MsgLocaleSkip, config.LogKeyFile, name)
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			log.Error(config.ErrLocaleLoad,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		log.Debug(config.MsgLocaleLoaded, config.LogKeyFile, name)
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}

	return &Translator{
		localizer: i18n.NewLocalizer(bundle, lang, config.DefaultLanguage),
		log:       log.With(config.LogKeyLang, lang),
	}
}

// BirthdayGreeting returns the single-line text composited onto a birthday card.
func (t *Translator) BirthdayGreeting(firstName string) string {
	return t.localize(config.TKeyBirthdayGreeting, firstName, config.FallbackBirthdayGreeting)
}

// AnniversaryGreeting returns the two-line text composited onto an
// anniversary card, with the name on its own line.
func (t *Translator) AnniversaryGreeting(firstName string) string {
	return t.localize(config.TKeyAnniversaryGreeting, firstName, config.FallbackAnniversaryGreeting)
}

// BirthdaySubject returns the email subject for a birthday greeting.
func (t *Translator) BirthdaySubject(firstName string) string {
	return t.localize(config.TKeyBirthdaySubject, firstName, config.FallbackBirthdaySubject)
}

// AnniversarySubject returns the email subject for an anniversary greeting.
func (t *Translator) AnniversarySubject(firstName string) string {
	return t.localize(config.TKeyAnniversarySubject, firstName, config.FallbackAnniversarySubject)
}

func (t *Translator) localize(key, firstName, fallback string) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: map[string]string{"Name": firstName},
	})
	if err != nil {
		t.log.Debug(config.MsgTransMissing,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return fmt.Sprintf(fallback, firstName)
	}
	return msg
}
