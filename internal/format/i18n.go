package format

import (
	"embed"
	"io/fs"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
)

// Languages lists the locales shipped with the binary.
var Languages = []string{"en", "de"}

func loadBundle() *i18n.Bundle {
	bundleOnce.Do(func() {
		bundle = i18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

		files, _ := fs.ReadDir(localeFS, "locales")
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			data, _ := localeFS.ReadFile("locales/" + f.Name())
			bundle.MustParseMessageFileBytes(data, f.Name())
		}
	})
	return bundle
}

// Localizer returns a localizer for lang. Unknown languages fall back to
// English.
func Localizer(lang string) *i18n.Localizer {
	return i18n.NewLocalizer(loadBundle(), lang, language.English.String())
}

// T translates id, returning the id itself when no message is found.
func T(loc *i18n.Localizer, id string) string {
	if loc == nil {
		loc = Localizer("en")
	}
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return msg
}
