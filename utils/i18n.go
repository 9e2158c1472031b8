package utils

import (
	"embed"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

var supportedTags = []language.Tag{language.English, language.Japanese}

var (
	// Bundle is the global translation bundle
	Bundle *i18n.Bundle
	// Localizer is the English localizer
	Localizer *i18n.Localizer

	langMatcher = language.NewMatcher(supportedTags)
	localizers  = map[string]*i18n.Localizer{}
)

func init() {
	if err := InitI18n(); err != nil {
		Log.Warn("Failed to initialize i18n: %v", err)
	}
}

// InitI18n loads the embedded locale files and builds one localizer per language
func InitI18n() error {
	Bundle = i18n.NewBundle(language.English)
	Bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, tag := range supportedTags {
		lang := tag.String()
		name := path.Join("locales", "active."+lang+".toml")
		buf, err := localeFS.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := Bundle.ParseMessageFileBytes(buf, name); err != nil {
			return err
		}
		localizers[lang] = i18n.NewLocalizer(Bundle, lang)
	}

	Localizer = localizers["en"]
	return nil
}

// MatchLanguage maps a language tag or Accept-Language value to "en" or "ja"
func MatchLanguage(accept string) string {
	tags, _, _ := language.ParseAcceptLanguage(accept)
	tag, _, confidence := langMatcher.Match(tags...)
	if confidence == language.No {
		return "en"
	}
	base, _ := tag.Base()
	if base.String() == "ja" {
		return "ja"
	}
	return "en"
}

// GetLocalizer returns the localizer for lang, English when unsupported
func GetLocalizer(lang string) *i18n.Localizer {
	if l, ok := localizers[MatchLanguage(lang)]; ok {
		return l
	}
	return Localizer
}

// T translates a message ID
func T(localizer *i18n.Localizer, messageID string) string {
	if localizer == nil {
		localizer = Localizer
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID: messageID,
	})
	if err != nil {
		Log.Debug("Translation error for '%s': %v", messageID, err)
		return messageID
	}
	return msg
}

// LocalizeError renders an AppError's message in the localizer's language, falling back to
// the error's own message when no translation exists.
func LocalizeError(localizer *i18n.Localizer, appErr *AppError) string {
	if appErr.MessageID == "" || localizer == nil {
		return appErr.Message
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: appErr.MessageID})
	if err != nil || msg == "" {
		return appErr.Message
	}
	return msg
}
