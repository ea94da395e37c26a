// Package i18n resolves the site's supported locales and translates the
// handful of interface strings the templates print.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/message"
)

// DefaultCodes are the locales served when none are configured. The first
// entry is the default locale.
var DefaultCodes = []string{"en", "es", "de", "fr", "it", "pt"}

// Locales is an ordered set of supported locale codes.
type Locales struct {
	codes   []string
	tags    []language.Tag
	matcher language.Matcher
}

// New parses codes as BCP 47 tags. Blank and repeated codes are skipped; at
// least one valid code is required.
func New(codes []string) (*Locales, error) {
	l := &Locales{}
	seen := make(map[string]struct{})
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		tag, err := language.Parse(c)
		if err != nil {
			return nil, fmt.Errorf("i18n: parse locale %q: %w", c, err)
		}
		seen[c] = struct{}{}
		l.codes = append(l.codes, c)
		l.tags = append(l.tags, tag)
	}
	if len(l.codes) == 0 {
		return nil, fmt.Errorf("i18n: no locales configured")
	}
	l.matcher = language.NewMatcher(l.tags)
	return l, nil
}

// Codes returns the supported codes in configuration order.
func (l *Locales) Codes() []string {
	out := make([]string, len(l.codes))
	copy(out, l.codes)
	return out
}

// Default returns the first configured locale.
func (l *Locales) Default() string {
	return l.codes[0]
}

// Supported reports whether code is one of the configured locales.
func (l *Locales) Supported(code string) bool {
	for _, c := range l.codes {
		if c == code {
			return true
		}
	}
	return false
}

// Match picks the best supported locale for an Accept-Language header value.
func (l *Locales) Match(acceptLanguage string) string {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return l.Default()
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return l.Default()
	}
	_, index, conf := l.matcher.Match(tags...)
	if conf == language.No || index < 0 || index >= len(l.codes) {
		return l.Default()
	}
	return l.codes[index]
}

// Name returns the native name of a locale, e.g. "español" for "es".
func Name(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}

// T formats key for locale. Keys are the English strings; a locale without
// an entry gets the key back.
func T(locale, key string, args ...any) string {
	return Printer(locale).Sprintf(key, args...)
}

// Printer returns a message printer for locale.
func Printer(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}
