package render

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// dateLayouts are the short date layouts of the supported locales.
// The first tag is the fallback.
var dateLayouts = []struct {
	tag    language.Tag
	layout string
}{
	{language.AmericanEnglish, "1/2/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.German, "2.1.2006"},
	{language.French, "02/01/2006"},
	{language.Spanish, "2/1/2006"},
	{language.Italian, "2/1/2006"},
	{language.Dutch, "2-1-2006"},
	{language.BrazilianPortuguese, "02/01/2006"},
	{language.Russian, "02.01.2006"},
	{language.Japanese, "2006/1/2"},
	{language.Chinese, "2006/1/2"},
	{language.Korean, "2006. 1. 2."},
}

var dateMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(dateLayouts))
	for i, l := range dateLayouts {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// inputLayouts are the date shapes the backend emits.
var inputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Locale selects the date layout for a viewer.
type Locale struct {
	tag    language.Tag
	layout string
}

// DefaultLocale is used when the viewer states no usable preference.
var DefaultLocale = Locale{tag: dateLayouts[0].tag, layout: dateLayouts[0].layout}

// LocaleFromAcceptLanguage picks the best supported locale for an
// Accept-Language header value.
func LocaleFromAcceptLanguage(header string) Locale {
	if strings.TrimSpace(header) == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := dateMatcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return Locale{tag: dateLayouts[index].tag, layout: dateLayouts[index].layout}
}

// Tag returns the matched language tag.
func (l Locale) Tag() language.Tag {
	return l.tag
}

// FormatDate renders raw in the locale's short date layout. Missing or
// unparseable values yield the placeholder.
func (l Locale) FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return placeholder
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(l.layout)
		}
	}
	return placeholder
}
