package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestLocaleFromAcceptLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   language.Tag
	}{
		{"", language.AmericanEnglish},
		{"de-DE,de;q=0.9,en;q=0.8", language.German},
		{"en-GB", language.BritishEnglish},
		{"ja", language.Japanese},
		{"xx-invalid;;", language.AmericanEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, LocaleFromAcceptLanguage(tt.header).Tag())
		})
	}
}

func TestLocale_FormatDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		raw    string
		want   string
	}{
		{"en-US", "2024-03-07", "3/7/2024"},
		{"de", "2024-03-07T10:00:00Z", "7.3.2024"},
		{"en-GB", "2024-03-07 10:00:00", "07/03/2024"},
		{"ja", "2024-03-07T10:00:00", "2024/3/7"},
		{"en-US", "", "N/A"},
		{"en-US", "yesterday", "N/A"},
	}

	for _, tt := range tests {
		got := LocaleFromAcceptLanguage(tt.header).FormatDate(tt.raw)
		assert.Equal(t, tt.want, got, "header %q raw %q", tt.header, tt.raw)
	}
}
