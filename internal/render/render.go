package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/innofeed/innofeed/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Funcs are the template functions the feed templates rely on.
var Funcs = template.FuncMap{
	"emptyFeedText": func() string { return EmptyFeedText },
}

// Templates returns a fresh set holding the "feed_list" and "feed_item"
// definitions. Callers may Parse their own pages into it.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("render").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse feed templates: %w", err)
	}
	return tmpl, nil
}

// Feed writes the HTML of a feed list.
func Feed(w io.Writer, items []model.FeedItem, locale Locale) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "feed_list", NewItems(items, locale))
}
