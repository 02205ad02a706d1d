// Package render turns feed items into HTML.
package render

import (
	"net/url"
	"strings"

	"github.com/innofeed/innofeed/internal/model"
)

const (
	placeholder   = model.NotAvailable
	noSummary     = "No summary available"
	EmptyFeedText = "No feed items to display. Try setting your preferences."
	doiResolver   = "https://doi.org/"
)

// Item is the view of one feed entry. Empty strings are not rendered.
type Item struct {
	ID      int64
	Kind    string
	Badge   string
	Title   string
	Summary string
	Authors string
	Source  string
	Date    string

	Paper  *Paper
	Patent *Patent
}

// Paper holds the paper-only lines.
type Paper struct {
	ArxivID    string
	DOI        string
	DOIURL     string
	Categories string
	JournalRef string
	Comment    string
	PDFURL     string
}

// Patent holds the patent-only lines.
type Patent struct {
	ApplicationNumber  string
	Assignee           string
	ApplicationStatus  string
	PublicationDate    string
	PriorityDate       string
	PatentFamilyID     string
	Citations          int
	USPCClassification string
	CPCClassifications string
	PDFURL             string
	ThumbnailURL       string
}

// NewItem builds the view of item for a viewer in locale.
func NewItem(item model.FeedItem, locale Locale) Item {
	v := Item{
		ID:      item.ID,
		Kind:    string(item.Type),
		Badge:   strings.ToUpper(string(item.Type)),
		Title:   item.Title,
		Summary: item.Summary.Or(item.Abstract.Or(noSummary)),
		Authors: item.Authors.Or(placeholder),
		Source:  item.Source.Value(),
		Date:    locale.FormatDate(item.Date.Value()),
	}

	switch {
	case item.IsPaper():
		v.Paper = &Paper{
			ArxivID:    item.ArxivID.Value(),
			DOI:        item.DOI.Value(),
			DOIURL:     doiURL(item.DOI),
			Categories: item.Categories.Value(),
			JournalRef: item.JournalRef.Value(),
			Comment:    item.Comment.Value(),
			PDFURL:     item.PDFURL.Value(),
		}
	case item.IsPatent():
		citations, _ := item.Citations()
		v.Patent = &Patent{
			ApplicationNumber:  item.ApplicationNumber.Value(),
			Assignee:           item.Assignee.Value(),
			ApplicationStatus:  item.ApplicationStatus.Value(),
			PublicationDate:    item.PublicationDate.Value(),
			PriorityDate:       item.PriorityDate.Value(),
			PatentFamilyID:     item.PatentFamilyID.Value(),
			Citations:          citations,
			USPCClassification: item.USPCClassification.Value(),
			CPCClassifications: item.CPCClassifications.Value(),
			PDFURL:             item.PatentPDFURL.Value(),
			ThumbnailURL:       item.ThumbnailURL.Value(),
		}
	}

	return v
}

// NewItems builds views for a whole feed, keeping server order.
func NewItems(items []model.FeedItem, locale Locale) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, NewItem(item, locale))
	}
	return out
}

func doiURL(doi model.Text) string {
	if !doi.Present() {
		return ""
	}
	return doiResolver + (&url.URL{Path: doi.Value()}).EscapedPath()
}
