// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/innofeed/innofeed/internal/model"
)

// dateLayout matches the ISO form the web client parses.
const dateLayout = "2006-01-02T15:04:05"

// RegisterRequest represents the request body for POST /register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents the request body for POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PreferencesRequest represents the request body for POST /set-preferences/{userId}.
type PreferencesRequest struct {
	DomainIDs []int64 `json:"domain_ids" validate:"required"`
}

// ErrorResponse is the error body every endpoint uses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse carries a status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterResponse represents a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
}

// FeedResponse represents a user's feed.
type FeedResponse struct {
	UserID  int64      `json:"user_id"`
	Feed    []FeedItem `json:"feed"`
	Message string     `json:"message,omitempty"`
}

// FeedItem is one feed entry. Exactly one of the embedded variants is set,
// so a paper never carries patent keys and the other way round.
type FeedItem struct {
	ID       int64   `json:"id"`
	Type     string  `json:"type"`
	Title    string  `json:"title"`
	Abstract *string `json:"abstract"`
	Summary  *string `json:"summary"`
	Authors  *string `json:"authors"`
	Date     *string `json:"date"`
	Source   *string `json:"source"`
	DomainID *int64  `json:"domain_id"`

	*PaperFields
	*PatentFields
}

// PaperFields are the keys only papers carry.
type PaperFields struct {
	ArxivID    *string `json:"arxiv_id"`
	PDFURL     *string `json:"pdf_url"`
	DOI        *string `json:"doi"`
	JournalRef *string `json:"journal_ref"`
	Categories *string `json:"categories"`
	Comment    *string `json:"comment"`
}

// PatentFields are the keys only patents carry.
type PatentFields struct {
	ApplicationNumber  *string `json:"application_number"`
	ApplicationStatus  *string `json:"application_status"`
	PublicationDate    *string `json:"publication_date"`
	USPCClassification *string `json:"uspc_classification"`
	CPCClassifications *string `json:"cpc_classifications"`
	Assignee           *string `json:"assignee"`
	PriorityDate       *string `json:"priority_date"`
	PatentFamilyID     *string `json:"patent_family_id"`
	PatentPDFURL       *string `json:"patent_pdf_url"`
	ThumbnailURL       *string `json:"thumbnail_url"`
	CitedByCount       *int    `json:"cited_by_count"`
}

// ToFeedItem converts a stored item.
func ToFeedItem(it *model.Item) FeedItem {
	out := FeedItem{
		ID:       it.ID,
		Type:     string(it.Type),
		Title:    it.Title,
		Abstract: it.Abstract,
		Summary:  it.Summary,
		Authors:  it.Authors,
		Date:     formatDate(it.Date),
		Source:   it.Source,
		DomainID: it.DomainID,
	}

	switch it.Type {
	case model.ItemTypePaper:
		out.PaperFields = &PaperFields{
			ArxivID:    it.ArxivID,
			PDFURL:     it.PDFURL,
			DOI:        it.DOI,
			JournalRef: it.JournalRef,
			Categories: it.Categories,
			Comment:    it.Comment,
		}
	case model.ItemTypePatent:
		out.PatentFields = &PatentFields{
			ApplicationNumber:  it.ApplicationNumber,
			ApplicationStatus:  it.ApplicationStatus,
			PublicationDate:    it.PublicationDate,
			USPCClassification: it.USPCClassification,
			CPCClassifications: it.CPCClassifications,
			Assignee:           it.Assignee,
			PriorityDate:       it.PriorityDate,
			PatentFamilyID:     it.PatentFamilyID,
			PatentPDFURL:       it.PatentPDFURL,
			ThumbnailURL:       it.ThumbnailURL,
			CitedByCount:       it.CitedByCount,
		}
	}
	return out
}

// ToFeedItems converts a list of stored items. The result is never nil.
func ToFeedItems(items []model.Item) []FeedItem {
	out := make([]FeedItem, 0, len(items))
	for i := range items {
		out = append(out, ToFeedItem(&items[i]))
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
