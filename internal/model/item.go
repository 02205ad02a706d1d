package model

import "time"

// ItemType discriminates the feed item variants.
type ItemType string

const (
	ItemTypePaper  ItemType = "paper"
	ItemTypePatent ItemType = "patent"
)

// IsValid checks if the item type is a known variant.
func (t ItemType) IsValid() bool {
	return t == ItemTypePaper || t == ItemTypePatent
}

// Item is a paper or patent row as stored by the backend.
// Nullable columns are pointers.
type Item struct {
	ID       int64
	Type     ItemType
	Title    string
	Abstract *string
	Summary  *string
	Authors  *string
	Date     *time.Time
	Source   *string
	DomainID *int64

	// Paper columns
	ArxivID    *string
	PDFURL     *string
	DOI        *string
	JournalRef *string
	Categories *string
	Comment    *string

	// Patent columns
	ApplicationNumber  *string
	ApplicationStatus  *string
	PublicationDate    *string
	USPCClassification *string
	CPCClassifications *string
	Assignee           *string
	PriorityDate       *string
	PatentFamilyID     *string
	PatentPDFURL       *string
	ThumbnailURL       *string
	CitedByCount       *int
}

// FeedItem is one entry of a personalized feed as the client receives it.
// Every optional string is a Text, so "N/A" and absence look the same.
type FeedItem struct {
	ID       int64    `json:"id"`
	Type     ItemType `json:"type"`
	Title    string   `json:"title"`
	Abstract Text     `json:"abstract,omitzero"`
	Summary  Text     `json:"summary,omitzero"`
	Authors  Text     `json:"authors,omitzero"`
	Date     Text     `json:"date,omitzero"`
	Source   Text     `json:"source,omitzero"`
	DomainID *int64   `json:"domain_id,omitempty"`

	// Paper fields
	ArxivID    Text `json:"arxiv_id,omitzero"`
	PDFURL     Text `json:"pdf_url,omitzero"`
	DOI        Text `json:"doi,omitzero"`
	JournalRef Text `json:"journal_ref,omitzero"`
	Categories Text `json:"categories,omitzero"`
	Comment    Text `json:"comment,omitzero"`

	// Patent fields
	ApplicationNumber  Text `json:"application_number,omitzero"`
	ApplicationStatus  Text `json:"application_status,omitzero"`
	PublicationDate    Text `json:"publication_date,omitzero"`
	USPCClassification Text `json:"uspc_classification,omitzero"`
	CPCClassifications Text `json:"cpc_classifications,omitzero"`
	Assignee           Text `json:"assignee,omitzero"`
	PriorityDate       Text `json:"priority_date,omitzero"`
	PatentFamilyID     Text `json:"patent_family_id,omitzero"`
	PatentPDFURL       Text `json:"patent_pdf_url,omitzero"`
	ThumbnailURL       Text `json:"thumbnail_url,omitzero"`
	CitedByCount       *int `json:"cited_by_count,omitempty"`
}

// IsPaper reports whether the item is a paper.
func (f *FeedItem) IsPaper() bool {
	return f.Type == ItemTypePaper
}

// IsPatent reports whether the item is a patent.
func (f *FeedItem) IsPatent() bool {
	return f.Type == ItemTypePatent
}

// Citations returns the citation count when it is known and positive.
func (f *FeedItem) Citations() (int, bool) {
	if f.CitedByCount == nil || *f.CitedByCount <= 0 {
		return 0, false
	}
	return *f.CitedByCount, true
}
