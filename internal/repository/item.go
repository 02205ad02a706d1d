package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/innofeed/innofeed/internal/model"
)

const itemColumns = `
	id, type, title, abstract, summary, authors, date, source, domain_id,
	application_number, application_status, publication_date, uspc_classification,
	cpc_classifications, assignee, priority_date, patent_family_id, patent_pdf_url,
	thumbnail_url, cited_by_count,
	arxiv_id, pdf_url, doi, journal_ref, categories, comment
`

// ListItemsByDomains returns the items of the given domains, newest first.
// Items without a date sort last.
func (r *Repository) ListItemsByDomains(ctx context.Context, domainIDs []int64) ([]model.Item, error) {
	if len(domainIDs) == 0 {
		return []model.Item{}, nil
	}

	query := `SELECT ` + itemColumns + `
		FROM items
		WHERE domain_id = ANY($1)
		ORDER BY date DESC NULLS LAST, id DESC
	`

	rows, err := r.pool.Query(ctx, query, domainIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items, err := pgx.CollectRows(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("failed to scan items: %w", err)
	}
	return items, nil
}

// InsertItem stores an item unless one with the same title exists.
// It reports whether a row was written.
func (r *Repository) InsertItem(ctx context.Context, item *model.Item) (bool, error) {
	query := `
		INSERT INTO items (
			type, title, abstract, summary, authors, date, source, domain_id,
			application_number, application_status, publication_date, uspc_classification,
			cpc_classifications, assignee, priority_date, patent_family_id, patent_pdf_url,
			thumbnail_url, cited_by_count,
			arxiv_id, pdf_url, doi, journal_ref, categories, comment
		)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::text, $6::timestamp, $7::text, $8::integer,
			$9::text, $10::text, $11::text, $12::text,
			$13::text, $14::text, $15::text, $16::text, $17::text,
			$18::text, $19::integer,
			$20::text, $21::text, $22::text, $23::text, $24::text, $25::text
		WHERE NOT EXISTS (SELECT 1 FROM items WHERE title = $2::text)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		item.Type, item.Title, item.Abstract, item.Summary, item.Authors,
		item.Date, item.Source, item.DomainID,
		item.ApplicationNumber, item.ApplicationStatus, item.PublicationDate,
		item.USPCClassification, item.CPCClassifications, item.Assignee,
		item.PriorityDate, item.PatentFamilyID, item.PatentPDFURL,
		item.ThumbnailURL, item.CitedByCount,
		item.ArxivID, item.PDFURL, item.DOI, item.JournalRef, item.Categories, item.Comment,
	).Scan(&item.ID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert item: %w", err)
	}
	return true, nil
}

// ItemExistsByTitle reports whether an item with the title is stored.
func (r *Repository) ItemExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE title = $1)`, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check item title: %w", err)
	}
	return exists, nil
}

func scanItem(row pgx.CollectableRow) (model.Item, error) {
	var it model.Item
	err := row.Scan(
		&it.ID, &it.Type, &it.Title, &it.Abstract, &it.Summary, &it.Authors,
		&it.Date, &it.Source, &it.DomainID,
		&it.ApplicationNumber, &it.ApplicationStatus, &it.PublicationDate,
		&it.USPCClassification, &it.CPCClassifications, &it.Assignee,
		&it.PriorityDate, &it.PatentFamilyID, &it.PatentPDFURL,
		&it.ThumbnailURL, &it.CitedByCount,
		&it.ArxivID, &it.PDFURL, &it.DOI, &it.JournalRef, &it.Categories, &it.Comment,
	)
	return it, err
}
