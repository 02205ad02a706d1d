// Package ingest fills the item catalog from arXiv.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/innofeed/innofeed/internal/model"
	"github.com/innofeed/innofeed/internal/summarizer"
)

// Store is the persistence the ingester writes to.
type Store interface {
	EnsureDomain(ctx context.Context, name string) (int64, error)
	ItemExistsByTitle(ctx context.Context, title string) (bool, error)
	InsertItem(ctx context.Context, item *model.Item) (bool, error)
}

// Fetcher returns up to max items matching query: an arXiv category for
// papers, a search for patents.
type Fetcher interface {
	Fetch(ctx context.Context, query string, max int) ([]model.Item, error)
}

// CatalogInvalidator drops cached copies of the domain list.
type CatalogInvalidator interface {
	InvalidateDomains(ctx context.Context) error
}

// Result summarizes one ingest pass.
type Result struct {
	RunID    string
	Domains  int
	Fetched  int
	Inserted int
	Skipped  int
	Failed   int
}

// Ingester runs ingest passes.
type Ingester struct {
	store      Store
	fetcher    Fetcher
	patents    Fetcher
	summarizer summarizer.Summarizer
	catalog    CatalogInvalidator
	sources    Sources
	maxResults int
	logger     *slog.Logger
}

// Options configure an Ingester.
type Options struct {
	Sources    Sources
	MaxResults int
	// Catalog is optional.
	Catalog CatalogInvalidator
	// Patents is optional; without it patent queries are ignored.
	Patents Fetcher
}

// New creates an Ingester.
func New(store Store, fetcher Fetcher, s summarizer.Summarizer, opts Options, logger *slog.Logger) *Ingester {
	if s == nil {
		s = summarizer.Truncator{}
	}
	return &Ingester{
		store:      store,
		fetcher:    fetcher,
		summarizer: s,
		catalog:    opts.Catalog,
		patents:    opts.Patents,
		sources:    opts.Sources,
		maxResults: opts.MaxResults,
		logger:     logger.With("component", "ingest"),
	}
}

// Run seeds every listed domain, then fetches, summarizes and stores the
// papers of each domain that has a category and, with a patent fetcher, the
// patents of each domain that has a patent query. Items whose title is
// already stored are skipped. A failing source is logged and does not stop
// the pass.
func (in *Ingester) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: ulid.Make().String()}
	logger := in.logger.With("run_id", res.RunID)
	logger.InfoContext(ctx, "ingest_started", "domains", len(in.sources.Domains))

	ids := make(map[string]int64, len(in.sources.Domains))
	for _, src := range in.sources.Domains {
		id, err := in.store.EnsureDomain(ctx, src.Name)
		if err != nil {
			return res, fmt.Errorf("seed domain %q: %w", src.Name, err)
		}
		ids[src.Name] = id
	}
	if in.catalog != nil {
		if err := in.catalog.InvalidateDomains(ctx); err != nil {
			logger.WarnContext(ctx, "failed to invalidate domain cache", "error", err)
		}
	}

	for _, src := range in.sources.Domains {
		fetchPapers := src.Category != ""
		fetchPatents := src.PatentQuery != "" && in.patents != nil
		if !fetchPapers && !fetchPatents {
			logger.DebugContext(ctx, "domain has no source, skipping", "domain", src.Name)
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Domains++
		if fetchPapers {
			in.ingestSource(ctx, logger.With("kind", model.ItemTypePaper), in.fetcher, src.Name, src.Category, ids[src.Name], &res)
		}
		if fetchPatents {
			in.ingestSource(ctx, logger.With("kind", model.ItemTypePatent), in.patents, src.Name, src.PatentQuery, ids[src.Name], &res)
		}
	}

	logger.InfoContext(ctx, "ingest_finished",
		"domains", res.Domains,
		"fetched", res.Fetched,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
		"failed", res.Failed,
	)
	return res, nil
}

func (in *Ingester) ingestSource(ctx context.Context, logger *slog.Logger, f Fetcher, domain, query string, domainID int64, res *Result) {
	items, err := f.Fetch(ctx, query, in.maxResults)
	if err != nil {
		logger.ErrorContext(ctx, "fetch failed",
			"domain", domain,
			"query", query,
			"fetched", len(items),
			"error", err,
		)
	}
	res.Fetched += len(items)

	for i := range items {
		item := &items[i]

		exists, err := in.store.ItemExistsByTitle(ctx, item.Title)
		if err != nil {
			logger.ErrorContext(ctx, "dedup check failed", "title", item.Title, "error", err)
			res.Failed++
			continue
		}
		if exists {
			res.Skipped++
			continue
		}

		abstract := ""
		if item.Abstract != nil {
			abstract = *item.Abstract
		}
		summary, err := in.summarizer.Summarize(ctx, abstract)
		if err != nil {
			summary = summarizer.Truncate(abstract)
		}
		item.Summary = &summary
		item.DomainID = &domainID

		inserted, err := in.store.InsertItem(ctx, item)
		switch {
		case err != nil:
			logger.ErrorContext(ctx, "insert failed", "title", item.Title, "error", err)
			res.Failed++
		case inserted:
			res.Inserted++
		default:
			res.Skipped++
		}
	}

	logger.InfoContext(ctx, "domain ingested", "domain", domain, "items", len(items))
}
