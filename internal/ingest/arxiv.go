package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"
	"golang.org/x/time/rate"

	"github.com/innofeed/innofeed/internal/model"
)

const (
	arxivBatchSize = 25
	arxivSource    = "arXiv"
	arxivExtension = "arxiv"
	untitled       = "No title"
)

// ArxivClient pages through the arXiv Atom API, newest submissions first.
type ArxivClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	parser     *atom.Parser
	now        func() time.Time
}

// NewArxivClient creates a client that waits interval between requests.
func NewArxivClient(baseURL string, httpClient *http.Client, interval time.Duration) *ArxivClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &ArxivClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		parser:     &atom.Parser{},
		now:        time.Now,
	}
}

// Fetch returns up to maxResults papers of the category. Batches stop at
// the first empty page. On a failed request the papers gathered so far are
// returned with the error.
func (c *ArxivClient) Fetch(ctx context.Context, category string, maxResults int) ([]model.Item, error) {
	if maxResults <= 0 {
		return []model.Item{}, nil
	}
	papers := make([]model.Item, 0, maxResults)

	for start := 0; len(papers) < maxResults; {
		size := min(arxivBatchSize, maxResults-len(papers))

		entries, err := c.fetchBatch(ctx, category, start, size)
		if err != nil {
			return papers, err
		}
		if len(entries) == 0 {
			break
		}

		for _, e := range entries {
			papers = append(papers, c.toItem(e))
		}
		start += size
	}

	return papers, nil
}

func (c *ArxivClient) fetchBatch(ctx context.Context, category string, start, size int) ([]*atom.Entry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("search_query", "cat:"+category)
	q.Set("sortBy", "submittedDate")
	q.Set("sortOrder", "descending")
	q.Set("start", strconv.Itoa(start))
	q.Set("max_results", strconv.Itoa(size))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build arxiv request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch arxiv %s: %w", category, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch arxiv %s: status %d", category, resp.StatusCode)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse arxiv %s: %w", category, err)
	}
	return feed.Entries, nil
}

func (c *ArxivClient) toItem(e *atom.Entry) model.Item {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = untitled
	}

	published := c.now().UTC()
	if e.PublishedParsed != nil {
		published = e.PublishedParsed.UTC()
	}

	authors := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if a != nil && a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	categories := make([]string, 0, len(e.Categories))
	for _, cat := range e.Categories {
		if cat != nil && cat.Term != "" {
			categories = append(categories, cat.Term)
		}
	}

	item := model.Item{
		Type:       model.ItemTypePaper,
		Title:      title,
		Abstract:   optional(strings.TrimSpace(e.Summary)),
		Authors:    optional(strings.Join(authors, ", ")),
		Date:       &published,
		Source:     optional(arxivSource),
		Categories: optional(strings.Join(categories, ", ")),
		DOI:        extensionValue(e.Extensions, "doi"),
		JournalRef: extensionValue(e.Extensions, "journal_ref"),
		Comment:    extensionValue(e.Extensions, "comment"),
	}

	if e.ID != "" {
		idx := strings.LastIndex(e.ID, "/abs/")
		id := e.ID
		if idx >= 0 {
			id = e.ID[idx+len("/abs/"):]
		}
		item.ArxivID = &id
	}

	for _, l := range e.Links {
		if l != nil && l.Title == "pdf" {
			href := l.Href
			item.PDFURL = &href
			break
		}
	}

	return item
}

func extensionValue(exts ext.Extensions, name string) *string {
	values := exts[arxivExtension][name]
	if len(values) == 0 {
		return nil
	}
	return optional(strings.TrimSpace(values[0].Value))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
