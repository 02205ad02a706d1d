package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/innofeed/innofeed/internal/model"
)

const (
	patentPageSize = 20
	patentSource   = "Google Patents"
	patentEngine   = "google_patents"
	notAvailable   = "N/A"
)

type patentResponse struct {
	OrganicResults []patentResult `json:"organic_results"`
}

type patentResult struct {
	Title           string `json:"title"`
	Snippet         string `json:"snippet"`
	PatentID        string `json:"patent_id"`
	PublicationDate string `json:"publication_date"`
	PriorityDate    string `json:"priority_date"`
	FamilyID        string `json:"family_id"`
	Status          string `json:"status"`
	PDF             string `json:"pdf"`
	Thumbnail       string `json:"thumbnail"`
	Inventors       []struct {
		Name string `json:"name"`
	} `json:"inventors"`
	Assignees []struct {
		Name string `json:"name"`
	} `json:"assignees"`
	Classifications struct {
		CPC []patentCode `json:"cpc"`
		US  []patentCode `json:"us"`
	} `json:"classifications"`
	CitedBy struct {
		Total int `json:"total"`
	} `json:"cited_by"`
}

type patentCode struct {
	Code string `json:"code"`
}

// PatentClient pages through SerpAPI's Google Patents engine.
type PatentClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

// NewPatentClient creates a client that waits interval between requests.
func NewPatentClient(baseURL, apiKey string, httpClient *http.Client, interval time.Duration) *PatentClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &PatentClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		now:        time.Now,
	}
}

// Fetch returns up to maxResults patents matching query. Pages stop at the
// first empty one. On a failed request the patents gathered so far are
// returned with the error.
func (c *PatentClient) Fetch(ctx context.Context, query string, maxResults int) ([]model.Item, error) {
	if maxResults <= 0 {
		return []model.Item{}, nil
	}
	patents := make([]model.Item, 0, maxResults)

	for page := 0; len(patents) < maxResults; page++ {
		results, err := c.fetchPage(ctx, query, page)
		if err != nil {
			return patents, err
		}
		if len(results) == 0 {
			break
		}

		for i := range results {
			if len(patents) == maxResults {
				break
			}
			patents = append(patents, c.toItem(&results[i]))
		}
	}

	return patents, nil
}

func (c *PatentClient) fetchPage(ctx context.Context, query string, page int) ([]patentResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("engine", patentEngine)
	q.Set("q", query)
	q.Set("api_key", c.apiKey)
	q.Set("start", strconv.Itoa(page*patentPageSize))
	q.Set("num", strconv.Itoa(patentPageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build patents request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request URL carries the API key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("fetch patents %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch patents %q: status %d", query, resp.StatusCode)
	}

	var body patentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode patents %q: %w", query, err)
	}
	return body.OrganicResults, nil
}

// toItem maps a search result. Missing text fields are stored as "N/A",
// except assignee, PDF and thumbnail, which stay empty.
func (c *PatentClient) toItem(r *patentResult) model.Item {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = untitled
	}

	abstract := title
	if snippet := strings.TrimSpace(r.Snippet); snippet != "" {
		abstract = title + ". " + snippet
	}

	date := c.now().UTC()
	if t, err := time.Parse(time.DateOnly, r.PublicationDate); err == nil {
		date = t
	}

	inventors := make([]string, 0, len(r.Inventors))
	for _, inv := range r.Inventors {
		if inv.Name != "" {
			inventors = append(inventors, inv.Name)
		}
	}

	var assignee *string
	if len(r.Assignees) > 0 {
		assignee = orNA(r.Assignees[0].Name)
	}

	cited := r.CitedBy.Total

	return model.Item{
		Type:               model.ItemTypePatent,
		Title:              title,
		Abstract:           &abstract,
		Authors:            orNA(strings.Join(inventors, ", ")),
		Date:               &date,
		Source:             optional(patentSource),
		ApplicationNumber:  orNA(r.PatentID),
		ApplicationStatus:  orNA(r.Status),
		PublicationDate:    orNA(r.PublicationDate),
		USPCClassification: orNA(joinCodes(r.Classifications.US)),
		CPCClassifications: orNA(joinCodes(r.Classifications.CPC)),
		Assignee:           assignee,
		PriorityDate:       orNA(r.PriorityDate),
		PatentFamilyID:     orNA(r.FamilyID),
		PatentPDFURL:       optional(r.PDF),
		ThumbnailURL:       optional(r.Thumbnail),
		CitedByCount:       &cited,
	}
}

func joinCodes(codes []patentCode) string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c.Code != "" {
			out = append(out, c.Code)
		}
	}
	return strings.Join(out, ", ")
}

func orNA(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		s = notAvailable
	}
	return &s
}
