package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innofeed/innofeed/internal/model"
)

type memStore struct {
	mu      sync.Mutex
	domains map[string]int64
	items   []model.Item
	titles  map[string]bool
}

func newMemStore() *memStore {
	return &memStore{domains: map[string]int64{}, titles: map[string]bool{}}
}

func (s *memStore) EnsureDomain(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.domains[name]; ok {
		return id, nil
	}
	id := int64(len(s.domains) + 1)
	s.domains[name] = id
	return id, nil
}

func (s *memStore) ItemExistsByTitle(_ context.Context, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.titles[title], nil
}

func (s *memStore) InsertItem(_ context.Context, item *model.Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.titles[item.Title] {
		return false, nil
	}
	s.titles[item.Title] = true
	s.items = append(s.items, *item)
	return true, nil
}

type fakeFetcher struct {
	byCategory map[string][]string
	errFor     map[string]error
	calls      []string
}

func (f *fakeFetcher) Fetch(_ context.Context, category string, _ int) ([]model.Item, error) {
	f.calls = append(f.calls, category)
	var out []model.Item
	for _, title := range f.byCategory[category] {
		abstract := "Abstract of " + title
		out = append(out, model.Item{Type: model.ItemTypePaper, Title: title, Abstract: &abstract})
	}
	return out, f.errFor[category]
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateDomains(context.Context) error {
	c.calls++
	return nil
}

type upperSummarizer struct{}

func (upperSummarizer) Summarize(_ context.Context, text string) (string, error) {
	return "summary: " + text, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIngester_Run(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	fetcher := &fakeFetcher{byCategory: map[string][]string{
		"cs.AI": {"Attention", "Diffusion"},
		"cs.CR": {"Zero Knowledge"},
	}}
	catalog := &countingInvalidator{}
	in := New(store, fetcher, upperSummarizer{}, Options{
		Sources: Sources{Domains: []Source{
			{Name: "AI", Category: "cs.AI"},
			{Name: "Cybersecurity", Category: "cs.CR"},
			{Name: "Blockchain", Category: "cs.CR"},
			{Name: "Space"},
		}},
		MaxResults: 50,
		Catalog:    catalog,
	}, discardLogger())

	res, err := in.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 3, res.Domains, "domains without a category are not fetched")
	assert.Equal(t, 4, res.Fetched)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 1, res.Skipped, "the shared category's paper is stored once")
	assert.Equal(t, []string{"cs.AI", "cs.CR", "cs.CR"}, fetcher.calls)

	assert.Len(t, store.domains, 4, "every listed domain is seeded")
	assert.Equal(t, 1, catalog.calls)

	require.Len(t, store.items, 3)
	first := store.items[0]
	require.NotNil(t, first.Summary)
	assert.Equal(t, "summary: Abstract of Attention", *first.Summary)
	require.NotNil(t, first.DomainID)
	assert.Equal(t, store.domains["AI"], *first.DomainID)
	assert.Equal(t, store.domains["Cybersecurity"], *store.items[2].DomainID)
}

func TestIngester_RunWithPatents(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	papers := &fakeFetcher{byCategory: map[string][]string{"cs.AI": {"Attention"}}}
	patents := &fakeFetcher{byCategory: map[string][]string{
		"machine learning": {"Neural accelerator"},
		"quantum":          {"Qubit trap"},
	}}
	in := New(store, papers, upperSummarizer{}, Options{
		Sources: Sources{Domains: []Source{
			{Name: "AI", Category: "cs.AI", PatentQuery: "machine learning"},
			{Name: "Quantum", PatentQuery: "quantum"},
			{Name: "Space"},
		}},
		MaxResults: 10,
		Patents:    patents,
	}, discardLogger())

	res, err := in.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Domains, "a patent query alone is enough to fetch")
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, []string{"cs.AI"}, papers.calls)
	assert.Equal(t, []string{"machine learning", "quantum"}, patents.calls)

	require.Len(t, store.items, 3)
	qubit := store.items[2]
	assert.Equal(t, "Qubit trap", qubit.Title)
	require.NotNil(t, qubit.DomainID)
	assert.Equal(t, store.domains["Quantum"], *qubit.DomainID)
	require.NotNil(t, qubit.Summary)
}

func TestIngester_PatentQueriesIgnoredWithoutFetcher(t *testing.T) {
	t.Parallel()

	papers := &fakeFetcher{}
	in := New(newMemStore(), papers, nil, Options{
		Sources:    Sources{Domains: []Source{{Name: "Quantum", PatentQuery: "quantum"}}},
		MaxResults: 10,
	}, discardLogger())

	res, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Domains)
	assert.Empty(t, papers.calls)
}

func TestIngester_RunIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	fetcher := &fakeFetcher{byCategory: map[string][]string{"cs.AI": {"A", "B"}}}
	in := New(store, fetcher, nil, Options{
		Sources:    Sources{Domains: []Source{{Name: "AI", Category: "cs.AI"}}},
		MaxResults: 10,
	}, discardLogger())

	_, err := in.Run(context.Background())
	require.NoError(t, err)
	res, err := in.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, res.Inserted)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, store.items, 2)
	require.NotNil(t, store.items[0].Summary)
	assert.Equal(t, "Abstract of A...", *store.items[0].Summary, "nil summarizer truncates")
}

func TestIngester_FetchErrorKeepsPartialResults(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	fetcher := &fakeFetcher{
		byCategory: map[string][]string{"cs.AI": {"Partial"}, "cs.RO": {"Robot"}},
		errFor:     map[string]error{"cs.AI": errors.New("status 503")},
	}
	in := New(store, fetcher, nil, Options{
		Sources: Sources{Domains: []Source{
			{Name: "AI", Category: "cs.AI"},
			{Name: "Robotics", Category: "cs.RO"},
		}},
		MaxResults: 10,
	}, discardLogger())

	res, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
}

func TestIngester_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{}
	in := New(newMemStore(), fetcher, nil, Options{
		Sources:    Sources{Domains: []Source{{Name: "AI", Category: "cs.AI"}}},
		MaxResults: 10,
	}, discardLogger())

	_, err := in.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fetcher.calls)
}

type countingRunner struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRunner) Run(context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return Result{}, nil
}

func TestScheduler_InvalidSpec(t *testing.T) {
	t.Parallel()

	s := NewScheduler(context.Background(), "not a spec", &countingRunner{}, discardLogger())
	assert.Error(t, s.Start())
}

func TestScheduler_RunSkipsWhenContextDone(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	runner := &countingRunner{}
	s := NewScheduler(ctx, "@hourly", runner, discardLogger())

	s.run()
	cancel()
	s.run()

	assert.Equal(t, 1, runner.calls)
}
