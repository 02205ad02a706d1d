package feedsync

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innofeed/innofeed/internal/metrics"
	"github.com/innofeed/innofeed/internal/model"
)

func TestRegistry_MountGetUnmount(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	reg := NewRegistry(backend, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics.NewNoop())
	ctx := context.Background()

	_, ok := reg.Get("s1")
	assert.False(t, ok)

	page := reg.Mount(ctx, "s1", model.Identity{UserID: 7, Name: "Eve"})
	got, ok := reg.Get("s1")
	assert.True(t, ok)
	assert.Same(t, page, got)
	assert.Equal(t, "Eve", page.Snapshot().Identity.Name)

	again := reg.Mount(ctx, "s1", model.Identity{UserID: 7})
	assert.Same(t, page, again)
	assert.Equal(t, 1, reg.Len())

	reg.Unmount("s1")
	_, ok = reg.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_ConcurrentMountSharesPage(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	reg := NewRegistry(backend, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	var wg sync.WaitGroup
	pages := make([]*Page, 8)
	for i := range pages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pages[i] = reg.Mount(context.Background(), "shared", model.Identity{UserID: 1})
		}()
	}
	wg.Wait()

	for _, p := range pages[1:] {
		assert.Same(t, pages[0], p)
	}
	// a single mount: one domain load and one feed load
	assert.Len(t, backend.Calls(), 2)
}

func TestRegistry_SweepDropsIdlePages(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(&fakeBackend{}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }
	ctx := context.Background()

	reg.Mount(ctx, "idle", model.Identity{UserID: 1})
	reg.Mount(ctx, "busy", model.Identity{UserID: 2})

	now = now.Add(30 * time.Minute)
	_, ok := reg.Get("busy")
	require.True(t, ok)

	now = now.Add(45 * time.Minute)
	assert.Equal(t, 1, reg.Sweep(time.Hour))

	_, ok = reg.Get("idle")
	assert.False(t, ok)
	_, ok = reg.Get("busy")
	assert.True(t, ok)
}
