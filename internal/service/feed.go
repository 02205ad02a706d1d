package service

import (
	"context"
	"fmt"

	"github.com/innofeed/innofeed/internal/model"
)

// Feed is a user's personalized item list.
// HasPreferences is false when the user selected no domains.
type Feed struct {
	UserID         int64
	Items          []model.Item
	HasPreferences bool
}

// FeedService builds feeds and stores domain selections.
type FeedService struct {
	store FeedStore
}

// NewFeedService creates a new FeedService.
func NewFeedService(store FeedStore) *FeedService {
	return &FeedService{store: store}
}

// Feed returns the items of the user's selected domains, newest first.
func (s *FeedService) Feed(ctx context.Context, userID int64) (*Feed, error) {
	ids, err := s.store.GetPreferenceIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return &Feed{UserID: userID, Items: []model.Item{}}, nil
	}

	items, err := s.store.ListItemsByDomains(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &Feed{UserID: userID, Items: items, HasPreferences: true}, nil
}

// SetPreferences replaces the user's selected domains.
func (s *FeedService) SetPreferences(ctx context.Context, userID int64, domainIDs []int64) error {
	if err := s.store.SetPreferences(ctx, userID, domainIDs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
