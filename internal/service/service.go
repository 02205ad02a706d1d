// Package service provides business logic for the backend API.
package service

import (
	"context"
	"errors"

	"github.com/innofeed/innofeed/internal/model"
)

// Service errors.
var (
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// DomainStore lists the domain catalog.
type DomainStore interface {
	ListDomains(ctx context.Context) ([]model.Domain, error)
}

// FeedStore reads items and preferences.
type FeedStore interface {
	GetPreferenceIDs(ctx context.Context, userID int64) ([]int64, error)
	ListItemsByDomains(ctx context.Context, domainIDs []int64) ([]model.Item, error)
	SetPreferences(ctx context.Context, userID int64, domainIDs []int64) error
}

// DomainCache holds a copy of the catalog. GetDomains returns nil on a miss.
type DomainCache interface {
	GetDomains(ctx context.Context) ([]model.Domain, error)
	SetDomains(ctx context.Context, domains []model.Domain) error
}
