package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/innofeed/innofeed/internal/model"
)

const (
	domainsKeyspace = "domains"
	// DomainsTTL bounds how long a catalog change can stay invisible.
	DomainsTTL = 10 * time.Minute
)

// GetDomains returns the cached catalog. Returns nil on a miss.
func (c *Cache) GetDomains(ctx context.Context) ([]model.Domain, error) {
	data, err := c.client.Get(ctx, c.key(domainsKeyspace)).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var domains []model.Domain
	if err := json.Unmarshal(data, &domains); err != nil {
		return nil, nil //nolint:nilerr
	}
	return domains, nil
}

// SetDomains caches the catalog.
func (c *Cache) SetDomains(ctx context.Context, domains []model.Domain) error {
	if domains == nil {
		domains = []model.Domain{}
	}
	data, err := json.Marshal(domains)
	if err != nil {
		return fmt.Errorf("marshal domains: %w", err)
	}
	return c.client.Set(ctx, c.key(domainsKeyspace), data, DomainsTTL).Err()
}

// InvalidateDomains drops the cached catalog. Ingest calls it after seeding
// new domains.
func (c *Cache) InvalidateDomains(ctx context.Context) error {
	return c.client.Del(ctx, c.key(domainsKeyspace)).Err()
}
