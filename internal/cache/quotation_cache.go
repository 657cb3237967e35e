package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GTDGit/balloon_quote/internal/models"
	"github.com/GTDGit/balloon_quote/internal/utils"
)

const quotationIndexKey = "quotation:index"

// QuotationCache is the local quotation store. Each quotation is kept as a
// JSON document under quotation:{number}; a set indexes the known numbers.
type QuotationCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewQuotationCache creates a QuotationCache. A zero ttl keeps entries forever.
func NewQuotationCache(redis *RedisClient, ttl time.Duration) *QuotationCache {
	return &QuotationCache{redis: redis, ttl: ttl}
}

func (c *QuotationCache) key(number string) string {
	return fmt.Sprintf("quotation:%s", number)
}

// Upsert replaces the cached quotation for its number.
func (c *QuotationCache) Upsert(ctx context.Context, q *models.Quotation) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal quotation: %w", err)
	}
	if err := c.redis.Set(ctx, c.key(q.QuotationNumber), string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to cache quotation: %w", err)
	}
	if err := c.redis.SAdd(ctx, quotationIndexKey, q.QuotationNumber); err != nil {
		return fmt.Errorf("failed to index quotation: %w", err)
	}
	return nil
}

// Get returns a cached quotation.
func (c *QuotationCache) Get(ctx context.Context, number string) (*models.Quotation, error) {
	raw, err := c.redis.Get(ctx, c.key(number))
	if errors.Is(err, redis.Nil) {
		return nil, utils.ErrQuotationNotFound
	}
	if err != nil {
		return nil, err
	}
	var q models.Quotation
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quotation: %w", err)
	}
	return &q, nil
}

// List returns every cached quotation, newest first. Index members whose
// document expired are pruned.
func (c *QuotationCache) List(ctx context.Context) ([]models.Quotation, error) {
	numbers, err := c.redis.SMembers(ctx, quotationIndexKey)
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return []models.Quotation{}, nil
	}

	keys := make([]string, len(numbers))
	for i, n := range numbers {
		keys[i] = c.key(n)
	}
	values, err := c.redis.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}

	out := make([]models.Quotation, 0, len(values))
	var stale []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, numbers[i])
			continue
		}
		var q models.Quotation
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			stale = append(stale, numbers[i])
			continue
		}
		out = append(out, q)
	}
	if len(stale) > 0 {
		_ = c.redis.SRem(ctx, quotationIndexKey, stale...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// Delete removes a quotation from the cache. Deleting an unknown number is
// not an error.
func (c *QuotationCache) Delete(ctx context.Context, number string) error {
	if err := c.redis.Delete(ctx, c.key(number)); err != nil {
		return err
	}
	return c.redis.SRem(ctx, quotationIndexKey, number)
}
