package service

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/balloon_quote/internal/models"
	"github.com/GTDGit/balloon_quote/internal/utils"
)

// QuotationStore is a place quotations are persisted to. Both the Redis
// cache and the PostgreSQL repository implement it.
type QuotationStore interface {
	Upsert(ctx context.Context, q *models.Quotation) error
	Get(ctx context.Context, number string) (*models.Quotation, error)
	List(ctx context.Context) ([]models.Quotation, error)
	Delete(ctx context.Context, number string) error
}

// PersistenceService writes quotations to a local cache and a remote store.
// The two writes are independent: a failure of one never blocks the other
// and never reaches the operator.
type PersistenceService struct {
	local  QuotationStore
	remote QuotationStore
}

// NewPersistenceService constructs a PersistenceService.
func NewPersistenceService(local, remote QuotationStore) *PersistenceService {
	return &PersistenceService{local: local, remote: remote}
}

// Save upserts the quotation into both stores. It reports whether at least
// one store accepted the write.
func (s *PersistenceService) Save(ctx context.Context, q *models.Quotation) bool {
	saved := false

	if err := s.local.Upsert(ctx, q); err != nil {
		log.Warn().Err(err).Str("quotation_number", q.QuotationNumber).Msg("Failed to save quotation to cache")
	} else {
		saved = true
	}

	if err := s.remote.Upsert(ctx, q); err != nil {
		log.Error().Err(err).Str("quotation_number", q.QuotationNumber).Msg("Failed to save quotation to database")
	} else {
		saved = true
	}

	if saved {
		log.Debug().
			Str("quotation_number", q.QuotationNumber).
			Int("items", len(q.Items)).
			Str("total", q.Total.String()).
			Msg("Quotation saved")
	}
	return saved
}

// List merges both stores by quotation number, newest first. A failing
// store is skipped; the call fails only when both do.
func (s *PersistenceService) List(ctx context.Context) ([]models.Quotation, error) {
	localList, localErr := s.local.List(ctx)
	if localErr != nil {
		log.Warn().Err(localErr).Msg("Failed to list cached quotations")
	}
	remoteList, remoteErr := s.remote.List(ctx)
	if remoteErr != nil {
		log.Error().Err(remoteErr).Msg("Failed to list stored quotations")
	}
	if localErr != nil && remoteErr != nil {
		return nil, remoteErr
	}

	byNumber := make(map[string]models.Quotation, len(localList)+len(remoteList))
	for _, q := range remoteList {
		byNumber[q.QuotationNumber] = q
	}
	for _, q := range localList {
		// The cache holds the latest write unless the database copy is newer.
		if existing, ok := byNumber[q.QuotationNumber]; ok && existing.Date.After(q.Date) {
			continue
		}
		byNumber[q.QuotationNumber] = q
	}

	out := make([]models.Quotation, 0, len(byNumber))
	for _, q := range byNumber {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].QuotationNumber > out[j].QuotationNumber
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// Get returns a quotation from the cache, falling back to the database.
// A database hit is written back to the cache.
func (s *PersistenceService) Get(ctx context.Context, number string) (*models.Quotation, error) {
	q, err := s.local.Get(ctx, number)
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, utils.ErrQuotationNotFound) {
		log.Warn().Err(err).Str("quotation_number", number).Msg("Cache lookup failed")
	}

	q, err = s.remote.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := s.local.Upsert(ctx, q); err != nil {
		log.Warn().Err(err).Str("quotation_number", number).Msg("Failed to warm quotation cache")
	}
	return q, nil
}

// Delete removes a quotation from both stores. It returns
// ErrQuotationNotFound when neither store knew the number.
func (s *PersistenceService) Delete(ctx context.Context, number string) error {
	_, cacheErr := s.local.Get(ctx, number)
	inCache := cacheErr == nil

	if err := s.local.Delete(ctx, number); err != nil {
		log.Warn().Err(err).Str("quotation_number", number).Msg("Failed to delete cached quotation")
	}

	err := s.remote.Delete(ctx, number)
	switch {
	case err == nil:
	case errors.Is(err, utils.ErrQuotationNotFound):
		if !inCache {
			return utils.ErrQuotationNotFound
		}
	default:
		log.Error().Err(err).Str("quotation_number", number).Msg("Failed to delete quotation")
		return err
	}

	log.Info().Str("quotation_number", number).Msg("Quotation deleted")
	return nil
}
