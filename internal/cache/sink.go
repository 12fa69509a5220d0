package cache

import (
	"context"
	"errors"

	"github.com/aman-zulfiqar/credit-program/internal/models"
	"github.com/aman-zulfiqar/credit-program/internal/storage"
)

// Sink fans quotes and submissions out to the Redis cache, the pub/sub feed
// and ClickHouse. Any of them may be nil.
type Sink struct {
	cache  *PriceCache
	pubsub *PubSubManager
	store  storage.QuoteStore
}

func NewSink(cache *PriceCache, pubsub *PubSubManager, store storage.QuoteStore) *Sink {
	return &Sink{cache: cache, pubsub: pubsub, store: store}
}

// RecordQuote writes q everywhere and returns the joined failures.
func (s *Sink) RecordQuote(ctx context.Context, q *models.PriceQuote) error {
	var errs []error
	if s.cache != nil {
		errs = append(errs, s.cache.SetLatestQuote(ctx, q))
	}
	if s.pubsub != nil {
		errs = append(errs, s.pubsub.PublishQuote(ctx, q))
	}
	if s.store != nil {
		errs = append(errs, s.store.InsertQuote(ctx, q))
	}
	return errors.Join(errs...)
}

// RecordSubmission writes sub everywhere and returns the joined failures.
func (s *Sink) RecordSubmission(ctx context.Context, sub *models.SwapSubmission) error {
	var errs []error
	if s.cache != nil {
		errs = append(errs, s.cache.AddRecentSwap(ctx, sub))
	}
	if s.pubsub != nil {
		errs = append(errs, s.pubsub.PublishSwap(ctx, sub))
	}
	if s.store != nil {
		errs = append(errs, s.store.InsertSubmission(ctx, sub))
	}
	return errors.Join(errs...)
}
