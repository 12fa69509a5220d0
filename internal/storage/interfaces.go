package storage

import (
	"context"

	"github.com/aman-zulfiqar/credit-program/internal/models"
)

// QuoteCache serves cached quotes and recent activity
type QuoteCache interface {
	// GetLatestQuote returns nil without error on a miss
	GetLatestQuote(ctx context.Context, pool string) (*models.PriceQuote, error)

	// RecentQuotes retrieves the most recent quotes, newest first
	RecentQuotes(ctx context.Context, limit int) ([]*models.PriceQuote, error)

	// RecentSwaps retrieves the most recent swap submissions, newest first
	RecentSwaps(ctx context.Context, limit int) ([]*models.SwapSubmission, error)
}

// QuoteStore defines the interface for persistent quote storage
type QuoteStore interface {
	InsertQuote(ctx context.Context, q *models.PriceQuote) error
	InsertSubmission(ctx context.Context, s *models.SwapSubmission) error
	QuoteHistory(ctx context.Context, pool string, limit int) ([]*models.PriceQuote, error)
	Close() error
}

// QuoteHandler is a function that processes published quotes
type QuoteHandler func(*models.PriceQuote)

// SwapHandler is a function that processes published swap submissions
type SwapHandler func(*models.SwapSubmission)
