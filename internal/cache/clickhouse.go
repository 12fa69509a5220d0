package cache

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/credit-program/internal/config"
	"github.com/aman-zulfiqar/credit-program/internal/constants"
	"github.com/aman-zulfiqar/credit-program/internal/models"
	"github.com/aman-zulfiqar/credit-program/internal/storage"
)

// QuoteStore appends quotes and swap submissions to ClickHouse.
type QuoteStore struct {
	conn driver.Conn
}

var _ storage.QuoteStore = (*QuoteStore)(nil)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + constants.TableQuotes + ` (
		id String,
		pool LowCardinality(String),
		address String,
		sqrt_price_x64 String,
		price String,
		bono_amount UInt64,
		usdc_value String,
		source LowCardinality(String),
		signature String,
		quoted_at DateTime64(3)
	) ENGINE = MergeTree ORDER BY (pool, quoted_at)`,
	`CREATE TABLE IF NOT EXISTS ` + constants.TableSwaps + ` (
		execution_id String,
		signature String,
		pool LowCardinality(String),
		signer String,
		usdc_amount UInt64,
		bono_amount_threshold UInt64,
		expected_bono UInt64,
		slippage_bps UInt16,
		success Bool,
		error String,
		submitted_at DateTime64(3),
		duration_ms Int64
	) ENGINE = MergeTree ORDER BY (pool, submitted_at)`,
}

func NewQuoteStore(cfg config.ClickHouseConfig, logger *logrus.Logger) (*QuoteStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if logger != nil {
		logger.WithField("addr", cfg.Addr).Info("connected to ClickHouse")
	}

	return &QuoteStore{conn: conn}, nil
}

// CreateTables creates the quote and swap tables if they are missing.
func (s *QuoteStore) CreateTables(ctx context.Context) error {
	for _, ddl := range schema {
		if err := s.conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (s *QuoteStore) InsertQuote(ctx context.Context, q *models.PriceQuote) error {
	query := `
		INSERT INTO ` + constants.TableQuotes + ` (
			id, pool, address, sqrt_price_x64, price, bono_amount,
			usdc_value, source, signature, quoted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		q.ID,
		q.Pool,
		q.Address,
		q.SqrtPriceX64,
		q.Price,
		q.BonoAmount,
		q.USDCValue,
		q.Source,
		q.Signature,
		q.QuotedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}
	return nil
}

func (s *QuoteStore) InsertSubmission(ctx context.Context, sub *models.SwapSubmission) error {
	query := `
		INSERT INTO ` + constants.TableSwaps + ` (
			execution_id, signature, pool, signer, usdc_amount, bono_amount_threshold,
			expected_bono, slippage_bps, success, error, submitted_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		sub.ExecutionID,
		sub.Signature,
		sub.Pool,
		sub.Signer,
		sub.USDCAmount,
		sub.BonoAmountThreshold,
		sub.ExpectedBono,
		sub.SlippageBps,
		sub.Success,
		sub.Error,
		sub.SubmittedAt,
		sub.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert swap: %w", err)
	}
	return nil
}

// QuoteHistory returns the newest quotes of pool.
func (s *QuoteStore) QuoteHistory(ctx context.Context, pool string, limit int) ([]*models.PriceQuote, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := s.conn.Query(ctx, `
		SELECT id, pool, address, sqrt_price_x64, price, bono_amount,
			usdc_value, source, signature, quoted_at
		FROM `+constants.TableQuotes+`
		WHERE pool = ?
		ORDER BY quoted_at DESC
		LIMIT ?`, pool, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	var out []*models.PriceQuote
	for rows.Next() {
		var q models.PriceQuote
		if err := rows.Scan(&q.ID, &q.Pool, &q.Address, &q.SqrtPriceX64, &q.Price, &q.BonoAmount,
			&q.USDCValue, &q.Source, &q.Signature, &q.QuotedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		out = append(out, &q)
	}
	return out, rows.Err()
}

func (s *QuoteStore) Close() error {
	return s.conn.Close()
}
