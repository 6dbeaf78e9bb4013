// Package postgres provides the Postgres-backed Store implementation.
//
// Expected schema:
//
//	CREATE TABLE products (
//		id BIGSERIAL PRIMARY KEY,
//		name TEXT NOT NULL,
//		sku TEXT,
//		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//	CREATE TABLE shops (
//		id BIGSERIAL PRIMARY KEY,
//		code TEXT NOT NULL UNIQUE,
//		name TEXT NOT NULL,
//		base_url TEXT NOT NULL,
//		price_selectors TEXT
//	);
//	CREATE TABLE product_links (
//		id BIGSERIAL PRIMARY KEY,
//		product_id BIGINT NOT NULL REFERENCES products(id),
//		shop_id BIGINT NOT NULL REFERENCES shops(id),
//		url TEXT NOT NULL,
//		is_active BOOLEAN NOT NULL DEFAULT TRUE,
//		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//		UNIQUE (product_id, shop_id, url)
//	);
//	CREATE TABLE price_logs (
//		id UUID PRIMARY KEY,
//		product_id BIGINT NOT NULL REFERENCES products(id),
//		shop_id BIGINT NOT NULL REFERENCES shops(id),
//		url TEXT NOT NULL,
//		price_minor BIGINT NOT NULL,
//		currency TEXT NOT NULL DEFAULT 'RUB',
//		status TEXT NOT NULL DEFAULT 'OK',
//		error_detail TEXT,
//		raw_text TEXT,
//		observed_at TIMESTAMPTZ NOT NULL
//	);
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkoval/pricewatch/internal/store"
	"github.com/dkoval/pricewatch/internal/tracking"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store implements store.Store on top of a pgx pool.
type Store struct {
	pool db
}

// New connects a Store using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for
// testing).
func NewWithPool(pool db) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const listActiveLinksQuery = `
SELECT l.id, l.product_id, l.shop_id, s.name, l.url, l.is_active, l.created_at,
	COALESCE(s.price_selectors, '')
FROM product_links l
JOIN shops s ON s.id = l.shop_id
WHERE l.is_active`

// ListActiveLinks loads active links joined with their shop's hint
// configuration.
func (s *Store) ListActiveLinks(ctx context.Context, productID *int64) ([]tracking.TrackedLink, error) {
	query := listActiveLinksQuery
	args := []any{}
	if productID != nil {
		query += " AND l.product_id = $1"
		args = append(args, *productID)
	}
	query += " ORDER BY l.id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active links: %w", err)
	}
	defer rows.Close()

	var links []tracking.TrackedLink
	for rows.Next() {
		var l tracking.TrackedLink
		if err := rows.Scan(
			&l.ID, &l.ProductID, &l.ShopID, &l.ShopName, &l.URL,
			&l.Active, &l.CreatedAt, &l.ShopSelectors,
		); err != nil {
			return nil, fmt.Errorf("scan link row: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate link rows: %w", err)
	}
	return links, nil
}

// GetShopHints returns the shop's ordered hint list, nil when the shop is
// unknown or has no configuration.
func (s *Store) GetShopHints(ctx context.Context, shopID int64) ([]string, error) {
	var raw string
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(price_selectors, '') FROM shops WHERE id = $1`,
		shopID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query shop hints: %w", err)
	}
	return tracking.SplitHints(raw), nil
}

const insertObservationQuery = `
INSERT INTO price_logs (
	id, product_id, shop_id, url, price_minor, currency,
	status, error_detail, raw_text, observed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// AppendObservations writes the batch inside one transaction.
func (s *Store) AppendObservations(ctx context.Context, obs []tracking.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin observation batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, o := range obs {
		if _, err := tx.Exec(ctx, insertObservationQuery,
			o.ID, o.ProductID, o.ShopID, o.URL, o.PriceMinor, o.Currency,
			string(o.Status), o.ErrorDetail, o.RawText, o.ObservedAt,
		); err != nil {
			return fmt.Errorf("insert observation for %s: %w", o.URL, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit observation batch: %w", err)
	}
	return nil
}

// RecentObservations returns the newest observations joined with product and
// shop names, ordered by observation timestamp descending.
func (s *Store) RecentObservations(ctx context.Context, limit int) ([]store.ObservationRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
SELECT p.name, sh.name, o.url, o.price_minor, o.currency, o.status, o.observed_at
FROM price_logs o
JOIN products p ON p.id = o.product_id
JOIN shops sh ON sh.id = o.shop_id
ORDER BY o.observed_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent observations: %w", err)
	}
	defer rows.Close()

	var out []store.ObservationRow
	for rows.Next() {
		var (
			row    store.ObservationRow
			status string
		)
		if err := rows.Scan(
			&row.ProductName, &row.ShopName, &row.URL,
			&row.PriceMinor, &row.Currency, &status, &row.ObservedAt,
		); err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}
		row.Status = tracking.Status(status)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observation rows: %w", err)
	}
	return out, nil
}

// BestPrices returns the lowest observed OK price per product, newest first
// among equals.
func (s *Store) BestPrices(ctx context.Context) ([]store.BestPrice, error) {
	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT ON (o.product_id)
	o.product_id, p.name, sh.name, o.price_minor, o.currency, o.observed_at
FROM price_logs o
JOIN products p ON p.id = o.product_id
JOIN shops sh ON sh.id = o.shop_id
WHERE o.status = 'OK'
ORDER BY o.product_id, o.price_minor, o.observed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query best prices: %w", err)
	}
	defer rows.Close()

	var out []store.BestPrice
	for rows.Next() {
		var row store.BestPrice
		if err := rows.Scan(
			&row.ProductID, &row.ProductName, &row.ShopName,
			&row.PriceMinor, &row.Currency, &row.ObservedAt,
		); err != nil {
			return nil, fmt.Errorf("scan best price row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate best price rows: %w", err)
	}
	return out, nil
}
