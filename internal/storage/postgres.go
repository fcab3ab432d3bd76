package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pricewatch-hq/pricewatch/internal/domain"
	"github.com/shopspring/decimal"
)

const uniqueViolationCode = "23505"

// Postgres is the repository over tracked_products and price_history.
type Postgres struct {
	pool *pgxpool.Pool
}

// Open connects a pgx pool using the explicit config and verifies the
// connection with a ping.
func Open(ctx context.Context, cfg Config) (*Postgres, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(pingCtx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// NewPostgres wraps an existing pool (tests inject their own).
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	if p == nil || p.pool == nil {
		return
	}
	p.pool.Close()
}

// Setup creates the schema if it does not exist. URL uniqueness, the
// cascade from observations to their product, and the fixed-point price
// column are all enforced here, by the store.
func (p *Postgres) Setup(ctx context.Context) error {
	const productsDDL = `
CREATE TABLE IF NOT EXISTS tracked_products (
    id BIGSERIAL PRIMARY KEY,
    url TEXT UNIQUE NOT NULL,
    name TEXT,
    tags TEXT[],
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	const historyDDL = `
CREATE TABLE IF NOT EXISTS price_history (
    id BIGSERIAL PRIMARY KEY,
    product_id BIGINT NOT NULL REFERENCES tracked_products(id) ON DELETE CASCADE,
    price NUMERIC(10, 2) NOT NULL CHECK (price >= 0),
    observed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

	if _, err := p.pool.Exec(ctx, productsDDL); err != nil {
		return fmt.Errorf("create tracked_products: %w", err)
	}
	if _, err := p.pool.Exec(ctx, historyDDL); err != nil {
		return fmt.Errorf("create price_history: %w", err)
	}
	return nil
}

// CreateTracked inserts a new tracked product and returns its id.
// A url collision surfaces as ErrDuplicateURL.
func (p *Postgres) CreateTracked(ctx context.Context, url, name string, tags []string) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		`INSERT INTO tracked_products (url, name, tags) VALUES ($1, $2, $3) RETURNING id`,
		url, name, tags).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateURL
		}
		return 0, fmt.Errorf("insert tracked product: %w", err)
	}
	return id, nil
}

// AppendObservation records one price reading. Pure insert; observations
// are never updated or individually deleted.
func (p *Postgres) AppendObservation(ctx context.Context, productID int64, price decimal.Decimal, observedAt time.Time) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO price_history (product_id, price, observed_at) VALUES ($1, $2, $3)`,
		productID, price, observedAt)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// CreateTrackedWithFirstObservation inserts the product and its first
// observation as one transaction: both rows persist or neither does, so a
// product can never exist with zero history at creation.
func (p *Postgres) CreateTrackedWithFirstObservation(ctx context.Context, url, name string, tags []string, price decimal.Decimal) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO tracked_products (url, name, tags) VALUES ($1, $2, $3) RETURNING id`,
		url, name, tags).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateURL
		}
		return 0, fmt.Errorf("insert tracked product: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO price_history (product_id, price) VALUES ($1, $2)`,
		id, price); err != nil {
		return 0, fmt.Errorf("insert first observation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return id, nil
}

// DeleteTracked removes a product; its observations go with it via the
// cascade. This is the only way observations are ever deleted.
func (p *Postgres) DeleteTracked(ctx context.Context, productID int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM tracked_products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete tracked product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListTracked returns all tracked products ordered by id.
func (p *Postgres) ListTracked(ctx context.Context) ([]domain.TrackedProduct, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, url, COALESCE(name, ''), COALESCE(tags, '{}'), created_at FROM tracked_products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tracked products: %w", err)
	}
	defer rows.Close()

	var out []domain.TrackedProduct
	for rows.Next() {
		var tp domain.TrackedProduct
		if err := rows.Scan(&tp.ID, &tp.URL, &tp.Name, &tp.Tags, &tp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tracked product: %w", err)
		}
		out = append(out, tp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTrackedWithLatestPrice returns one row per product together with its
// most recent observation. Latest is by observed_at, ties broken by the
// higher observation id. Products with no observations report a nil price.
func (p *Postgres) ListTrackedWithLatestPrice(ctx context.Context) ([]domain.TrackedSummary, error) {
	const q = `
SELECT DISTINCT ON (tp.id)
       tp.id, tp.url, COALESCE(tp.name, ''), COALESCE(tp.tags, '{}'), tp.created_at,
       ph.price, ph.observed_at
FROM tracked_products tp
LEFT JOIN price_history ph ON tp.id = ph.product_id
ORDER BY tp.id, ph.observed_at DESC NULLS LAST, ph.id DESC;`

	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tracked with latest price: %w", err)
	}
	defer rows.Close()

	var out []domain.TrackedSummary
	for rows.Next() {
		var s domain.TrackedSummary
		var price *decimal.Decimal
		var observedAt *time.Time
		if err := rows.Scan(&s.Product.ID, &s.Product.URL, &s.Product.Name, &s.Product.Tags,
			&s.Product.CreatedAt, &price, &observedAt); err != nil {
			return nil, fmt.Errorf("scan tracked summary: %w", err)
		}
		s.LatestPrice = price
		s.LatestObservedAt = observedAt
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestPrice returns the most recent observed price for a product, or
// ok=false when it has no observations yet.
func (p *Postgres) LatestPrice(ctx context.Context, productID int64) (decimal.Decimal, bool, error) {
	var price decimal.Decimal
	err := p.pool.QueryRow(ctx,
		`SELECT price FROM price_history WHERE product_id = $1 ORDER BY observed_at DESC, id DESC LIMIT 1`,
		productID).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, false, nil
		}
		return decimal.Decimal{}, false, fmt.Errorf("query latest price: %w", err)
	}
	return price, true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolationCode
}
