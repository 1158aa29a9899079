package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shelf-inventory/shelf/internal/query"
)

// Querier is the subset of pgxpool.Pool used by PGSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ErrNotFound indicates a single-record query matched nothing.
var ErrNotFound = errors.New("provider: not found")

const salesSelect = `SUM(s.total_price)::float8 AS "totalRevenue", SUM(s.quantity)::int AS "totalQuantity"
FROM sales s WHERE s.user_id = $1`

var statements = map[query.Key]string{
	SalesDaily: `SELECT EXTRACT(DAY FROM s.sold_at)::int AS day, EXTRACT(MONTH FROM s.sold_at)::int AS month,
EXTRACT(YEAR FROM s.sold_at)::int AS year, ` + salesSelect + `
GROUP BY 1, 2, 3 ORDER BY 3, 2, 1`,
	SalesWeekly: `SELECT EXTRACT(WEEK FROM s.sold_at)::int AS week, EXTRACT(ISOYEAR FROM s.sold_at)::int AS year, ` + salesSelect + `
GROUP BY 1, 2 ORDER BY 2, 1`,
	SalesMonthly: `SELECT EXTRACT(MONTH FROM s.sold_at)::int AS month, EXTRACT(YEAR FROM s.sold_at)::int AS year, ` + salesSelect + `
GROUP BY 1, 2 ORDER BY 2, 1`,
	Products: `SELECT p.id::text AS "_id", p.name, b.name AS brand, c.name AS category,
p.price::float8 AS price, p.quantity
FROM products p
LEFT JOIN brands b ON b.id = p.brand_id
LEFT JOIN categories c ON c.id = p.category_id
WHERE p.user_id = $1 ORDER BY p.name`,
	Categories: `SELECT c.name AS category, COALESCE(SUM(p.quantity), 0)::int AS stock,
c.capacity::int AS total, c.color
FROM categories c
LEFT JOIN products p ON p.category_id = c.id
WHERE c.user_id = $1
GROUP BY c.id, c.name, c.capacity, c.color ORDER BY c.name`,
	Brands: `SELECT b.name AS "brandName", COUNT(p.id)::int AS "productCount"
FROM brands b
LEFT JOIN products p ON p.brand_id = b.id
WHERE b.user_id = $1
GROUP BY b.id, b.name ORDER BY b.name`,
	Sellers: `SELECT id::text AS "_id", name, email, status FROM sellers WHERE user_id = $1 ORDER BY name`,
	Purchases: `SELECT id::text AS "_id", product_name AS "productName", seller_name AS "sellerName",
quantity, unit_price::float8 AS "unitPrice", total_price::float8 AS "totalPrice",
to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS') AS date
FROM purchases WHERE user_id = $1 ORDER BY created_at DESC LIMIT 50`,
	ProfileSelf: `SELECT name, email, COALESCE(title, '') AS title, COALESCE(description, '') AS description,
status, COALESCE(address, '') AS address, COALESCE(phone, '') AS phone, COALESCE(city, '') AS city,
COALESCE(country, '') AS country, COALESCE(facebook, '') AS facebook, COALESCE(twitter, '') AS twitter,
COALESCE(linkedin, '') AS linkedin, COALESCE(instagram, '') AS instagram, COALESCE(avatar, '') AS avatar
FROM users WHERE id::text = $1`,
}

// PGSource reads dashboard payloads straight from the reporting database.
// Rows come back in the same shape the REST API uses.
type PGSource struct {
	db Querier
}

// NewPGSource wraps a pool or transaction.
func NewPGSource(db Querier) *PGSource {
	return &PGSource{db: db}
}

// Fetch implements Provider.
func (s *PGSource) Fetch(ctx context.Context, req Request) (any, error) {
	stmt, ok := statements[req.Key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, req.Key)
	}
	if req.UserID == "" {
		return nil, ErrUnauthorized
	}
	rows, err := s.db.Query(ctx, stmt, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("provider: query %s: %w", req.Key, describe(err))
	}
	records, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("provider: scan %s: %w", req.Key, describe(err))
	}
	if req.Key == ProfileSelf {
		if len(records) == 0 {
			return nil, ErrNotFound
		}
		return records[0], nil
	}
	if records == nil {
		records = []map[string]any{}
	}
	return records, nil
}

// profileColumns lists the editable columns in the order UpdateProfile binds
// them, starting at $2.
var profileColumns = []string{
	"name", "email", "title", "description", "address", "phone",
	"city", "country", "facebook", "twitter", "linkedin", "instagram",
}

// UpdateProfile writes the edited profile fields of the caller. A taken email
// is reported like the REST API does, as a 400 UpstreamError.
func (s *PGSource) UpdateProfile(ctx context.Context, caller Caller, fields map[string]string) error {
	if caller.UserID == "" {
		return ErrUnauthorized
	}
	sets := make([]string, 0, len(profileColumns))
	args := make([]any, 0, len(profileColumns)+1)
	args = append(args, caller.UserID)
	for i, col := range profileColumns {
		if col == "name" || col == "email" {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
		} else {
			sets = append(sets, fmt.Sprintf("%s = NULLIF($%d, '')", col, i+2))
		}
		args = append(args, fields[col])
	}
	stmt := "UPDATE users SET " + strings.Join(sets, ", ") + ", updated_at = now() WHERE id::text = $1"
	tag, err := s.db.Exec(ctx, stmt, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &UpstreamError{Status: http.StatusBadRequest, Message: "Email already in use"}
		}
		return fmt.Errorf("provider: update profile: %w", describe(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrUnauthorized
	}
	return nil
}

// ActiveUserIDs lists the accounts whose dashboards are worth warming.
func (s *PGSource) ActiveUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT id::text FROM users WHERE COALESCE(status, 'active') = 'active' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("provider: list users: %w", describe(err))
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("provider: list users: %w", describe(err))
	}
	return ids, nil
}

func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s (%s): %w", pgErr.Message, pgErr.Code, err)
	}
	return err
}
