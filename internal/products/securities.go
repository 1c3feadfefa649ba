package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jwhyun/finbot/internal/db"
)

// ErrNotFound is returned when no security matches a lookup.
var ErrNotFound = errors.New("security not found")

// Security is one listed stock in the securities index.
type Security struct {
	Code      string
	Name      string
	ShortName string
	Market    Market
	Price     float64
	PBR       sql.NullFloat64
	PER       sql.NullFloat64
	EPS       sql.NullFloat64
	Sector    string
	UpdatedAt time.Time
}

// SecurityStore provides lookups over the securities table.
type SecurityStore struct {
	db *db.DB
}

// NewSecurityStore creates a securities store.
func NewSecurityStore(d *db.DB) *SecurityStore {
	return &SecurityStore{db: d}
}

// Upsert inserts or replaces one security record.
func (s *SecurityStore) Upsert(ctx context.Context, sec Security) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO securities (code, name, short_name, market, price, pbr, per, eps, sector, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(code) DO UPDATE SET
		   name=excluded.name, short_name=excluded.short_name, market=excluded.market,
		   price=excluded.price, pbr=excluded.pbr, per=excluded.per, eps=excluded.eps,
		   sector=excluded.sector, updated_at=excluded.updated_at`,
		sec.Code, sec.Name, sec.ShortName, string(sec.Market),
		sec.Price, sec.PBR, sec.PER, sec.EPS, sec.Sector,
	)
	if err != nil {
		return fmt.Errorf("upserting security %s: %w", sec.Code, err)
	}
	return nil
}

// Lookup finds one security by name. Exact matches on the full or short name
// win; otherwise the first substring match is returned. Matching is
// case-insensitive. Returns ErrNotFound when nothing matches.
func (s *SecurityStore) Lookup(ctx context.Context, name string) (*Security, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNotFound
	}

	sec, err := s.scanOne(ctx,
		`SELECT code, name, short_name, market, price, pbr, per, eps, sector, updated_at
		 FROM securities
		 WHERE name = ? COLLATE NOCASE OR short_name = ? COLLATE NOCASE
		 LIMIT 1`, name, name)
	if err == nil {
		return sec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("looking up security %q: %w", name, err)
	}

	// Fuzzy fallback: substring match, shortest name first so that
	// "삼성전자" beats "삼성전자우" for the query "삼성전자 주가".
	pattern := "%" + name + "%"
	sec, err = s.scanOne(ctx,
		`SELECT code, name, short_name, market, price, pbr, per, eps, sector, updated_at
		 FROM securities
		 WHERE name LIKE ? COLLATE NOCASE OR short_name LIKE ? COLLATE NOCASE
		 ORDER BY length(name)
		 LIMIT 1`, pattern, pattern)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fuzzy lookup for %q: %w", name, err)
	}
	return sec, nil
}

// All returns every security, ordered by code. Used when seeding the
// vector index.
func (s *SecurityStore) All(ctx context.Context) ([]Security, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, name, short_name, market, price, pbr, per, eps, sector, updated_at
		 FROM securities ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("listing securities: %w", err)
	}
	defer rows.Close()

	var result []Security
	for rows.Next() {
		var sec Security
		var market string
		if err := rows.Scan(&sec.Code, &sec.Name, &sec.ShortName, &market,
			&sec.Price, &sec.PBR, &sec.PER, &sec.EPS, &sec.Sector, &sec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning security: %w", err)
		}
		sec.Market = Market(market)
		result = append(result, sec)
	}
	return result, rows.Err()
}

func (s *SecurityStore) scanOne(ctx context.Context, query string, args ...any) (*Security, error) {
	var sec Security
	var market string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&sec.Code, &sec.Name, &sec.ShortName, &market,
		&sec.Price, &sec.PBR, &sec.PER, &sec.EPS, &sec.Sector, &sec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sec.Market = Market(market)
	return &sec, nil
}

// IndexDocument renders the security as a catalog document for the vector
// index, with canonical metric names.
func (sec Security) IndexDocument() Document {
	metrics := map[string]float64{"price": sec.Price}
	if sec.PBR.Valid {
		metrics["pbr"] = sec.PBR.Float64
	}
	if sec.PER.Valid {
		metrics["per"] = sec.PER.Float64
	}
	if sec.EPS.Valid {
		metrics["eps"] = sec.EPS.Float64
	}

	category := StockCategoryFor(sec.Market)
	text := fmt.Sprintf("%s(%s) %s 종목. 섹터: %s", sec.Name, sec.Code, category, sec.Sector)

	return Document{
		ID:       "sec-" + sec.Code,
		Text:     text,
		Category: category,
		Company:  sec.Name,
		Code:     sec.Code,
		Metrics:  metrics,
	}
}
