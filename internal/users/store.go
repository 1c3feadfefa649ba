package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jwhyun/finbot/internal/db"
)

// ErrNotFound is returned when no user row exists for a username.
var ErrNotFound = errors.New("user not found")

// Profile is a user's investment profile as persisted in the users table.
// Field values are keyed by profile field key, not column name.
type Profile struct {
	Username string
	Fields   map[string]string
}

// fieldColumns maps profile field keys to users table columns. The column
// names follow the upstream account schema, which predates the field keys.
var fieldColumns = map[string]string{
	"age":                   "age",
	"risk_tolerance":        "risk_tolerance",
	"monthly_income":        "income",
	"income_stability":      "income_stability",
	"income_sources":        "income_source",
	"investment_horizon":    "period",
	"expected_return":       "expected_income",
	"expected_loss":         "expected_loss",
	"investment_purpose":    "purpose",
	"asset_allocation_type": "asset_allocation_type",
	"value_growth":          "value_growth",
	"risk_acceptance_level": "risk_acceptance_level",
	"investment_concern":    "investment_concern",
}

// columnOrder keeps SELECT and UPDATE statements deterministic.
var columnOrder = []string{
	"age", "risk_tolerance", "monthly_income", "income_stability",
	"income_sources", "investment_horizon", "expected_return",
	"expected_loss", "investment_purpose", "asset_allocation_type",
	"value_growth", "risk_acceptance_level", "investment_concern",
}

// Store reads and writes user profiles.
type Store struct {
	db *db.DB
}

// NewStore creates a user store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// GetByUsername loads a user's profile. Missing fields are absent from the
// returned map. Returns ErrNotFound when the user row does not exist.
func (s *Store) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	cols := make([]string, len(columnOrder))
	for i, key := range columnOrder {
		cols[i] = fieldColumns[key]
	}

	query := fmt.Sprintf("SELECT %s FROM users WHERE username = ?", strings.Join(cols, ", "))
	row := s.db.QueryRowContext(ctx, query, username)

	vals := make([]sql.NullString, len(columnOrder))
	scan := make([]any, len(vals))
	for i := range vals {
		scan[i] = &vals[i]
	}
	if err := row.Scan(scan...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading user %q: %w", username, err)
	}

	p := &Profile{Username: username, Fields: make(map[string]string)}
	for i, key := range columnOrder {
		if vals[i].Valid && vals[i].String != "" {
			p.Fields[key] = vals[i].String
		}
	}
	return p, nil
}

// UpsertProfile writes the given field values for a user, creating the row
// if needed. Only keys present in fields are written; other columns keep
// their stored values.
func (s *Store) UpsertProfile(ctx context.Context, username string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username) VALUES (?) ON CONFLICT(username) DO NOTHING", username)
	if err != nil {
		return fmt.Errorf("ensuring user %q: %w", username, err)
	}

	var sets []string
	var args []any
	for _, key := range columnOrder {
		v, ok := fields[key]
		if !ok {
			continue
		}
		col, ok := fieldColumns[key]
		if !ok {
			return fmt.Errorf("unknown profile field %q", key)
		}
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, username)

	query := fmt.Sprintf("UPDATE users SET %s WHERE username = ?", strings.Join(sets, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating profile for %q: %w", username, err)
	}
	return nil
}
