package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo provides persistence for discount rules.
type Repo struct {
	Pool *pgxpool.Pool
}

const ruleColumns = `id, code, kind, value, percent_bps, min_spend, usage_limit, used_count, active, valid_from, valid_to`

// GetByCode loads a rule by its code. Codes are matched case-insensitively.
func (r *Repo) GetByCode(ctx context.Context, code string) (Rule, error) {
	if r == nil || r.Pool == nil {
		return Rule{}, errors.New("discount repo not configured")
	}
	row := r.Pool.QueryRow(ctx,
		`SELECT `+ruleColumns+` FROM discounts WHERE lower(code) = lower($1)`,
		strings.TrimSpace(code),
	)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, ErrUnknownCode
		}
		return Rule{}, fmt.Errorf("get discount: %w", err)
	}
	return rule, nil
}

// Create inserts a new rule and returns the stored row.
func (r *Repo) Create(ctx context.Context, rule Rule) (Rule, error) {
	if r == nil || r.Pool == nil {
		return Rule{}, errors.New("discount repo not configured")
	}
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	row := r.Pool.QueryRow(ctx,
		`INSERT INTO discounts (id, code, kind, value, percent_bps, min_spend, usage_limit, active, valid_from, valid_to)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+ruleColumns,
		rule.ID, rule.Code, rule.Kind, rule.Value, rule.PercentBps, rule.MinSpend,
		rule.UsageLimit, rule.Active, rule.ValidFrom, rule.ValidTo,
	)
	created, err := scanRule(row)
	if err != nil {
		return Rule{}, fmt.Errorf("create discount: %w", err)
	}
	return created, nil
}

// Update replaces the mutable fields of the rule identified by code.
func (r *Repo) Update(ctx context.Context, code string, rule Rule) (Rule, error) {
	if r == nil || r.Pool == nil {
		return Rule{}, errors.New("discount repo not configured")
	}
	row := r.Pool.QueryRow(ctx,
		`UPDATE discounts
		 SET kind = $2, value = $3, percent_bps = $4, min_spend = $5,
		     usage_limit = $6, active = $7, valid_from = $8, valid_to = $9,
		     updated_at = now()
		 WHERE lower(code) = lower($1)
		 RETURNING `+ruleColumns,
		strings.TrimSpace(code), rule.Kind, rule.Value, rule.PercentBps, rule.MinSpend,
		rule.UsageLimit, rule.Active, rule.ValidFrom, rule.ValidTo,
	)
	updated, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, ErrUnknownCode
		}
		return Rule{}, fmt.Errorf("update discount: %w", err)
	}
	return updated, nil
}

// List returns rules ordered by code with limit/offset pagination.
func (r *Repo) List(ctx context.Context, limit, offset int32) ([]Rule, error) {
	if r == nil || r.Pool == nil {
		return nil, errors.New("discount repo not configured")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT `+ruleColumns+` FROM discounts ORDER BY code LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	defer rows.Close()
	var rules []Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("list discounts: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// IncrementUsage bumps the redemption counter for a settled order.
func (r *Repo) IncrementUsage(ctx context.Context, code string) error {
	if r == nil || r.Pool == nil {
		return errors.New("discount repo not configured")
	}
	tag, err := r.Pool.Exec(ctx,
		`UPDATE discounts SET used_count = used_count + 1, updated_at = now() WHERE lower(code) = lower($1)`,
		strings.TrimSpace(code),
	)
	if err != nil {
		return fmt.Errorf("increment discount usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownCode
	}
	return nil
}

func scanRule(row pgx.Row) (Rule, error) {
	var rule Rule
	err := row.Scan(
		&rule.ID, &rule.Code, &rule.Kind, &rule.Value, &rule.PercentBps, &rule.MinSpend,
		&rule.UsageLimit, &rule.UsedCount, &rule.Active, &rule.ValidFrom, &rule.ValidTo,
	)
	return rule, err
}
