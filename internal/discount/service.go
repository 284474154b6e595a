package discount

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Source abstracts rule lookup so tests can stub persistence.
type Source interface {
	GetByCode(ctx context.Context, code string) (Rule, error)
}

// PreviewResult describes the outcome of evaluating a code without applying it.
type PreviewResult struct {
	Code     string `json:"code"`
	Kind     string `json:"kind"`
	Amount   int64  `json:"amount"`
	Subtotal int64  `json:"subtotal"`
}

// Service resolves and evaluates discount codes with a short-lived rule cache.
type Service struct {
	Repo     Source
	Cache    *redis.Client
	CacheTTL time.Duration
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cacheKey(code string) string {
	return "discount:rule:" + strings.ToLower(strings.TrimSpace(code))
}

// Resolve returns the rule for a code, consulting the cache first.
func (s *Service) Resolve(ctx context.Context, code string) (Rule, error) {
	if s == nil || s.Repo == nil {
		return Rule{}, errors.New("discount service not configured")
	}
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return Rule{}, ErrUnknownCode
	}
	if rule, ok := s.fromCache(ctx, trimmed); ok {
		return rule, nil
	}
	rule, err := s.Repo.GetByCode(ctx, trimmed)
	if err != nil {
		return Rule{}, err
	}
	s.store(ctx, trimmed, rule)
	return rule, nil
}

// Preview validates the code against a subtotal and reports the amount that
// would be deducted. Nothing is mutated; settlement happens elsewhere.
func (s *Service) Preview(ctx context.Context, code string, subtotal int64) (PreviewResult, error) {
	rule, err := s.Resolve(ctx, code)
	if err != nil {
		return PreviewResult{}, err
	}
	if err := rule.Validate(s.now(), subtotal); err != nil {
		return PreviewResult{}, err
	}
	return PreviewResult{
		Code:     rule.Code,
		Kind:     rule.Kind,
		Amount:   rule.Amount(subtotal),
		Subtotal: subtotal,
	}, nil
}

// Invalidate drops the cached rule after an admin mutation.
func (s *Service) Invalidate(ctx context.Context, code string) {
	if s == nil || s.Cache == nil {
		return
	}
	_ = s.Cache.Del(ctx, cacheKey(code)).Err()
}

func (s *Service) fromCache(ctx context.Context, code string) (Rule, bool) {
	if s.Cache == nil || s.CacheTTL <= 0 {
		return Rule{}, false
	}
	data, err := s.Cache.Get(ctx, cacheKey(code)).Bytes()
	if err != nil {
		return Rule{}, false
	}
	var rule Rule
	if err := json.Unmarshal(data, &rule); err != nil {
		return Rule{}, false
	}
	return rule, true
}

func (s *Service) store(ctx context.Context, code string, rule Rule) {
	if s.Cache == nil || s.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(rule)
	if err != nil {
		return
	}
	_ = s.Cache.Set(ctx, cacheKey(code), data, s.CacheTTL).Err()
}
