package promo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Validator validates a promo code against a set of cart items and, once an
// order actually commits, consumes one use of the code. Validate has no side
// effects so quotes and payment initiation may call it freely; only Consume
// touches the usage counter.
type Validator interface {
	Validate(ctx context.Context, code string, items []Item) (*Discount, error)
	Consume(ctx context.Context, code string) error
}

// RepoValidator implements Validator by looking up promo rules from a
// Repository and applying them via the Apply function.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate looks up the promo rule for the given code, checks temporal
// validity and usage limits, and applies it to the cart items. It reads but
// never writes; a quoted code stays usable until Consume.
func (v *RepoValidator) Validate(ctx context.Context, code string, items []Item) (*Discount, error) {
	rule, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidPromo) {
			return nil, ErrInvalidPromo
		}
		return nil, errors.Wrap(err, "lookup promo code")
	}

	now := v.now()
	if rule.ValidFrom != nil && now.Before(*rule.ValidFrom) {
		return nil, ErrExpired
	}
	if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
		return nil, ErrExpired
	}
	if rule.MaxUses > 0 && rule.Uses >= rule.MaxUses {
		return nil, ErrUsageLimitReached
	}

	d, err := Apply(rule, items)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Consume burns one use of the code. Called exactly once per committed
// order, after the order row is persisted.
func (v *RepoValidator) Consume(ctx context.Context, code string) error {
	if err := v.repo.IncrementUses(ctx, code); err != nil {
		return errors.Wrap(err, "increment promo uses")
	}
	return nil
}
