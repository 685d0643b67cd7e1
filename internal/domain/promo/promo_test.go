package promo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(prices ...string) []Item {
	out := make([]Item, len(prices))
	for i, p := range prices {
		out[i] = Item{ProductID: "p", Price: decimal.RequireFromString(p), Quantity: 1}
	}
	return out
}

func TestApply_Percentage(t *testing.T) {
	rule := &Rule{Code: "HALFGLOW", DiscountType: DiscountPercentage, Value: decimal.NewFromInt(50)}

	d, err := Apply(rule, items("100", "300"))
	require.NoError(t, err)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(200)), "amount %s", d.Amount)
}

func TestApply_FixedCappedAtSubtotal(t *testing.T) {
	rule := &Rule{Code: "SAVETWOK", DiscountType: DiscountFixed, Value: decimal.NewFromInt(200)}

	d, err := Apply(rule, items("50"))
	require.NoError(t, err)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(50)), "amount %s", d.Amount)
}

func TestApply_FreeLowest(t *testing.T) {
	rule := &Rule{Code: "GLOWBDAY", DiscountType: DiscountFreeLowest}

	d, err := Apply(rule, items("250", "99.50", "400"))
	require.NoError(t, err)
	assert.True(t, d.Amount.Equal(decimal.RequireFromString("99.50")), "amount %s", d.Amount)
}

func TestApply_MinItemsNotMet(t *testing.T) {
	rule := &Rule{Code: "LIPLOVER", DiscountType: DiscountFreeLowest, MinItems: 2}

	_, err := Apply(rule, items("250"))
	require.ErrorIs(t, err, ErrInvalidPromo)
}

func TestApply_MaxDiscountCap(t *testing.T) {
	rule := &Rule{
		Code:         "HALFGLOW",
		DiscountType: DiscountPercentage,
		Value:        decimal.NewFromInt(50),
		MaxDiscount:  decimal.NewFromInt(100),
	}

	d, err := Apply(rule, items("1000"))
	require.NoError(t, err)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(100)), "amount %s", d.Amount)
}

type mockPromoRepo struct {
	rule       *Rule
	findErr    error
	increments int
}

func (m *mockPromoRepo) FindByCode(context.Context, string) (*Rule, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.rule, nil
}

func (m *mockPromoRepo) IncrementUses(context.Context, string) error {
	m.increments++
	return nil
}

func TestValidate_UnknownCode(t *testing.T) {
	v := NewRepoValidator(&mockPromoRepo{findErr: ErrInvalidPromo})

	_, err := v.Validate(context.Background(), "NOPE", items("100"))
	require.ErrorIs(t, err, ErrInvalidPromo)
}

func TestValidate_Expired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	repo := &mockPromoRepo{rule: &Rule{
		Code:         "OLD",
		DiscountType: DiscountPercentage,
		Value:        decimal.NewFromInt(10),
		ValidUntil:   &past,
	}}
	v := NewRepoValidator(repo)

	_, err := v.Validate(context.Background(), "OLD", items("100"))
	require.ErrorIs(t, err, ErrExpired)
	assert.Zero(t, repo.increments)
}

func TestValidate_NotYetValid(t *testing.T) {
	future := time.Now().Add(time.Hour)
	v := NewRepoValidator(&mockPromoRepo{rule: &Rule{
		Code:         "SOON",
		DiscountType: DiscountPercentage,
		Value:        decimal.NewFromInt(10),
		ValidFrom:    &future,
	}})

	_, err := v.Validate(context.Background(), "SOON", items("100"))
	require.ErrorIs(t, err, ErrExpired)
}

func TestValidate_UsageLimit(t *testing.T) {
	v := NewRepoValidator(&mockPromoRepo{rule: &Rule{
		Code:         "USED",
		DiscountType: DiscountPercentage,
		Value:        decimal.NewFromInt(10),
		MaxUses:      5,
		Uses:         5,
	}})

	_, err := v.Validate(context.Background(), "USED", items("100"))
	require.ErrorIs(t, err, ErrUsageLimitReached)
}

func TestValidate_HasNoSideEffects(t *testing.T) {
	repo := &mockPromoRepo{rule: &Rule{
		Code:         "FIRSTBUY",
		DiscountType: DiscountPercentage,
		Value:        decimal.NewFromInt(15),
	}}
	v := NewRepoValidator(repo)

	// Quoting the same code repeatedly never consumes a use.
	for i := 0; i < 3; i++ {
		d, err := v.Validate(context.Background(), "FIRSTBUY", items("200"))
		require.NoError(t, err)
		assert.True(t, d.Amount.Equal(decimal.NewFromInt(30)), "amount %s", d.Amount)
	}
	assert.Zero(t, repo.increments)
}

func TestConsume_IncrementsUses(t *testing.T) {
	repo := &mockPromoRepo{rule: &Rule{
		Code:         "FIRSTBUY",
		DiscountType: DiscountPercentage,
		Value:        decimal.NewFromInt(15),
	}}
	v := NewRepoValidator(repo)

	require.NoError(t, v.Consume(context.Background(), "FIRSTBUY"))
	assert.Equal(t, 1, repo.increments)
}
