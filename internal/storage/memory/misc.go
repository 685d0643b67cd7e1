package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/glowmart/glowmart-api/internal/domain/cart"
	"github.com/glowmart/glowmart-api/internal/domain/promo"
	"github.com/glowmart/glowmart-api/internal/domain/review"
	"github.com/glowmart/glowmart-api/internal/domain/settings"
	"github.com/glowmart/glowmart-api/internal/domain/user"
)

// --- Settings ---

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository is an in-memory settings.Repository.
type SettingsRepository struct {
	mu sync.RWMutex
	s  settings.Settings
}

// NewSettingsRepository returns a settings store seeded with s.
func NewSettingsRepository(s settings.Settings) *SettingsRepository {
	return &SettingsRepository{s: s}
}

func (r *SettingsRepository) Get(context.Context) (*settings.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.s
	return &s, nil
}

func (r *SettingsRepository) Update(_ context.Context, s *settings.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s = *s
	r.s.UpdatedAt = time.Now()
	return nil
}

// --- Promo codes ---

var _ promo.Repository = (*PromoRepository)(nil)

// PromoRepository is an in-memory promo.Repository. Codes match
// case-insensitively and deactivated codes are invisible, as in the
// PostgreSQL implementation.
type PromoRepository struct {
	mu       sync.RWMutex
	rules    map[string]promo.Rule
	inactive map[string]bool
}

// NewPromoRepository returns a promo store seeded with the given rules.
func NewPromoRepository(rules ...promo.Rule) *PromoRepository {
	m := make(map[string]promo.Rule, len(rules))
	for _, rule := range rules {
		m[strings.ToUpper(rule.Code)] = rule
	}
	return &PromoRepository{rules: m, inactive: make(map[string]bool)}
}

func (r *PromoRepository) FindByCode(_ context.Context, code string) (*promo.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToUpper(code)
	rule, ok := r.rules[key]
	if !ok || r.inactive[key] {
		return nil, promo.ErrInvalidPromo
	}
	return &rule, nil
}

func (r *PromoRepository) IncrementUses(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToUpper(code)
	rule, ok := r.rules[key]
	if !ok {
		return promo.ErrInvalidPromo
	}
	rule.Uses++
	r.rules[key] = rule
	return nil
}

// Uses reports the current usage counter of a code.
func (r *PromoRepository) Uses(code string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules[strings.ToUpper(code)].Uses
}

// Deactivate hides a code from lookups, like clearing the active flag.
func (r *PromoRepository) Deactivate(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inactive[strings.ToUpper(code)] = true
}

// --- Reviews ---

var _ review.Repository = (*ReviewRepository)(nil)

type reviewKey struct{ userID, productID string }

// ReviewRepository is an in-memory review.Repository.
type ReviewRepository struct {
	mu    sync.RWMutex
	items map[reviewKey]review.Review
}

// NewReviewRepository returns an empty in-memory review store.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[reviewKey]review.Review)}
}

func (r *ReviewRepository) Create(_ context.Context, rv *review.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reviewKey{rv.UserID, rv.ProductID}
	if _, ok := r.items[key]; ok {
		return review.ErrAlreadyReviewed
	}
	r.items[key] = *rv
	return nil
}

func (r *ReviewRepository) Exists(_ context.Context, userID, productID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[reviewKey{userID, productID}]
	return ok, nil
}

func (r *ReviewRepository) ListByProduct(_ context.Context, productID string) ([]review.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]review.Review, 0)
	for _, rv := range r.items {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- Users ---

var _ user.Repository = (*UserRepository)(nil)

// UserRepository is an in-memory user.Repository.
type UserRepository struct {
	mu    sync.RWMutex
	items map[string]user.User
}

// NewUserRepository returns an in-memory user store seeded with users.
func NewUserRepository(users ...user.User) *UserRepository {
	m := make(map[string]user.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &UserRepository{items: m}
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	r.items[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}

// --- Wishlist ---

var _ cart.WishlistRepository = (*WishlistRepository)(nil)

// WishlistRepository is an in-memory cart.WishlistRepository.
type WishlistRepository struct {
	mu    sync.RWMutex
	items map[cartKey]cart.WishlistItem
}

// NewWishlistRepository returns an empty in-memory wishlist store.
func NewWishlistRepository() *WishlistRepository {
	return &WishlistRepository{items: make(map[cartKey]cart.WishlistItem)}
}

func (r *WishlistRepository) ListByUser(_ context.Context, userID string) ([]cart.WishlistItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cart.WishlistItem, 0)
	for _, it := range r.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

func (r *WishlistRepository) Add(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cartKey{userID, productID}
	if _, ok := r.items[key]; ok {
		return nil
	}
	r.items[key] = cart.WishlistItem{UserID: userID, ProductID: productID, AddedAt: time.Now()}
	return nil
}

func (r *WishlistRepository) Remove(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, cartKey{userID, productID})
	return nil
}

// --- Addresses ---

var _ user.AddressRepository = (*AddressRepository)(nil)

// AddressRepository is an in-memory user.AddressRepository enforcing the
// per-user address limit.
type AddressRepository struct {
	mu    sync.RWMutex
	items map[string]user.Address
}

// NewAddressRepository returns an empty in-memory address store.
func NewAddressRepository() *AddressRepository {
	return &AddressRepository{items: make(map[string]user.Address)}
}

func (r *AddressRepository) ListByUser(_ context.Context, userID string) ([]user.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.Address, 0)
	for _, a := range r.items {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *AddressRepository) GetByID(_ context.Context, userID, id string) (*user.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok || a.UserID != userID {
		return nil, user.ErrAddressNotFound
	}
	return &a, nil
}

func (r *AddressRepository) Create(_ context.Context, a *user.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, existing := range r.items {
		if existing.UserID == a.UserID {
			count++
		}
	}
	if count >= user.MaxAddresses {
		return user.ErrAddressLimit
	}
	if count == 0 {
		a.IsDefault = true
	}
	r.items[a.ID] = *a
	return nil
}

func (r *AddressRepository) Update(_ context.Context, a *user.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[a.ID]
	if !ok || existing.UserID != a.UserID {
		return user.ErrAddressNotFound
	}
	r.items[a.ID] = *a
	return nil
}

func (r *AddressRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok || a.UserID != userID {
		return user.ErrAddressNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *AddressRepository) SetDefault(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.items[id]
	if !ok || target.UserID != userID {
		return user.ErrAddressNotFound
	}
	for key, a := range r.items {
		if a.UserID == userID {
			a.IsDefault = key == id
			r.items[key] = a
		}
	}
	return nil
}
