// Package handler exposes the storefront and admin HTTP API. It decodes
// JSON at the edge, delegates to domain services, and maps domain errors
// onto HTTP status codes in one place.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/glowmart/glowmart-api/internal/domain/auth"
	"github.com/glowmart/glowmart-api/internal/domain/cart"
	"github.com/glowmart/glowmart-api/internal/domain/checkout"
	"github.com/glowmart/glowmart-api/internal/domain/order"
	"github.com/glowmart/glowmart-api/internal/domain/product"
	"github.com/glowmart/glowmart-api/internal/domain/promo"
	"github.com/glowmart/glowmart-api/internal/domain/review"
	"github.com/glowmart/glowmart-api/internal/domain/settings"
	"github.com/glowmart/glowmart-api/internal/domain/stats"
	"github.com/glowmart/glowmart-api/internal/domain/user"
	"github.com/glowmart/glowmart-api/internal/payment"
	"github.com/glowmart/glowmart-api/internal/realtime"
)

// maxBodyBytes caps request bodies. Review image lists fit comfortably.
const maxBodyBytes = 1 << 20

// EventSource streams change events for the admin dashboard. Satisfied by
// realtime.RedisPublisher.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan realtime.Event, error)
}

// Handler carries every dependency the HTTP surface needs.
type Handler struct {
	users     user.Repository
	addresses user.AddressRepository
	tokens    *auth.Tokens
	products  product.Repository
	carts     cart.Repository
	wishlist  cart.WishlistRepository
	checkout  *checkout.Service
	orders    *order.Service
	orderRepo order.Repository
	reviews   review.Repository
	reviewSvc *review.Service
	settings  settings.Repository
	stats     *stats.Aggregator
	events    realtime.Publisher
	stream    EventSource
}

// Deps bundles the constructor arguments for Handler.
type Deps struct {
	Users     user.Repository
	Addresses user.AddressRepository
	Tokens    *auth.Tokens
	Products  product.Repository
	Carts     cart.Repository
	Wishlist  cart.WishlistRepository
	Checkout  *checkout.Service
	Orders    *order.Service
	OrderRepo order.Repository
	Reviews   review.Repository
	ReviewSvc *review.Service
	Settings  settings.Repository
	Stats     *stats.Aggregator
	Events    realtime.Publisher
	// Stream is optional; when nil the events endpoint reports 503.
	Stream EventSource
}

// New constructs a Handler.
func New(d Deps) *Handler {
	return &Handler{
		users:     d.Users,
		addresses: d.Addresses,
		tokens:    d.Tokens,
		products:  d.Products,
		carts:     d.Carts,
		wishlist:  d.Wishlist,
		checkout:  d.Checkout,
		orders:    d.Orders,
		orderRepo: d.OrderRepo,
		reviews:   d.Reviews,
		reviewSvc: d.ReviewSvc,
		settings:  d.Settings,
		stats:     d.Stats,
		events:    d.Events,
		stream:    d.Stream,
	}
}

// Routes registers every API route on a fresh mux. Authentication and
// authorization wrap each handler here so the route table doubles as the
// access-control table.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Public.
	mux.HandleFunc("POST /api/auth/register", h.register)
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("GET /api/products/{id}/reviews", h.listReviews)
	mux.HandleFunc("GET /api/settings", h.publicSettings)

	// Customer.
	shop := func(fn http.HandlerFunc) http.Handler {
		return h.authenticate(h.require(auth.ActionShop, fn))
	}
	mux.Handle("GET /api/me", shop(h.me))
	mux.Handle("GET /api/cart", shop(h.getCart))
	mux.Handle("POST /api/cart", shop(h.addToCart))
	mux.Handle("PUT /api/cart/{productID}", shop(h.setCartQuantity))
	mux.Handle("DELETE /api/cart/{productID}", shop(h.removeFromCart))
	mux.Handle("GET /api/wishlist", shop(h.getWishlist))
	mux.Handle("POST /api/wishlist", shop(h.addToWishlist))
	mux.Handle("DELETE /api/wishlist/{productID}", shop(h.removeFromWishlist))
	mux.Handle("POST /api/wishlist/{productID}/move", shop(h.moveWishlistToCart))
	mux.Handle("GET /api/addresses", shop(h.listAddresses))
	mux.Handle("POST /api/addresses", shop(h.createAddress))
	mux.Handle("PUT /api/addresses/{id}", shop(h.updateAddress))
	mux.Handle("DELETE /api/addresses/{id}", shop(h.deleteAddress))
	mux.Handle("POST /api/addresses/{id}/default", shop(h.setDefaultAddress))
	mux.Handle("POST /api/checkout/quote", shop(h.quote))
	mux.Handle("POST /api/checkout/payment", shop(h.initiatePayment))
	mux.Handle("POST /api/checkout/confirm", shop(h.confirmOrder))
	mux.Handle("GET /api/orders", shop(h.listOrders))
	mux.Handle("GET /api/orders/{id}", shop(h.getOrder))
	mux.Handle("POST /api/orders/{id}/cancel", shop(h.cancelOrder))
	mux.Handle("POST /api/reviews", shop(h.submitReview))

	// Admin.
	admin := func(action auth.Action, fn http.HandlerFunc) http.Handler {
		return h.authenticate(h.require(action, fn))
	}
	mux.Handle("POST /api/admin/products", admin(auth.ActionManageCatalog, h.createProduct))
	mux.Handle("PUT /api/admin/products/{id}", admin(auth.ActionManageCatalog, h.updateProduct))
	mux.Handle("DELETE /api/admin/products/{id}", admin(auth.ActionManageCatalog, h.deleteProduct))
	mux.Handle("GET /api/admin/orders", admin(auth.ActionManageOrders, h.adminListOrders))
	mux.Handle("PUT /api/admin/orders/{id}/status", admin(auth.ActionManageOrders, h.adminSetOrderStatus))
	mux.Handle("GET /api/admin/dashboard", admin(auth.ActionManageStore, h.dashboard))
	mux.Handle("GET /api/admin/settings", admin(auth.ActionManageStore, h.adminGetSettings))
	mux.Handle("PUT /api/admin/settings", admin(auth.ActionManageStore, h.adminUpdateSettings))
	mux.Handle("GET /api/admin/events", admin(auth.ActionManageStore, h.streamEvents))

	return mux
}

// errorBody is the uniform error payload.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// respond writes v as JSON with the given status.
func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes the uniform error payload.
func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, errorBody{Code: status, Message: msg})
}

// decode reads a JSON body into v, rejecting unknown fields and oversized
// payloads.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode body")
	}
	return nil
}

// respondServiceError maps domain errors onto HTTP statuses. Unknown errors
// are logged and reported as a plain 500 without leaking internals.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// 400: malformed or empty input.
	case errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidAddress),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, user.ErrInvalidAddress),
		errors.Is(err, checkout.ErrInvalidMethod),
		errors.Is(err, stats.ErrInvalidRange),
		errors.Is(err, review.ErrInvalidRating):
		respondError(w, http.StatusBadRequest, err.Error())

	// 401: authentication failures.
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, user.ErrBadCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())

	// 402: payment rejected. Signature mismatches also log a warning so
	// tampering attempts are visible.
	case errors.Is(err, payment.ErrSignatureMismatch):
		zctx.From(r.Context()).Warn("payment signature rejected",
			zap.String("path", r.URL.Path))
		respondError(w, http.StatusPaymentRequired, "payment verification failed")

	// 404: missing resources.
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, user.ErrAddressNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	// 409: state conflicts.
	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, order.ErrNotCancellable),
		errors.Is(err, review.ErrAlreadyReviewed),
		errors.Is(err, user.ErrAddressLimit):
		respondError(w, http.StatusConflict, err.Error())

	// 422: valid shape, unpurchasable content.
	case errors.Is(err, checkout.ErrMethodDisabled),
		errors.Is(err, promo.ErrInvalidPromo),
		errors.Is(err, promo.ErrExpired),
		errors.Is(err, promo.ErrUsageLimitReached),
		errors.Is(err, review.ErrPurchaseRequired):
		respondError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		var unavailable *checkout.ProductUnavailableError
		if errors.As(err, &unavailable) {
			respondError(w, http.StatusUnprocessableEntity, unavailable.Error())
			return
		}
		var stock *checkout.InsufficientStockError
		if errors.As(err, &stock) {
			respondError(w, http.StatusUnprocessableEntity, stock.Error())
			return
		}
		var gw *payment.GatewayError
		if errors.As(err, &gw) {
			zctx.From(r.Context()).Error("payment gateway failure", zap.Error(err))
			respondError(w, http.StatusBadGateway, "failed to initiate payment")
			return
		}

		zctx.From(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
