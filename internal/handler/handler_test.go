package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowmart/glowmart-api/internal/domain/auth"
	"github.com/glowmart/glowmart-api/internal/domain/checkout"
	"github.com/glowmart/glowmart-api/internal/domain/order"
	"github.com/glowmart/glowmart-api/internal/domain/product"
	"github.com/glowmart/glowmart-api/internal/domain/promo"
	"github.com/glowmart/glowmart-api/internal/domain/review"
	"github.com/glowmart/glowmart-api/internal/domain/settings"
	"github.com/glowmart/glowmart-api/internal/domain/stats"
	"github.com/glowmart/glowmart-api/internal/domain/user"
	"github.com/glowmart/glowmart-api/internal/handler"
	"github.com/glowmart/glowmart-api/internal/payment"
	"github.com/glowmart/glowmart-api/internal/realtime"
	"github.com/glowmart/glowmart-api/internal/storage/memory"
)

var gatewaySecret = []byte("test-gateway-secret")

type stubGateway struct{}

func (stubGateway) CreateOrder(context.Context, int64, string, string) (string, error) {
	return "order_gw1", nil
}

type passValidator struct{}

func (passValidator) Validate(context.Context, string, []promo.Item) (*promo.Discount, error) {
	return &promo.Discount{Amount: decimal.Zero}, nil
}

func (passValidator) Consume(context.Context, string) error { return nil }

type env struct {
	mux        *http.ServeMux
	userToken  string
	adminToken string
	products   *memory.ProductRepository
	orders     *memory.OrderRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()

	users := memory.NewUserRepository(
		user.User{ID: "cust-1", Email: "priya@example.com", Name: "Priya", Role: user.RoleCustomer},
		user.User{ID: "admin-1", Email: "admin@example.com", Name: "Admin", Role: user.RoleAdmin},
	)
	products := memory.NewProductRepository(
		product.Product{ID: "serum", Name: "Vitamin C Serum", Category: "skincare",
			Price: decimal.NewFromInt(500), Stock: 10, Visible: true},
		product.Product{ID: "draft", Name: "Unreleased Balm", Category: "skincare",
			Price: decimal.NewFromInt(300), Stock: 5, Visible: false},
	)
	carts := memory.NewCartRepository()
	orders := memory.NewOrderRepository(products, carts)
	reviews := memory.NewReviewRepository()
	storeSettings := memory.NewSettingsRepository(settings.Settings{
		Currency:              "INR",
		TaxName:               "GST",
		TaxRate:               decimal.NewFromInt(5),
		DeliveryCharge:        decimal.NewFromInt(50),
		FreeShippingThreshold: decimal.NewFromInt(2000),
		EnableCOD:             true,
		EnableOnlinePayment:   true,
	})

	tokens := auth.NewTokens([]byte("test-jwt-secret"), time.Hour)
	checkoutSvc := checkout.NewService(
		carts, products, storeSettings, passValidator{}, orders,
		stubGateway{}, gatewaySecret, realtime.Nop{},
	)

	h := handler.New(handler.Deps{
		Users:     users,
		Addresses: memory.NewAddressRepository(),
		Tokens:    tokens,
		Products:  products,
		Carts:     carts,
		Wishlist:  memory.NewWishlistRepository(),
		Checkout:  checkoutSvc,
		Orders:    order.NewService(orders, realtime.Nop{}),
		OrderRepo: orders,
		Reviews:   reviews,
		ReviewSvc: review.NewService(reviews, orders, realtime.Nop{}),
		Settings:  storeSettings,
		Stats:     stats.NewAggregator(orders),
		Events:    realtime.Nop{},
	})

	userToken, err := tokens.Issue(&user.User{ID: "cust-1", Role: user.RoleCustomer})
	require.NoError(t, err)
	adminToken, err := tokens.Issue(&user.User{ID: "admin-1", Role: user.RoleAdmin})
	require.NoError(t, err)

	return &env{
		mux:        h.Routes(),
		userToken:  userToken,
		adminToken: adminToken,
		products:   products,
		orders:     orders,
	}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "new@example.com", "password": "hunter2hunter2", "name": "New User",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "new@example.com", "password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	rec = e.do(t, http.MethodGet, "/api/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := newEnv(t)

	body := map[string]string{"email": "dup@example.com", "password": "longpassword", "name": "A"}
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "priya@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthentication_Required(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/cart", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/cart", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorization_CustomerCannotManage(t *testing.T) {
	e := newEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/admin/products"},
		{http.MethodGet, "/api/admin/orders"},
		{http.MethodGet, "/api/admin/dashboard"},
		{http.MethodGet, "/api/admin/settings"},
	} {
		rec := e.do(t, tc.method, tc.path, e.userToken, map[string]string{})
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestListProducts_HidesInvisible(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeBody[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "serum", list[0]["id"])

	// Fetching the hidden product directly also 404s.
	rec = e.do(t, http.MethodGet, "/api/products/draft", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func shipTo() map[string]any {
	return map[string]any{
		"name": "Priya S", "phone": "9876543210", "line1": "12 Rose Street",
		"city": "Chennai", "state": "TN", "pincode": "600001",
	}
}

func TestCheckout_CODHappyPath(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/cart", e.userToken, map[string]any{
		"productId": "serum", "quantity": 2,
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/checkout/quote", e.userToken, map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	quote := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "1100", quote["total"])

	rec = e.do(t, http.MethodPost, "/api/checkout/confirm", e.userToken, map[string]any{
		"method": "cod", "shipTo": shipTo(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placed := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "pending", placed["status"])

	// Cart is cleared by the commit.
	rec = e.do(t, http.MethodGet, "/api/cart", e.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]any](t, rec))

	// The order shows up in the customer's history and can be cancelled
	// while pending.
	rec = e.do(t, http.MethodGet, "/api/orders", e.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decodeBody[[]map[string]any](t, rec)
	require.Len(t, history, 1)

	orderID := history[0]["id"].(string)
	rec = e.do(t, http.MethodPost, "/api/orders/"+orderID+"/cancel", e.userToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCheckout_OnlineWithSignature(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/cart", e.userToken, map[string]any{
		"productId": "serum", "quantity": 1,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/checkout/payment", e.userToken, map[string]any{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	intent := decodeBody[map[string]any](t, rec)
	gwOrder := intent["gatewayOrderId"].(string)

	rec = e.do(t, http.MethodPost, "/api/checkout/confirm", e.userToken, map[string]any{
		"method": "card",
		"shipTo": shipTo(),
		"payment": map[string]string{
			"gatewayOrderId":   gwOrder,
			"gatewayPaymentId": "pay_1",
			"signature":        payment.Sign(gwOrder, "pay_1", gatewaySecret),
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placed := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "paid", placed["status"])
}

func TestCheckout_TamperedSignature(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/cart", e.userToken, map[string]any{
		"productId": "serum", "quantity": 1,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/checkout/confirm", e.userToken, map[string]any{
		"method": "upi",
		"shipTo": shipTo(),
		"payment": map[string]string{
			"gatewayOrderId":   "order_gw1",
			"gatewayPaymentId": "pay_1",
			"signature":        payment.Sign("order_gw1", "pay_other", gatewaySecret),
		},
	})
	require.Equal(t, http.StatusPaymentRequired, rec.Code, rec.Body.String())

	// Cart untouched.
	rec = e.do(t, http.MethodGet, "/api/cart", e.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]any](t, rec), 1)
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/checkout/confirm", e.userToken, map[string]any{
		"method": "cod", "shipTo": shipTo(),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_ProductLifecycle(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/admin/products", e.adminToken, map[string]any{
		"name": "Rose Lip Tint", "category": "makeup", "price": "249.50",
		"stock": 30, "visible": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)
	id := created["id"].(string)

	rec = e.do(t, http.MethodPut, "/api/admin/products/"+id, e.adminToken, map[string]any{
		"name": "Rose Lip Tint", "category": "makeup", "price": "199",
		"stock": 25, "visible": false,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Hidden after the update.
	rec = e.do(t, http.MethodGet, "/api/products/"+id, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/admin/products/"+id, e.adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdmin_SettingsAndDashboard(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPut, "/api/admin/settings", e.adminToken, map[string]any{
		"currency": "INR", "taxName": "GST", "taxRate": "12",
		"deliveryCharge": "80", "freeShippingThreshold": "1500",
		"enableCod": false, "enableOnlinePayment": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The public settings endpoint reflects the change.
	rec = e.do(t, http.MethodGet, "/api/settings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pub := decodeBody[map[string]any](t, rec)
	assert.Equal(t, false, pub["enableCod"])

	rec = e.do(t, http.MethodGet, "/api/admin/dashboard?range=all", e.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/api/admin/dashboard?range=bogus", e.adminToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReview_RequiresDeliveredPurchase(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/reviews", e.userToken, map[string]any{
		"productId": "serum", "rating": 5, "comment": "glowy!",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestReview_AfterDelivery(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Place an order directly and mark it delivered.
	o := &order.Order{
		ID: "o1", UserID: "cust-1", Status: order.StatusPending,
		Items:     []order.Item{{ProductID: "serum", ProductName: "Vitamin C Serum", UnitPrice: decimal.NewFromInt(500), Quantity: 1}},
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, e.orders.CommitOrder(ctx, o, nil))
	require.NoError(t, e.orders.UpdateStatus(ctx, "o1", order.StatusDelivered))

	rec := e.do(t, http.MethodPost, "/api/reviews", e.userToken, map[string]any{
		"productId": "serum", "rating": 5, "comment": "glowy!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// A second review of the same product is rejected.
	rec = e.do(t, http.MethodPost, "/api/reviews", e.userToken, map[string]any{
		"productId": "serum", "rating": 4,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Reviews are publicly listed on the product.
	rec = e.do(t, http.MethodGet, "/api/products/serum/reviews", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]any](t, rec), 1)
}

func TestAddresses_LimitEnforced(t *testing.T) {
	e := newEnv(t)

	for i := 0; i < user.MaxAddresses; i++ {
		rec := e.do(t, http.MethodPost, "/api/addresses", e.userToken, shipTo())
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := e.do(t, http.MethodPost, "/api/addresses", e.userToken, shipTo())
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestWishlist_Idempotent(t *testing.T) {
	e := newEnv(t)

	for range 2 {
		rec := e.do(t, http.MethodPost, "/api/wishlist", e.userToken, map[string]string{"productId": "serum"})
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := e.do(t, http.MethodGet, "/api/wishlist", e.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]any](t, rec), 1)
}

func TestWishlist_MoveToCart(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/wishlist", e.userToken, map[string]string{"productId": "serum"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/wishlist/serum/move", e.userToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The line moved: cart has it, the wishlist no longer does.
	rec = e.do(t, http.MethodGet, "/api/cart", e.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]any](t, rec), 1)

	rec = e.do(t, http.MethodGet, "/api/wishlist", e.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]any](t, rec))
}
