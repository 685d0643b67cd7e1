package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/glowmart/glowmart-api/internal/domain/cart"
	"github.com/glowmart/glowmart-api/internal/domain/order"
	"github.com/glowmart/glowmart-api/internal/domain/pricing"
	"github.com/glowmart/glowmart-api/internal/domain/product"
	"github.com/glowmart/glowmart-api/internal/domain/promo"
	"github.com/glowmart/glowmart-api/internal/domain/settings"
	"github.com/glowmart/glowmart-api/internal/payment"
	"github.com/glowmart/glowmart-api/internal/realtime"
)

// Service runs the checkout pipeline over injected repositories so it can
// be exercised against fakes.
type Service struct {
	carts    cart.Repository
	products product.Repository
	settings settings.Repository
	promos   promo.Validator
	orders   order.Repository
	gateway  payment.Gateway
	secret   []byte
	events   realtime.Publisher
}

// NewService creates a checkout Service. secret is the gateway signing
// secret used to verify client-forwarded payment signatures.
func NewService(
	carts cart.Repository,
	products product.Repository,
	settingsRepo settings.Repository,
	promos promo.Validator,
	orders order.Repository,
	gateway payment.Gateway,
	secret []byte,
	events realtime.Publisher,
) *Service {
	return &Service{
		carts:    carts,
		products: products,
		settings: settingsRepo,
		promos:   promos,
		orders:   orders,
		gateway:  gateway,
		secret:   secret,
		events:   events,
	}
}

// pricedCart is a validated cart snapshot with live product data, ready for
// pricing and persistence.
type pricedCart struct {
	lines    []pricing.Line
	items    []order.Item
	changes  []order.StockChange
	settings *settings.Settings
}

// loadCart fetches the user's cart and the live product rows, re-validating
// visibility and stock per line. Every check happens server-side before any
// write or gateway call.
func (s *Service) loadCart(ctx context.Context, userID string) (*pricedCart, error) {
	lines, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart")
	}
	if len(lines) == 0 {
		return nil, cart.ErrEmptyCart
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		if l.Quantity <= 0 {
			return nil, cart.ErrInvalidQuantity
		}
		ids[i] = l.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	pc := &pricedCart{
		lines:   make([]pricing.Line, 0, len(lines)),
		items:   make([]order.Item, 0, len(lines)),
		changes: make([]order.StockChange, 0, len(lines)),
	}
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok || !p.Visible {
			return nil, &ProductUnavailableError{ProductID: l.ProductID}
		}
		if l.Quantity > p.Stock {
			return nil, &InsufficientStockError{
				ProductID: l.ProductID,
				Requested: l.Quantity,
				InStock:   p.Stock,
			}
		}
		pc.lines = append(pc.lines, pricing.Line{
			ProductID: p.ID,
			UnitPrice: p.Price,
			Quantity:  l.Quantity,
		})
		pc.items = append(pc.items, order.Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    l.Quantity,
		})
		pc.changes = append(pc.changes, order.StockChange{
			ProductID: p.ID,
			Quantity:  l.Quantity,
		})
	}

	pc.settings, err = s.settings.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get settings")
	}
	return pc, nil
}

// price applies an optional promo code and computes the quote for a loaded
// cart.
func (s *Service) price(ctx context.Context, pc *pricedCart, promoCode string) (pricing.Quote, error) {
	discount := decimal.Zero
	if promoCode != "" {
		items := make([]promo.Item, len(pc.lines))
		for i, l := range pc.lines {
			items[i] = promo.Item{ProductID: l.ProductID, Price: l.UnitPrice, Quantity: l.Quantity}
		}
		d, err := s.promos.Validate(ctx, promoCode, items)
		if err != nil {
			return pricing.Quote{}, err
		}
		discount = d.Amount
	}
	return pricing.Calculate(pc.lines, pc.settings, discount)
}

// Quote recomputes the user's cart totals for display. It shares the exact
// validation and arithmetic the commit path uses.
func (s *Service) Quote(ctx context.Context, userID, promoCode string) (pricing.Quote, error) {
	pc, err := s.loadCart(ctx, userID)
	if err != nil {
		return pricing.Quote{}, err
	}
	return s.price(ctx, pc, promoCode)
}

// PaymentIntent is the handle the browser needs to open the hosted payment
// widget.
type PaymentIntent struct {
	GatewayOrderID string
	Amount         int64 // minor currency units
	Currency       string
	Receipt        string
}

// InitiatePayment re-validates the cart, recomputes the grand total, and
// opens a gateway order for it. Validation failures surface before any
// gateway call.
func (s *Service) InitiatePayment(ctx context.Context, userID, promoCode string) (*PaymentIntent, error) {
	pc, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !pc.settings.EnableOnlinePayment {
		return nil, ErrMethodDisabled
	}

	quote, err := s.price(ctx, pc, promoCode)
	if err != nil {
		return nil, err
	}

	amount := pricing.MinorUnits(quote.GrandTotal)
	receipt := "rcpt_" + uuid.New().String()

	gatewayOrderID, err := s.gateway.CreateOrder(ctx, amount, pc.settings.Currency, receipt)
	if err != nil {
		var ge *payment.GatewayError
		if errors.As(err, &ge) {
			return nil, err
		}
		return nil, &payment.GatewayError{Err: err}
	}

	return &PaymentIntent{
		GatewayOrderID: gatewayOrderID,
		Amount:         amount,
		Currency:       pc.settings.Currency,
		Receipt:        receipt,
	}, nil
}

// CommitRequest is the input for committing an order.
type CommitRequest struct {
	UserID    string
	Method    order.PaymentMethod
	ShipTo    order.AddressSnapshot
	PromoCode string
	// Payment is required for card/upi and ignored for COD.
	Payment payment.Callback
}

// Commit verifies payment (for online methods), re-validates the cart
// against live products and settings, recomputes the totals, and persists
// the order, its line snapshots, the stock decrements and the cart clear as
// one atomic unit. Any failure before or during persistence leaves no
// partial state.
func (s *Service) Commit(ctx context.Context, req CommitRequest) (*order.Order, error) {
	switch req.Method {
	case order.MethodCard, order.MethodUPI, order.MethodCOD:
	default:
		return nil, ErrInvalidMethod
	}

	// Signature first: a mismatch aborts before anything is read or
	// written.
	if req.Method != order.MethodCOD {
		if !payment.VerifySignature(req.Payment, s.secret) {
			return nil, payment.ErrSignatureMismatch
		}
	}

	if err := req.ShipTo.Validate(); err != nil {
		return nil, err
	}

	pc, err := s.loadCart(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Method == order.MethodCOD && !pc.settings.EnableCOD {
		return nil, ErrMethodDisabled
	}
	if req.Method != order.MethodCOD && !pc.settings.EnableOnlinePayment {
		return nil, ErrMethodDisabled
	}

	quote, err := s.price(ctx, pc, req.PromoCode)
	if err != nil {
		return nil, err
	}

	status := order.StatusPaid
	paymentRef := req.Payment.GatewayPaymentID
	if req.Method == order.MethodCOD {
		status = order.StatusPending
		paymentRef = ""
	}

	now := time.Now()
	o := &order.Order{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		Status:        status,
		PaymentMethod: req.Method,
		PaymentRef:    paymentRef,
		Subtotal:      quote.Subtotal,
		Discount:      quote.Discount,
		Tax:           quote.Tax,
		Shipping:      quote.Shipping,
		Total:         quote.GrandTotal,
		PromoCode:     req.PromoCode,
		ShipTo:        req.ShipTo,
		Items:         pc.items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orders.CommitOrder(ctx, o, pc.changes); err != nil {
		return nil, errors.Wrap(err, "commit order")
	}

	// The use is burned only now that the order is persisted; a rejected or
	// rolled-back commit leaves the code untouched. The order stands even if
	// the counter update fails.
	if req.PromoCode != "" {
		if err := s.promos.Consume(ctx, req.PromoCode); err != nil {
			zctx.From(ctx).Warn("promo use not recorded",
				zap.String("code", req.PromoCode),
				zap.String("order_id", o.ID),
				zap.Error(err))
		}
	}

	// Best effort: dashboards re-fetch on notification.
	_ = s.events.Publish(ctx, realtime.Event{Topic: realtime.TopicOrders, ID: o.ID})

	return o, nil
}
