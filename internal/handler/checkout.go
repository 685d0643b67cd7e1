package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/glowmart/glowmart-api/internal/domain/checkout"
	"github.com/glowmart/glowmart-api/internal/domain/order"
	"github.com/glowmart/glowmart-api/internal/payment"
)

type quoteRequest struct {
	PromoCode string `json:"promoCode"`
}

type quoteResponse struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	var req quoteRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	q, err := h.checkout.Quote(r.Context(), s.UserID, req.PromoCode)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respond(w, http.StatusOK, quoteResponse{
		Subtotal: q.Subtotal,
		Discount: q.Discount,
		Tax:      q.Tax,
		Shipping: q.Shipping,
		Total:    q.GrandTotal,
	})
}

type initiatePaymentResponse struct {
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
}

func (h *Handler) initiatePayment(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	var req quoteRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	intent, err := h.checkout.InitiatePayment(r.Context(), s.UserID, req.PromoCode)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, initiatePaymentResponse{
		GatewayOrderID: intent.GatewayOrderID,
		Amount:         intent.Amount,
		Currency:       intent.Currency,
		Receipt:        intent.Receipt,
	})
}

type shipToRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type paymentCallbackRequest struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
}

type confirmOrderRequest struct {
	Method    string `json:"method"`
	PromoCode string `json:"promoCode"`
	// AddressID selects a saved address; ShipTo supplies one inline.
	// AddressID wins when both are present.
	AddressID string                  `json:"addressId"`
	ShipTo    *shipToRequest          `json:"shipTo"`
	Payment   *paymentCallbackRequest `json:"payment"`
}

func (h *Handler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	var req confirmOrderRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var shipTo order.AddressSnapshot
	switch {
	case req.AddressID != "":
		a, err := h.addresses.GetByID(r.Context(), s.UserID, req.AddressID)
		if err != nil {
			h.respondServiceError(w, r, err)
			return
		}
		shipTo = order.AddressSnapshot{
			Name:    a.Name,
			Phone:   a.Phone,
			Line1:   a.Line1,
			Line2:   a.Line2,
			City:    a.City,
			State:   a.State,
			Pincode: a.Pincode,
		}
	case req.ShipTo != nil:
		shipTo = order.AddressSnapshot{
			Name:    req.ShipTo.Name,
			Phone:   req.ShipTo.Phone,
			Line1:   req.ShipTo.Line1,
			Line2:   req.ShipTo.Line2,
			City:    req.ShipTo.City,
			State:   req.ShipTo.State,
			Pincode: req.ShipTo.Pincode,
		}
	default:
		respondError(w, http.StatusBadRequest, "a shipping address is required")
		return
	}

	var callback payment.Callback
	if req.Payment != nil {
		callback = payment.Callback{
			GatewayOrderID:   req.Payment.GatewayOrderID,
			GatewayPaymentID: req.Payment.GatewayPaymentID,
			Signature:        req.Payment.Signature,
		}
	}

	o, err := h.checkout.Commit(r.Context(), checkout.CommitRequest{
		UserID:    s.UserID,
		Method:    order.PaymentMethod(req.Method),
		ShipTo:    shipTo,
		PromoCode: req.PromoCode,
		Payment:   callback,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, toOrderResponse(o))
}
