package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glowmart/glowmart-api/internal/domain/order"
)

type orderItemResponse struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

type orderAddressResponse struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"userId"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"paymentMethod"`
	PaymentRef    string              `json:"paymentRef,omitempty"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	Tax           decimal.Decimal     `json:"tax"`
	Shipping      decimal.Decimal     `json:"shipping"`
	Total         decimal.Decimal     `json:"total"`
	PromoCode     string              `json:"promoCode,omitempty"`
	ShipTo        orderAddressResponse `json:"shipTo"`
	Items         []orderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		}
	}
	return orderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		PaymentRef:    o.PaymentRef,
		Subtotal:      o.Subtotal,
		Discount:      o.Discount,
		Tax:           o.Tax,
		Shipping:      o.Shipping,
		Total:         o.Total,
		PromoCode:     o.PromoCode,
		ShipTo: orderAddressResponse{
			Name:    o.ShipTo.Name,
			Phone:   o.ShipTo.Phone,
			Line1:   o.ShipTo.Line1,
			Line2:   o.ShipTo.Line2,
			City:    o.ShipTo.City,
			State:   o.ShipTo.State,
			Pincode: o.ShipTo.Pincode,
		},
		Items:     items,
		CreatedAt: o.CreatedAt,
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	orders, err := h.orders.ListForUser(r.Context(), s.UserID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	o, err := h.orders.GetForUser(r.Context(), s.UserID, r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	if err := h.orders.Cancel(r.Context(), s.UserID, r.PathValue("id")); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	// A zero lower bound returns the full history, newest first.
	orders, err := h.orderRepo.ListSince(r.Context(), time.Time{})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) adminSetOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.orders.SetStatus(r.Context(), r.PathValue("id"), order.Status(req.Status)); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
