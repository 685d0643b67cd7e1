package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glowmart/glowmart-api/internal/domain/settings"
	"github.com/glowmart/glowmart-api/internal/domain/stats"
	"github.com/glowmart/glowmart-api/internal/realtime"
)

type settingsResponse struct {
	Currency              string          `json:"currency"`
	TaxName               string          `json:"taxName"`
	TaxRate               decimal.Decimal `json:"taxRate"`
	DeliveryCharge        decimal.Decimal `json:"deliveryCharge"`
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold"`
	EnableCOD             bool            `json:"enableCod"`
	EnableOnlinePayment   bool            `json:"enableOnlinePayment"`
}

func toSettingsResponse(s *settings.Settings) settingsResponse {
	return settingsResponse{
		Currency:              s.Currency,
		TaxName:               s.TaxName,
		TaxRate:               s.TaxRate,
		DeliveryCharge:        s.DeliveryCharge,
		FreeShippingThreshold: s.FreeShippingThreshold,
		EnableCOD:             s.EnableCOD,
		EnableOnlinePayment:   s.EnableOnlinePayment,
	}
}

// publicSettings serves the storefront the pricing and payment-method
// parameters it needs to render checkout.
func (h *Handler) publicSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toSettingsResponse(s))
}

func (h *Handler) adminGetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toSettingsResponse(s))
}

func (h *Handler) adminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsResponse
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Currency == "" {
		respondError(w, http.StatusBadRequest, "currency is required")
		return
	}
	if req.TaxRate.IsNegative() || req.DeliveryCharge.IsNegative() || req.FreeShippingThreshold.IsNegative() {
		respondError(w, http.StatusBadRequest, "rates and charges must not be negative")
		return
	}

	s := &settings.Settings{
		Currency:              req.Currency,
		TaxName:               req.TaxName,
		TaxRate:               req.TaxRate,
		DeliveryCharge:        req.DeliveryCharge,
		FreeShippingThreshold: req.FreeShippingThreshold,
		EnableCOD:             req.EnableCOD,
		EnableOnlinePayment:   req.EnableOnlinePayment,
		UpdatedAt:             time.Now(),
	}
	if err := h.settings.Update(r.Context(), s); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	_ = h.events.Publish(r.Context(), realtime.Event{Topic: realtime.TopicSettings, ID: "store"})
	respond(w, http.StatusOK, toSettingsResponse(s))
}

type dashboardResponse struct {
	Range          string          `json:"range"`
	Revenue        decimal.Decimal `json:"revenue"`
	OrderCount     int             `json:"orderCount"`
	CancelledCount int             `json:"cancelledCount"`
	CustomerCount  int             `json:"customerCount"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	rng := stats.Range(r.URL.Query().Get("range"))
	if rng == "" {
		rng = stats.RangeThisMonth
	}

	summary, err := h.stats.Summarize(r.Context(), rng)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respond(w, http.StatusOK, dashboardResponse{
		Range:          string(rng),
		Revenue:        summary.Revenue,
		OrderCount:     summary.OrderCount,
		CancelledCount: summary.CancelledCount,
		CustomerCount:  summary.CustomerCount,
	})
}
