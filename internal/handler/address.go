package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/glowmart/glowmart-api/internal/domain/user"
)

type addressRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type addressResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
	IsDefault bool   `json:"isDefault"`
}

func toAddressResponse(a *user.Address) addressResponse {
	return addressResponse{
		ID:        a.ID,
		Name:      a.Name,
		Phone:     a.Phone,
		Line1:     a.Line1,
		Line2:     a.Line2,
		City:      a.City,
		State:     a.State,
		Pincode:   a.Pincode,
		IsDefault: a.IsDefault,
	}
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	addrs, err := h.addresses.ListByUser(r.Context(), s.UserID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	out := make([]addressResponse, len(addrs))
	for i := range addrs {
		out[i] = toAddressResponse(&addrs[i])
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) createAddress(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	var req addressRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a := &user.Address{
		ID:        uuid.New().String(),
		UserID:    s.UserID,
		Name:      req.Name,
		Phone:     req.Phone,
		Line1:     req.Line1,
		Line2:     req.Line2,
		City:      req.City,
		State:     req.State,
		Pincode:   req.Pincode,
		CreatedAt: time.Now(),
	}
	if err := a.Validate(); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if err := h.addresses.Create(r.Context(), a); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, toAddressResponse(a))
}

func (h *Handler) updateAddress(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	var req addressRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.addresses.GetByID(r.Context(), s.UserID, r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	a.Name = req.Name
	a.Phone = req.Phone
	a.Line1 = req.Line1
	a.Line2 = req.Line2
	a.City = req.City
	a.State = req.State
	a.Pincode = req.Pincode

	if err := a.Validate(); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if err := h.addresses.Update(r.Context(), a); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toAddressResponse(a))
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	if err := h.addresses.Delete(r.Context(), s.UserID, r.PathValue("id")); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setDefaultAddress(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	if err := h.addresses.SetDefault(r.Context(), s.UserID, r.PathValue("id")); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
