package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glowmart/glowmart-api/internal/domain/product"
	"github.com/glowmart/glowmart-api/internal/realtime"
)

type productResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	InStock     bool            `json:"inStock"`
	Visible     bool            `json:"visible"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		InStock:     p.Stock > 0,
		Visible:     p.Visible,
		ImageURL:    p.ImageURL,
	}
}

// listProducts serves the public catalog: visible products only, optionally
// narrowed by category.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), product.Filter{
		Category:    r.URL.Query().Get("category"),
		VisibleOnly: true,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i])
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if !p.Visible {
		// Hidden products are indistinguishable from absent ones.
		respondError(w, http.StatusNotFound, product.ErrNotFound.Error())
		return
	}
	respond(w, http.StatusOK, toProductResponse(p))
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Visible     bool            `json:"visible"`
	ImageURL    string          `json:"imageUrl"`
}

func (req *productRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if req.Price.IsNegative() {
		return "price must not be negative"
	}
	if req.Stock < 0 {
		return "stock must not be negative"
	}
	return ""
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	now := time.Now()
	p := &product.Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Brand:       req.Brand,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Visible:     req.Visible,
		ImageURL:    req.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	_ = h.events.Publish(r.Context(), realtime.Event{Topic: realtime.TopicProducts, ID: p.ID})
	respond(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Brand = req.Brand
	p.Category = req.Category
	p.Price = req.Price
	p.Stock = req.Stock
	p.Visible = req.Visible
	p.ImageURL = req.ImageURL
	p.UpdatedAt = time.Now()

	if err := h.products.Update(r.Context(), p); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	_ = h.events.Publish(r.Context(), realtime.Event{Topic: realtime.TopicProducts, ID: p.ID})
	respond(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.products.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	_ = h.events.Publish(r.Context(), realtime.Event{Topic: realtime.TopicProducts, ID: id})
	w.WriteHeader(http.StatusNoContent)
}
