package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/glowmart/glowmart-api/internal/domain/cart"
	"github.com/glowmart/glowmart-api/internal/domain/product"
)

type cartLineResponse struct {
	Product  productResponse `json:"product"`
	Quantity int             `json:"quantity"`
}

type cartMutation struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// hydrateLines joins cart or wishlist product ids against the live catalog.
// Products removed from the catalog since they were added are skipped.
func (h *Handler) hydrateLines(r *http.Request, ids []string) (map[string]product.Product, error) {
	if len(ids) == 0 {
		return map[string]product.Product{}, nil
	}
	fetched, err := h.products.GetByIDs(r.Context(), ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}
	return byID, nil
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	lines, err := h.carts.ListByUser(r.Context(), s.UserID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	byID, err := h.hydrateLines(r, ids)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	out := make([]cartLineResponse, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			continue
		}
		out = append(out, cartLineResponse{Product: toProductResponse(&p), Quantity: l.Quantity})
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	var req cartMutation
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		h.respondServiceError(w, r, cart.ErrInvalidQuantity)
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if !p.Available(req.Quantity) {
		respondError(w, http.StatusUnprocessableEntity, "product is unavailable in the requested quantity")
		return
	}

	if err := h.carts.Upsert(r.Context(), s.UserID, req.ProductID, req.Quantity); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	productID := r.PathValue("productID")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		// Setting a line to zero is the same as removing it.
		if err := h.carts.Remove(r.Context(), s.UserID, productID); err != nil {
			h.respondServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.carts.SetQuantity(r.Context(), s.UserID, productID, req.Quantity); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	if err := h.carts.Remove(r.Context(), s.UserID, r.PathValue("productID")); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	items, err := h.wishlist.ListByUser(r.Context(), s.UserID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	byID, err := h.hydrateLines(r, ids)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	out := make([]productResponse, 0, len(items))
	for _, it := range items {
		if p, ok := byID[it.ProductID]; ok {
			out = append(out, toProductResponse(&p))
		}
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) addToWishlist(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.products.GetByID(r.Context(), req.ProductID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if err := h.wishlist.Add(r.Context(), s.UserID, req.ProductID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	if err := h.wishlist.Remove(r.Context(), s.UserID, r.PathValue("productID")); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// moveWishlistToCart puts one unit of a wished product into the cart and
// drops it from the wishlist. The wishlist entry survives when the product
// cannot be carted.
func (h *Handler) moveWishlistToCart(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	productID := r.PathValue("productID")

	p, err := h.products.GetByID(r.Context(), productID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if !p.Available(1) {
		respondError(w, http.StatusUnprocessableEntity, "product is unavailable in the requested quantity")
		return
	}

	if err := h.carts.Upsert(r.Context(), s.UserID, productID, 1); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if err := h.wishlist.Remove(r.Context(), s.UserID, productID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
