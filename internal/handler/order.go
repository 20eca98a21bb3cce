package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nevtar/ordercore/internal/domain/order"
)

type createOrderRequest struct {
	UserID   string `json:"user_id"`
	Currency string `json:"currency"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	o, err := h.orders.CreateOrder(r.Context(), req.UserID, req.Currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) payOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, order.StatusPaid)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, order.StatusCancelled)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, next order.Status) {
	o, err := h.orders.TransitionStatus(r.Context(), chi.URLParam(r, "id"), next)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.orders.ListItems(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// addItem creates a line item under the order in the path. The body uses
// the same optional-field semantics as the domain: omitted fields are
// resolved from the referenced product or defaulted, never guessed.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var in order.ItemCreate
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	in.OrderID = chi.URLParam(r, "id")

	it, err := h.orders.AddItem(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.orders.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var patch order.ItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	it, err := h.orders.UpdateItem(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
