// Package handler exposes the order domain over JSON HTTP. Handlers decode
// and validate transport concerns, delegate to domain services, and map
// domain errors to status codes.
package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/nevtar/ordercore/internal/domain/order"
	"github.com/nevtar/ordercore/internal/domain/product"
	"github.com/nevtar/ordercore/internal/domain/user"
)

// Handler routes API requests to the domain services.
type Handler struct {
	users    *user.Service
	products product.Repository
	orders   *order.Service
}

// New constructs a Handler with the required domain dependencies.
func New(users *user.Service, products product.Repository, orders *order.Service) *Handler {
	return &Handler{
		users:    users,
		products: products,
		orders:   orders,
	}
}

// Routes mounts all API endpoints onto a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/users", h.registerUser)
	r.Get("/users/{id}", h.getUser)
	r.Get("/users/{id}/orders", h.listUserOrders)

	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Get("/products/{id}", h.getProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)

	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Delete("/orders/{id}", h.deleteOrder)
	r.Post("/orders/{id}/pay", h.payOrder)
	r.Post("/orders/{id}/cancel", h.cancelOrder)

	r.Get("/orders/{id}/items", h.listItems)
	r.Post("/orders/{id}/items", h.addItem)
	r.Get("/items/{id}", h.getItem)
	r.Patch("/items/{id}", h.updateItem)
	r.Delete("/items/{id}", h.deleteItem)

	return r
}
