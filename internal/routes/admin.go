package routes

import (
	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/middleware"
	"github.com/tavolaworks/tavola/internal/router"
)

// RegisterAdminRoutes registers the admin dashboard routes. Everything here
// requires the admin role.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	g := r.Group(middleware.RequireRole(domain.RoleAdmin))

	// Catalog management
	g.Post("/admin/items", deps.DishHandler.CreateItem)
	g.Get("/admin/items", deps.DishHandler.ListItems)
	g.Post("/admin/dishes", deps.DishHandler.Create)
	g.Get("/admin/dishes/{id}", deps.DishHandler.Get)
	g.Patch("/admin/dishes/{id}", deps.DishHandler.Update)
	g.Post("/admin/dishes/{id}/elements", deps.DishHandler.AddElement)
	g.Delete("/admin/dishes/{id}/elements/{element_id}", deps.DishHandler.RemoveElement)
	g.Post("/admin/elements/{id}/replacements", deps.DishHandler.AddReplacement)
	g.Delete("/admin/elements/{id}/replacements/{replacement_id}", deps.DishHandler.RemoveReplacement)

	// Order dashboard
	g.Get("/admin/orders", deps.OrderHandler.List)
	g.Get("/admin/orders/{id}", deps.OrderHandler.Get)
	g.Post("/admin/orders/{id}/status", deps.OrderHandler.Transition)

	// Payment proof review
	g.Get("/admin/payments/pending", deps.PaymentHandler.ListPending)
	g.Get("/admin/payments/{id}", deps.PaymentHandler.Get)
	g.Post("/admin/payments/{id}/review", deps.PaymentHandler.Review)
}
