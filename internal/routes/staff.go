package routes

import (
	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/middleware"
	"github.com/tavolaworks/tavola/internal/router"
)

// RegisterStaffRoutes registers the waiter and driver surfaces. The status
// machine decides per transition which role may act; the route guard only
// keeps customers out.
func RegisterStaffRoutes(r *router.Router, deps StaffDeps) {
	g := r.Group(middleware.RequireRole(domain.RoleWaiter, domain.RoleDriver))

	g.Get("/staff/kitchen", deps.OrderHandler.Kitchen)
	g.Get("/staff/delivery", deps.OrderHandler.Delivery)
	g.Post("/staff/orders/{id}/status", deps.OrderHandler.Transition)
}
