// Package routes wires handlers onto the router, grouped by surface:
// public storefront, staff queues, and the admin dashboard.
package routes

import (
	"github.com/tavolaworks/tavola/internal/handler/admin"
	"github.com/tavolaworks/tavola/internal/handler/staff"
	"github.com/tavolaworks/tavola/internal/handler/storefront"
	"github.com/tavolaworks/tavola/internal/middleware"
)

// StorefrontDeps contains dependencies for customer-facing routes.
type StorefrontDeps struct {
	MenuHandler    *storefront.MenuHandler
	CartHandler    *storefront.CartHandler
	OrderHandler   *storefront.OrderHandler
	PaymentHandler *storefront.PaymentHandler

	// ProofRateLimiter throttles payment proof uploads per client IP.
	ProofRateLimiter *middleware.RateLimiter
}

// StaffDeps contains dependencies for waiter and driver routes.
type StaffDeps struct {
	OrderHandler *staff.OrderHandler
}

// AdminDeps contains dependencies for admin dashboard routes.
type AdminDeps struct {
	DishHandler    *admin.DishHandler
	OrderHandler   *admin.OrderHandler
	PaymentHandler *admin.PaymentHandler
}
