package routes

import (
	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/middleware"
	"github.com/tavolaworks/tavola/internal/router"
)

// proofUploadMaxBytes bounds the multipart body on proof submission,
// receipt image plus form overhead.
const proofUploadMaxBytes = 6 << 20

// RegisterStorefrontRoutes registers all customer-facing routes. Menu
// browsing, pricing, and the cart are anonymous; checkout and orders
// require a customer principal.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Menu browsing and stateless customization pricing
	r.Get("/menu", deps.MenuHandler.List)
	r.Get("/menu/{slug}", deps.MenuHandler.Detail)
	r.Post("/menu/{slug}/price", deps.MenuHandler.Price)

	// Session cart
	r.Get("/cart", deps.CartHandler.Get)
	r.Delete("/cart", deps.CartHandler.Clear)
	r.Post("/cart/lines", deps.CartHandler.AddLine)
	r.Patch("/cart/lines/{id}", deps.CartHandler.UpdateLine)
	r.Delete("/cart/lines/{id}", deps.CartHandler.RemoveLine)

	// Checkout and the customer's own orders
	authed := r.Group(middleware.RequireRole(domain.RoleCustomer))
	authed.Post("/checkout", deps.OrderHandler.Checkout)
	authed.Get("/orders", deps.OrderHandler.List)
	authed.Get("/orders/{id}", deps.OrderHandler.Get)
	authed.Post("/orders/{id}/cancel", deps.OrderHandler.Cancel)

	// Proof uploads are rate limited per IP and size capped.
	authed.Post("/orders/{id}/payment-proof", deps.PaymentHandler.SubmitProof,
		deps.ProofRateLimiter.Middleware,
		middleware.MaxBodySize(proofUploadMaxBytes),
	)
}
