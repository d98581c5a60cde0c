package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/customize"
	"github.com/tavolaworks/tavola/internal/domain"
)

// CartService provides business logic for shopping cart operations.
// Cart lines are materialized order-line drafts: the customization has
// already collapsed into a single unit price by the time it reaches the cart.
type CartService interface {
	GetOrCreateCart(ctx context.Context, sessionToken string) (*Cart, string, error)
	GetCartByToken(ctx context.Context, sessionToken string) (*Cart, error)
	AddLine(ctx context.Context, cartID uuid.UUID, draft customize.OrderLineDraft, quantity int32) (*CartSummary, error)
	UpdateLineQuantity(ctx context.Context, cartID, lineID uuid.UUID, quantity int32) (*CartSummary, error)
	RemoveLine(ctx context.Context, cartID, lineID uuid.UUID) (*CartSummary, error)
	GetCartSummary(ctx context.Context, cartID uuid.UUID) (*CartSummary, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

// Cart is a lightweight cart view model.
type Cart struct {
	ID        uuid.UUID
	Token     string
	Converted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine is one customized dish in a cart, with its audit records carried
// along so checkout can persist them unchanged.
type CartLine struct {
	ID             uuid.UUID
	DishID         uuid.UUID
	DishName       string
	Quantity       int32
	UnitPriceCents domain.Cents
	LineTotalCents domain.Cents
	Customizations []domain.LineCustomization
}

// CartSummary aggregates a cart with its lines and calculated totals.
type CartSummary struct {
	Cart          Cart
	Lines         []CartLine
	SubtotalCents domain.Cents
	ItemCount     int32
}

// CartStore is the persistence boundary for carts.
type CartStore interface {
	GetCartByToken(ctx context.Context, token string) (*Cart, error)
	CreateCart(ctx context.Context, token string) (*Cart, error)
	GetCartByID(ctx context.Context, cartID uuid.UUID) (*Cart, error)
	AddCartLine(ctx context.Context, cartID uuid.UUID, line CartLine) (*CartLine, error)
	UpdateCartLineQuantity(ctx context.Context, cartID, lineID uuid.UUID, quantity int32) error
	RemoveCartLine(ctx context.Context, cartID, lineID uuid.UUID) error
	GetCartLines(ctx context.Context, cartID uuid.UUID) ([]CartLine, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

type cartService struct {
	store CartStore
}

// NewCartService creates a new CartService instance.
func NewCartService(store CartStore) CartService {
	return &cartService{store: store}
}

// GetOrCreateCart retrieves the cart bound to the session token, creating a
// token and cart as needed. Returns the cart and the (possibly new) token.
func (s *cartService) GetOrCreateCart(ctx context.Context, sessionToken string) (*Cart, string, error) {
	if sessionToken != "" {
		cart, err := s.store.GetCartByToken(ctx, sessionToken)
		if err == nil && !cart.Converted {
			return cart, sessionToken, nil
		}
		if err != nil && !domain.IsCode(err, domain.ENOTFOUND) {
			return nil, "", domain.Internal(err, "cart.get_or_create", "failed to get cart by token")
		}
		// A converted cart means the previous order went through; fall
		// through and start a fresh cart on a fresh token.
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, "", domain.Internal(err, "cart.get_or_create", "failed to generate session token")
	}

	cart, err := s.store.CreateCart(ctx, token)
	if err != nil {
		return nil, "", domain.Internal(err, "cart.get_or_create", "failed to create cart")
	}

	return cart, token, nil
}

// GetCartByToken retrieves the cart bound to the session token without
// creating one.
func (s *cartService) GetCartByToken(ctx context.Context, sessionToken string) (*Cart, error) {
	if sessionToken == "" {
		return nil, ErrCartNotFound
	}
	cart, err := s.store.GetCartByToken(ctx, sessionToken)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, ErrCartNotFound
		}
		return nil, domain.Internal(err, "cart.get_by_token", "failed to get cart by token")
	}
	return cart, nil
}

// AddLine appends a materialized order-line draft to the cart.
func (s *cartService) AddLine(ctx context.Context, cartID uuid.UUID, draft customize.OrderLineDraft, quantity int32) (*CartSummary, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	line := CartLine{
		DishID:         draft.DishID,
		DishName:       draft.DishName,
		Quantity:       quantity,
		UnitPriceCents: draft.UnitPriceCents,
		Customizations: draft.Customizations,
	}

	if _, err := s.store.AddCartLine(ctx, cartID, line); err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), "cart.add_line", "failed to add cart line")
	}

	return s.GetCartSummary(ctx, cartID)
}

// UpdateLineQuantity updates the quantity of a cart line.
// A quantity of 0 removes the line.
func (s *cartService) UpdateLineQuantity(ctx context.Context, cartID, lineID uuid.UUID, quantity int32) (*CartSummary, error) {
	if quantity == 0 {
		return s.RemoveLine(ctx, cartID, lineID)
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	if err := s.store.UpdateCartLineQuantity(ctx, cartID, lineID, quantity); err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), "cart.update_quantity", "failed to update cart line")
	}

	return s.GetCartSummary(ctx, cartID)
}

// RemoveLine removes one line from the cart.
func (s *cartService) RemoveLine(ctx context.Context, cartID, lineID uuid.UUID) (*CartSummary, error) {
	if err := s.store.RemoveCartLine(ctx, cartID, lineID); err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), "cart.remove_line", "failed to remove cart line")
	}

	return s.GetCartSummary(ctx, cartID)
}

// GetCartSummary retrieves the cart with all lines and calculated totals.
func (s *cartService) GetCartSummary(ctx context.Context, cartID uuid.UUID) (*CartSummary, error) {
	cart, err := s.store.GetCartByID(ctx, cartID)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, ErrCartNotFound
		}
		return nil, domain.Internal(err, "cart.summary", "failed to get cart")
	}

	lines, err := s.store.GetCartLines(ctx, cartID)
	if err != nil {
		return nil, domain.Internal(err, "cart.summary", "failed to get cart lines")
	}

	summary := &CartSummary{Cart: *cart, Lines: make([]CartLine, 0, len(lines))}
	for _, line := range lines {
		line.LineTotalCents = line.UnitPriceCents * domain.Cents(line.Quantity)
		summary.SubtotalCents += line.LineTotalCents
		summary.ItemCount += line.Quantity
		summary.Lines = append(summary.Lines, line)
	}

	return summary, nil
}

// ClearCart removes all lines from a cart.
func (s *cartService) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	if err := s.store.ClearCart(ctx, cartID); err != nil {
		return domain.Internal(err, "cart.clear", "failed to clear cart")
	}
	return nil
}
