package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/service"
)

// CartStore implements service.CartStore using PostgreSQL.
//
// Customization audit records ride along each line as jsonb. They are an
// opaque snapshot at this stage; checkout unpacks them into relational rows.
type CartStore struct {
	db *pgxpool.Pool
}

// Compile-time check that CartStore implements service.CartStore.
var _ service.CartStore = (*CartStore)(nil)

// NewCartStore creates a new PostgreSQL-backed cart store.
func NewCartStore(db *pgxpool.Pool) *CartStore {
	return &CartStore{db: db}
}

// GetCartByToken retrieves a cart by its session token.
func (s *CartStore) GetCartByToken(ctx context.Context, token string) (*service.Cart, error) {
	return s.getCart(ctx, "session_token = $1", token)
}

// GetCartByID retrieves a cart by ID.
func (s *CartStore) GetCartByID(ctx context.Context, cartID uuid.UUID) (*service.Cart, error) {
	return s.getCart(ctx, "id = $1", cartID)
}

func (s *CartStore) getCart(ctx context.Context, where string, arg any) (*service.Cart, error) {
	var cart service.Cart
	err := s.db.QueryRow(ctx, `
		SELECT id, session_token, converted, created_at, updated_at
		FROM carts WHERE `+where, arg,
	).Scan(&cart.ID, &cart.Token, &cart.Converted, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("cart.get", "cart", "")
		}
		return nil, domain.Internal(err, "cart.get", "failed to get cart")
	}
	return &cart, nil
}

// CreateCart creates an empty cart bound to the session token.
func (s *CartStore) CreateCart(ctx context.Context, token string) (*service.Cart, error) {
	var cart service.Cart
	err := s.db.QueryRow(ctx, `
		INSERT INTO carts (session_token)
		VALUES ($1)
		RETURNING id, session_token, converted, created_at, updated_at`,
		token,
	).Scan(&cart.ID, &cart.Token, &cart.Converted, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, domain.Internal(err, "cart.create", "failed to create cart")
	}
	return &cart, nil
}

// AddCartLine appends a line with its customization snapshot.
func (s *CartStore) AddCartLine(ctx context.Context, cartID uuid.UUID, line service.CartLine) (*service.CartLine, error) {
	customizations, err := json.Marshal(line.Customizations)
	if err != nil {
		return nil, domain.Internal(err, "cart.add_line", "failed to encode customizations")
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO cart_lines (cart_id, dish_id, dish_name, quantity, unit_price_cents, customizations)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		cartID, line.DishID, line.DishName, line.Quantity, line.UnitPriceCents, customizations,
	).Scan(&line.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NotFound("cart.add_line", "cart", cartID.String())
		}
		return nil, domain.Internal(err, "cart.add_line", "failed to insert cart line")
	}

	return &line, nil
}

// UpdateCartLineQuantity sets the quantity of one line.
func (s *CartStore) UpdateCartLineQuantity(ctx context.Context, cartID, lineID uuid.UUID, quantity int32) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE cart_lines SET quantity = $3 WHERE id = $2 AND cart_id = $1`,
		cartID, lineID, quantity)
	if err != nil {
		return domain.Internal(err, "cart.update_quantity", "failed to update cart line")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("cart.update_quantity", "cart line", lineID.String())
	}
	return nil
}

// RemoveCartLine deletes one line.
func (s *CartStore) RemoveCartLine(ctx context.Context, cartID, lineID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM cart_lines WHERE id = $2 AND cart_id = $1`,
		cartID, lineID)
	if err != nil {
		return domain.Internal(err, "cart.remove_line", "failed to delete cart line")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("cart.remove_line", "cart line", lineID.String())
	}
	return nil
}

// GetCartLines returns all lines in the cart, oldest first.
func (s *CartStore) GetCartLines(ctx context.Context, cartID uuid.UUID) ([]service.CartLine, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, dish_id, dish_name, quantity, unit_price_cents, customizations
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY created_at`, cartID)
	if err != nil {
		return nil, domain.Internal(err, "cart.get_lines", "failed to get cart lines")
	}
	defer rows.Close()

	var lines []service.CartLine
	for rows.Next() {
		var (
			line           service.CartLine
			customizations []byte
		)
		if err := rows.Scan(&line.ID, &line.DishID, &line.DishName, &line.Quantity,
			&line.UnitPriceCents, &customizations); err != nil {
			return nil, domain.Internal(err, "cart.get_lines", "failed to scan cart line")
		}
		if len(customizations) > 0 {
			if err := json.Unmarshal(customizations, &line.Customizations); err != nil {
				return nil, domain.Internal(err, "cart.get_lines", "failed to decode customizations")
			}
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "cart.get_lines", "failed to read cart lines")
	}

	return lines, nil
}

// ClearCart removes all lines from a cart.
func (s *CartStore) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return domain.Internal(err, "cart.clear", "failed to clear cart")
	}
	return nil
}

// DeleteStaleCarts purges unconverted carts untouched since the cutoff.
// Lines go with them via the foreign key cascade.
func (s *CartStore) DeleteStaleCarts(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM carts
		WHERE converted = false AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, domain.Internal(err, "cart.delete_stale", "failed to delete stale carts")
	}
	return tag.RowsAffected(), nil
}
