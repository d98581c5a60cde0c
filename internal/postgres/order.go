package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/service"
)

// OrderStore implements service.OrderStore using PostgreSQL.
type OrderStore struct {
	db *pgxpool.Pool
}

// Compile-time check that OrderStore implements service.OrderStore.
var _ service.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates a new PostgreSQL-backed order store.
func NewOrderStore(db *pgxpool.Pool) *OrderStore {
	return &OrderStore{db: db}
}

// CreateOrder persists the order with its lines and customization audit rows
// and marks the source cart converted, all in one transaction. The converted
// flag doubles as the idempotency guard: a cart can only convert once.
func (s *OrderStore) CreateOrder(ctx context.Context, order *domain.Order, cartID uuid.UUID) (*domain.Order, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, domain.Internal(err, "order.create", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE carts SET converted = TRUE, updated_at = now()
		WHERE id = $1 AND NOT converted`, cartID)
	if err != nil {
		return nil, domain.Internal(err, "order.create", "failed to convert cart")
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrCartAlreadyConverted
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, customer_id, customer_email, order_type, status,
			payment_status, table_number, delivery_address, customer_notes,
			subtotal_cents, delivery_fee_cents, total_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		order.OrderNumber, order.CustomerID, order.CustomerEmail, order.Type, order.Status,
		order.PaymentStatus, order.TableNumber, order.DeliveryAddress, order.CustomerNotes,
		order.SubtotalCents, order.DeliveryFeeCents, order.TotalCents,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, domain.Internal(err, "order.create", "failed to insert order")
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		line.OrderID = order.ID

		err = tx.QueryRow(ctx, `
			INSERT INTO order_lines (order_id, dish_id, dish_name, quantity, unit_price_cents, line_total_cents)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			order.ID, line.DishID, line.DishName, line.Quantity,
			line.UnitPriceCents, line.LineTotalCents,
		).Scan(&line.ID)
		if err != nil {
			return nil, domain.Internal(err, "order.create", "failed to insert order line")
		}

		for j := range line.Customizations {
			c := &line.Customizations[j]
			err = tx.QueryRow(ctx, `
				INSERT INTO order_line_customizations (order_line_id, element_id, element_name,
					included, replacement_item_id, replacement_item_name, adjustment_cents)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id`,
				line.ID, c.ElementID, c.ElementName, c.Included,
				nullableUUID(c.ReplacementItemID), c.ReplacementItemName, c.AdjustmentCents,
			).Scan(&c.ID)
			if err != nil {
				return nil, domain.Internal(err, "order.create", "failed to insert customization record")
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Internal(err, "order.create", "failed to commit transaction")
	}

	return order, nil
}

// GetOrder retrieves an order with its lines and customization audit rows.
func (s *OrderStore) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := s.db.QueryRow(ctx, `
		SELECT id, order_number, customer_id, customer_email, order_type, status,
			payment_status, table_number, delivery_address, customer_notes,
			subtotal_cents, delivery_fee_cents, total_cents, created_at, updated_at
		FROM orders WHERE id = $1`, orderID,
	).Scan(&order.ID, &order.OrderNumber, &order.CustomerID, &order.CustomerEmail,
		&order.Type, &order.Status, &order.PaymentStatus, &order.TableNumber,
		&order.DeliveryAddress, &order.CustomerNotes, &order.SubtotalCents,
		&order.DeliveryFeeCents, &order.TotalCents, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get", "failed to get order")
	}

	if err := s.loadLines(ctx, []*domain.Order{&order}); err != nil {
		return nil, err
	}

	return &order, nil
}

// ListOrders returns orders matching the filter, newest first.
func (s *OrderStore) ListOrders(ctx context.Context, filter service.OrderFilter) ([]domain.Order, error) {
	var (
		where []string
		args  []any
	)
	if filter.CustomerID != uuid.Nil {
		args = append(args, filter.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, filter.Statuses)
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if len(filter.Types) > 0 {
		args = append(args, filter.Types)
		where = append(where, fmt.Sprintf("order_type = ANY($%d)", len(args)))
	}

	query := `
		SELECT id, order_number, customer_id, customer_email, order_type, status,
			payment_status, table_number, delivery_address, customer_notes,
			subtotal_cents, delivery_fee_cents, total_cents, created_at, updated_at
		FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.OrderNumber, &order.CustomerID, &order.CustomerEmail,
			&order.Type, &order.Status, &order.PaymentStatus, &order.TableNumber,
			&order.DeliveryAddress, &order.CustomerNotes, &order.SubtotalCents,
			&order.DeliveryFeeCents, &order.TotalCents, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, domain.Internal(err, "order.list", "failed to scan order")
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.list", "failed to read orders")
	}

	refs := make([]*domain.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := s.loadLines(ctx, refs); err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateOrderStatus moves an order between statuses with an optimistic guard
// on the expected current status.
func (s *OrderStore) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`,
		orderID, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateOrderPaymentStatus sets the payment verification state of an order.
func (s *OrderStore) UpdateOrderPaymentStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders SET payment_status = $2, updated_at = now()
		WHERE id = $1`,
		orderID, status)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// loadLines fetches lines and customization rows for the given orders in two
// queries and stitches them in.
func (s *OrderStore) loadLines(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	orderIDs := make([]uuid.UUID, len(orders))
	orderIndex := make(map[uuid.UUID]*domain.Order, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
		orderIndex[o.ID] = o
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, dish_id, dish_name, quantity, unit_price_cents, line_total_cents
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY created_at`, orderIDs)
	if err != nil {
		return domain.Internal(err, "order.get", "failed to get order lines")
	}
	defer rows.Close()

	var lineIDs []uuid.UUID
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.DishID, &line.DishName,
			&line.Quantity, &line.UnitPriceCents, &line.LineTotalCents); err != nil {
			return domain.Internal(err, "order.get", "failed to scan order line")
		}
		order := orderIndex[line.OrderID]
		order.Lines = append(order.Lines, line)
		lineIDs = append(lineIDs, line.ID)
	}
	if err := rows.Err(); err != nil {
		return domain.Internal(err, "order.get", "failed to read order lines")
	}
	if len(lineIDs) == 0 {
		return nil
	}

	// Index after all appends so the pointers stay valid.
	lineIndex := make(map[uuid.UUID]*domain.OrderLine, len(lineIDs))
	for _, o := range orders {
		for i := range o.Lines {
			lineIndex[o.Lines[i].ID] = &o.Lines[i]
		}
	}

	custRows, err := s.db.Query(ctx, `
		SELECT id, order_line_id, element_id, element_name, included,
			replacement_item_id, replacement_item_name, adjustment_cents
		FROM order_line_customizations
		WHERE order_line_id = ANY($1)`, lineIDs)
	if err != nil {
		return domain.Internal(err, "order.get", "failed to get customization records")
	}
	defer custRows.Close()

	for custRows.Next() {
		var (
			c           domain.LineCustomization
			lineID      uuid.UUID
			replacement pgtype.UUID
		)
		if err := custRows.Scan(&c.ID, &lineID, &c.ElementID, &c.ElementName,
			&c.Included, &replacement, &c.ReplacementItemName, &c.AdjustmentCents); err != nil {
			return domain.Internal(err, "order.get", "failed to scan customization record")
		}
		c.ReplacementItemID = fromNullableUUID(replacement)
		if line, ok := lineIndex[lineID]; ok {
			line.Customizations = append(line.Customizations, c)
		}
	}
	return custRows.Err()
}
