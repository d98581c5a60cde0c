package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tavolaworks/tavola/internal/domain"
)

// CatalogService implements domain.CatalogService using PostgreSQL.
type CatalogService struct {
	db *pgxpool.Pool
}

// Compile-time check that CatalogService implements domain.CatalogService.
var _ domain.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates a new PostgreSQL-backed catalog service.
func NewCatalogService(db *pgxpool.Pool) *CatalogService {
	return &CatalogService{db: db}
}

// =============================================================================
// STOREFRONT OPERATIONS
// =============================================================================

// Load returns a stable snapshot of an available dish with its full element
// and replacement graph.
func (s *CatalogService) Load(ctx context.Context, dishID uuid.UUID) (*domain.CompositeDish, error) {
	dish, err := s.getDish(ctx, "id = $1", dishID)
	if err != nil {
		return nil, err
	}
	if !dish.IsAvailable {
		return nil, domain.ErrDishUnavailable
	}
	return dish, nil
}

// LoadBySlug is Load keyed by the public menu slug.
func (s *CatalogService) LoadBySlug(ctx context.Context, slug string) (*domain.CompositeDish, error) {
	dish, err := s.getDish(ctx, "slug = $1", slug)
	if err != nil {
		return nil, err
	}
	if !dish.IsAvailable {
		return nil, domain.ErrDishUnavailable
	}
	return dish, nil
}

// ListAvailable returns all available dishes for public menu display.
func (s *CatalogService) ListAvailable(ctx context.Context) ([]domain.DishListItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT d.id, d.name, d.slug, d.description, d.base_price_cents, d.image_url,
		       (SELECT COUNT(*) FROM dish_optional_elements e WHERE e.dish_id = d.id)
		FROM composite_dishes d
		WHERE d.is_available
		ORDER BY d.name`)
	if err != nil {
		return nil, domain.Internal(err, "catalog.list", "failed to list dishes")
	}
	defer rows.Close()

	var items []domain.DishListItem
	for rows.Next() {
		var item domain.DishListItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Slug, &item.Description,
			&item.BasePriceCents, &item.ImageURL, &item.ElementCount); err != nil {
			return nil, domain.Internal(err, "catalog.list", "failed to scan dish row")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "catalog.list", "failed to read dish rows")
	}

	return items, nil
}

// =============================================================================
// ADMIN OPERATIONS
// =============================================================================

// CreateMenuItem registers an atomic item for dishes to reference.
func (s *CatalogService) CreateMenuItem(ctx context.Context, name string) (*domain.MenuItem, error) {
	item := domain.MenuItem{Name: name}
	err := s.db.QueryRow(ctx, `
		INSERT INTO menu_items (name)
		VALUES ($1)
		RETURNING id, created_at, updated_at`, name,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, domain.Internal(err, "catalog.create_item", "failed to insert menu item")
	}
	return &item, nil
}

// ListMenuItems returns every menu item, ordered by name.
func (s *CatalogService) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM menu_items
		ORDER BY name`)
	if err != nil {
		return nil, domain.Internal(err, "catalog.list_items", "failed to list menu items")
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, domain.Internal(err, "catalog.list_items", "failed to scan menu item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "catalog.list_items", "failed to read menu items")
	}

	return items, nil
}

// GetDish retrieves a dish by ID regardless of availability.
func (s *CatalogService) GetDish(ctx context.Context, dishID uuid.UUID) (*domain.CompositeDish, error) {
	return s.getDish(ctx, "id = $1", dishID)
}

// CreateDish creates a new composite dish with its base components.
func (s *CatalogService) CreateDish(ctx context.Context, params domain.CreateDishParams) (*domain.CompositeDish, error) {
	if params.BasePriceCents < 0 {
		return nil, domain.ErrInvalidPrice
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, domain.Internal(err, "catalog.create_dish", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	var dishID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO composite_dishes (name, slug, description, base_price_cents, is_available, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		params.Name, params.Slug, params.Description, params.BasePriceCents,
		params.IsAvailable, params.ImageURL,
	).Scan(&dishID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateDishSlug
		}
		return nil, domain.Internal(err, "catalog.create_dish", "failed to insert dish")
	}

	for _, bc := range params.BaseComponents {
		_, err := tx.Exec(ctx, `
			INSERT INTO dish_base_components (dish_id, item_id, quantity)
			VALUES ($1, $2, $3)`,
			dishID, bc.ItemID, bc.Quantity)
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, domain.ErrItemNotFound
			}
			return nil, domain.Internal(err, "catalog.create_dish", "failed to insert base component")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Internal(err, "catalog.create_dish", "failed to commit transaction")
	}

	return s.GetDish(ctx, dishID)
}

// UpdateDish updates dish attributes. Nil pointer fields are unchanged.
func (s *CatalogService) UpdateDish(ctx context.Context, dishID uuid.UUID, params domain.UpdateDishParams) error {
	if params.BasePriceCents != nil && *params.BasePriceCents < 0 {
		return domain.ErrInvalidPrice
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE composite_dishes SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			base_price_cents = COALESCE($4, base_price_cents),
			is_available = COALESCE($5, is_available),
			image_url = COALESCE($6, image_url),
			updated_at = now()
		WHERE id = $1`,
		dishID, params.Name, params.Description, params.BasePriceCents,
		params.IsAvailable, params.ImageURL)
	if err != nil {
		return domain.Internal(err, "catalog.update_dish", "failed to update dish")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDishNotFound
	}

	return nil
}

// AddElement attaches an optional element to a dish.
func (s *CatalogService) AddElement(ctx context.Context, params domain.AddElementParams) (*domain.OptionalElement, error) {
	elem := domain.OptionalElement{
		ItemID:               params.ItemID,
		IncludedByDefault:    params.IncludedByDefault,
		AdditionalPriceCents: params.AdditionalPriceCents,
		Type:                 params.Type,
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO dish_optional_elements (dish_id, item_id, included_by_default, additional_price_cents, element_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, (SELECT name FROM menu_items WHERE id = $2)`,
		params.DishID, params.ItemID, params.IncludedByDefault,
		params.AdditionalPriceCents, params.Type,
	).Scan(&elem.ID, &elem.ItemName)
	if err != nil {
		// Two foreign keys can fail here; report the one that did.
		if isForeignKeyViolation(err) {
			if strings.HasSuffix(violatedConstraint(err), "item_id_fkey") {
				return nil, domain.ErrItemNotFound
			}
			return nil, domain.ErrDishNotFound
		}
		return nil, domain.Internal(err, "catalog.add_element", "failed to insert element")
	}

	return &elem, nil
}

// RemoveElement detaches an optional element; its replacement options cascade.
func (s *CatalogService) RemoveElement(ctx context.Context, dishID, elementID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM dish_optional_elements WHERE id = $1 AND dish_id = $2`,
		elementID, dishID)
	if err != nil {
		return domain.Internal(err, "catalog.remove_element", "failed to delete element")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrElementNotFound
	}
	return nil
}

// AddReplacement attaches a replacement option to an element. An option
// referencing the element's own item is rejected.
func (s *CatalogService) AddReplacement(ctx context.Context, params domain.AddReplacementParams) (*domain.ReplacementOption, error) {
	var elementItemID uuid.UUID
	err := s.db.QueryRow(ctx, `
		SELECT item_id FROM dish_optional_elements WHERE id = $1`,
		params.ElementID,
	).Scan(&elementItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrElementNotFound
		}
		return nil, domain.Internal(err, "catalog.add_replacement", "failed to get element")
	}
	if elementItemID == params.ItemID {
		return nil, domain.ErrSelfReplacement
	}

	opt := domain.ReplacementOption{
		ItemID:               params.ItemID,
		PriceDifferenceCents: params.PriceDifferenceCents,
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO element_replacement_options (element_id, item_id, price_difference_cents)
		VALUES ($1, $2, $3)
		RETURNING id, (SELECT name FROM menu_items WHERE id = $2)`,
		params.ElementID, params.ItemID, params.PriceDifferenceCents,
	).Scan(&opt.ID, &opt.ItemName)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrItemNotFound
		}
		return nil, domain.Internal(err, "catalog.add_replacement", "failed to insert replacement")
	}

	return &opt, nil
}

// RemoveReplacement detaches a replacement option from an element.
func (s *CatalogService) RemoveReplacement(ctx context.Context, elementID, replacementID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM element_replacement_options WHERE id = $1 AND element_id = $2`,
		replacementID, elementID)
	if err != nil {
		return domain.Internal(err, "catalog.remove_replacement", "failed to delete replacement")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReplacementNotFound
	}
	return nil
}

// =============================================================================
// LOADING HELPERS
// =============================================================================

// getDish fetches a dish and assembles its component, element, and
// replacement graph.
func (s *CatalogService) getDish(ctx context.Context, where string, arg any) (*domain.CompositeDish, error) {
	var dish domain.CompositeDish
	err := s.db.QueryRow(ctx, `
		SELECT id, name, slug, description, base_price_cents, is_available, image_url, created_at, updated_at
		FROM composite_dishes WHERE `+where, arg,
	).Scan(&dish.ID, &dish.Name, &dish.Slug, &dish.Description, &dish.BasePriceCents,
		&dish.IsAvailable, &dish.ImageURL, &dish.CreatedAt, &dish.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDishNotFound
		}
		return nil, domain.Internal(err, "catalog.get_dish", "failed to get dish")
	}

	if err := s.loadBaseComponents(ctx, &dish); err != nil {
		return nil, err
	}
	if err := s.loadOptionalElements(ctx, &dish); err != nil {
		return nil, err
	}

	return &dish, nil
}

func (s *CatalogService) loadBaseComponents(ctx context.Context, dish *domain.CompositeDish) error {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.item_id, i.name, c.quantity
		FROM dish_base_components c
		JOIN menu_items i ON i.id = c.item_id
		WHERE c.dish_id = $1
		ORDER BY i.name`, dish.ID)
	if err != nil {
		return domain.Internal(err, "catalog.get_dish", "failed to get base components")
	}
	defer rows.Close()

	for rows.Next() {
		var bc domain.BaseComponent
		if err := rows.Scan(&bc.ID, &bc.ItemID, &bc.ItemName, &bc.Quantity); err != nil {
			return domain.Internal(err, "catalog.get_dish", "failed to scan base component")
		}
		dish.BaseComponents = append(dish.BaseComponents, bc)
	}
	return rows.Err()
}

func (s *CatalogService) loadOptionalElements(ctx context.Context, dish *domain.CompositeDish) error {
	rows, err := s.db.Query(ctx, `
		SELECT e.id, e.item_id, i.name, e.included_by_default, e.additional_price_cents, e.element_type
		FROM dish_optional_elements e
		JOIN menu_items i ON i.id = e.item_id
		WHERE e.dish_id = $1
		ORDER BY e.element_type, i.name`, dish.ID)
	if err != nil {
		return domain.Internal(err, "catalog.get_dish", "failed to get optional elements")
	}
	defer rows.Close()

	elementIndex := make(map[uuid.UUID]int)
	for rows.Next() {
		var e domain.OptionalElement
		if err := rows.Scan(&e.ID, &e.ItemID, &e.ItemName, &e.IncludedByDefault,
			&e.AdditionalPriceCents, &e.Type); err != nil {
			return domain.Internal(err, "catalog.get_dish", "failed to scan optional element")
		}
		elementIndex[e.ID] = len(dish.OptionalElements)
		dish.OptionalElements = append(dish.OptionalElements, e)
	}
	if err := rows.Err(); err != nil {
		return domain.Internal(err, "catalog.get_dish", "failed to read optional elements")
	}
	if len(dish.OptionalElements) == 0 {
		return nil
	}

	repRows, err := s.db.Query(ctx, `
		SELECT r.id, r.element_id, r.item_id, i.name, r.price_difference_cents
		FROM element_replacement_options r
		JOIN dish_optional_elements e ON e.id = r.element_id
		JOIN menu_items i ON i.id = r.item_id
		WHERE e.dish_id = $1
		ORDER BY i.name`, dish.ID)
	if err != nil {
		return domain.Internal(err, "catalog.get_dish", "failed to get replacement options")
	}
	defer repRows.Close()

	for repRows.Next() {
		var (
			opt       domain.ReplacementOption
			elementID uuid.UUID
		)
		if err := repRows.Scan(&opt.ID, &elementID, &opt.ItemID, &opt.ItemName,
			&opt.PriceDifferenceCents); err != nil {
			return domain.Internal(err, "catalog.get_dish", "failed to scan replacement option")
		}
		if i, ok := elementIndex[elementID]; ok {
			dish.OptionalElements[i].Replacements = append(dish.OptionalElements[i].Replacements, opt)
		}
	}
	return repRows.Err()
}
