package admin

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/handler"
)

type menuItemView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt string    `json:"created_at"`
}

func menuItem(item *domain.MenuItem) menuItemView {
	return menuItemView{
		ID:        item.ID,
		Name:      item.Name,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// createItemRequest registers a menu item for dishes to reference.
type createItemRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CreateItem handles POST /admin/items
func (h *DishHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	item, err := h.catalog.CreateMenuItem(r.Context(), req.Name)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusCreated, menuItem(item))
}

// ListItems handles GET /admin/items
func (h *DishHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListMenuItems(r.Context())
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	views := make([]menuItemView, 0, len(items))
	for i := range items {
		views = append(views, menuItem(&items[i]))
	}

	handler.JSON(w, http.StatusOK, map[string]any{"items": views})
}
