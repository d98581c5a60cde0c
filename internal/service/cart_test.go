package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavolaworks/tavola/internal/customize"
	"github.com/tavolaworks/tavola/internal/domain"
)

func burgerDraft() customize.OrderLineDraft {
	return customize.OrderLineDraft{
		DishID:         uuid.New(),
		DishName:       "Burger Combo",
		UnitPriceCents: 1150,
		Customizations: []domain.LineCustomization{
			{ElementID: uuid.New(), ElementName: "Flan", Included: true, AdjustmentCents: 300},
		},
	}
}

func TestGetOrCreateCartReusesToken(t *testing.T) {
	store := newFakeCartStore()
	svc := NewCartService(store)

	cart, token, err := svc.GetOrCreateCart(context.Background(), "")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	again, sameToken, err := svc.GetOrCreateCart(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
	assert.Equal(t, token, sameToken)
}

func TestGetOrCreateCartReplacesConverted(t *testing.T) {
	store := newFakeCartStore()
	svc := NewCartService(store)

	convertedID := store.addCart(true)
	token := store.carts[convertedID].Token

	fresh, newToken, err := svc.GetOrCreateCart(context.Background(), token)
	require.NoError(t, err)
	assert.NotEqual(t, convertedID, fresh.ID)
	assert.NotEqual(t, token, newToken)
}

func TestAddLineQuantityRules(t *testing.T) {
	store := newFakeCartStore()
	svc := NewCartService(store)
	cartID := store.addCart(false)

	_, err := svc.AddLine(context.Background(), cartID, burgerDraft(), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddLine(context.Background(), cartID, burgerDraft(), -2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	summary, err := svc.AddLine(context.Background(), cartID, burgerDraft(), 3)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, int32(3), summary.Lines[0].Quantity)
	assert.Equal(t, domain.Cents(3450), summary.Lines[0].LineTotalCents)
	assert.Equal(t, domain.Cents(3450), summary.SubtotalCents)
	assert.Equal(t, int32(3), summary.ItemCount)
}

func TestAddLineCarriesCustomizations(t *testing.T) {
	store := newFakeCartStore()
	svc := NewCartService(store)
	cartID := store.addCart(false)

	summary, err := svc.AddLine(context.Background(), cartID, burgerDraft(), 1)
	require.NoError(t, err)
	require.Len(t, summary.Lines[0].Customizations, 1)
	assert.Equal(t, "Flan", summary.Lines[0].Customizations[0].ElementName)
}

func TestUpdateLineQuantityZeroRemoves(t *testing.T) {
	store := newFakeCartStore()
	svc := NewCartService(store)
	cartID := store.addCart(false)

	summary, err := svc.AddLine(context.Background(), cartID, burgerDraft(), 2)
	require.NoError(t, err)
	lineID := summary.Lines[0].ID

	summary, err = svc.UpdateLineQuantity(context.Background(), cartID, lineID, 0)
	require.NoError(t, err)
	assert.Empty(t, summary.Lines)
	assert.Equal(t, domain.Cents(0), summary.SubtotalCents)
}

func TestCartSummaryTotals(t *testing.T) {
	store := newFakeCartStore()
	svc := NewCartService(store)
	cartID := store.addCart(false,
		CartLine{ID: uuid.New(), DishName: "A", Quantity: 2, UnitPriceCents: 500},
		CartLine{ID: uuid.New(), DishName: "B", Quantity: 1, UnitPriceCents: 950},
	)

	summary, err := svc.GetCartSummary(context.Background(), cartID)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(1950), summary.SubtotalCents)
	assert.Equal(t, int32(3), summary.ItemCount)
}

func TestCartSummaryNotFound(t *testing.T) {
	svc := NewCartService(newFakeCartStore())
	_, err := svc.GetCartSummary(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCartNotFound)
}
