package customize

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavolaworks/tavola/internal/domain"
)

func TestMaterializeRecordsNonDefaultStates(t *testing.T) {
	dish := burgerMenu()
	sel := Initialize(dish)

	sel, err := Replace(dish, sel, elemDrinkID, juiceItemID)
	require.NoError(t, err)
	sel, err = Toggle(dish, sel, elemSauceID) // excluded-when-default
	require.NoError(t, err)
	sel, err = Toggle(dish, sel, elemDessertID) // included-when-not-default
	require.NoError(t, err)

	priced := Resolve(dish, sel)
	draft := Materialize(dish, sel, priced)

	assert.Equal(t, dish.ID, draft.DishID)
	assert.Equal(t, "Burger Combo", draft.DishName)
	// 8.00 + (2.00 + 1.50) + 3.00, sauce excluded
	assert.Equal(t, domain.Cents(1450), draft.UnitPriceCents)

	require.Len(t, draft.Customizations, 3)

	byElement := map[uuid.UUID]domain.LineCustomization{}
	for _, c := range draft.Customizations {
		byElement[c.ElementID] = c
	}

	drink := byElement[elemDrinkID]
	assert.True(t, drink.Included)
	assert.Equal(t, juiceItemID, drink.ReplacementItemID)
	assert.Equal(t, "Fresh Juice", drink.ReplacementItemName)
	assert.Equal(t, domain.Cents(350), drink.AdjustmentCents)

	sauce := byElement[elemSauceID]
	assert.False(t, sauce.Included)
	assert.Equal(t, domain.Cents(0), sauce.AdjustmentCents)

	dessert := byElement[elemDessertID]
	assert.True(t, dessert.Included)
	assert.Equal(t, domain.Cents(300), dessert.AdjustmentCents)
}

func TestMaterializeDefaultSelectionHasNoRecords(t *testing.T) {
	dish := burgerMenu()
	sel := Initialize(dish)
	draft := Materialize(dish, sel, Resolve(dish, sel))

	assert.Empty(t, draft.Customizations)
	assert.Equal(t, domain.Cents(1000), draft.UnitPriceCents)
}

// TestCustomizationScenario walks the whole engine the way a session does:
// a 8.00 dish with one free default-included element that can be swapped for
// a +1.00 alternative.
func TestCustomizationScenario(t *testing.T) {
	dishID := uuid.New()
	elementID := uuid.New()
	teaItemID := uuid.New()
	lemonadeItemID := uuid.New()

	dish := &domain.CompositeDish{
		ID:             dishID,
		Name:           "Grill Plate",
		BasePriceCents: 800,
		IsAvailable:    true,
		BaseComponents: []domain.BaseComponent{
			{ID: uuid.New(), ItemID: uuid.New(), ItemName: "Mixed Grill", Quantity: 1},
		},
		OptionalElements: []domain.OptionalElement{
			{
				ID: elementID, ItemID: teaItemID, ItemName: "Iced Tea",
				IncludedByDefault: true, AdditionalPriceCents: 0, Type: domain.ElementTypeDrink,
				Replacements: []domain.ReplacementOption{
					{ID: uuid.New(), ItemID: lemonadeItemID, ItemName: "Lemonade", PriceDifferenceCents: 100},
				},
			},
		},
	}

	sel := Initialize(dish)
	assert.Equal(t, domain.Cents(800), Resolve(dish, sel).TotalCents)

	replaced, err := Replace(dish, sel, elementID, lemonadeItemID)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(900), Resolve(dish, replaced).TotalCents)

	excluded, err := Toggle(dish, replaced, elementID)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(800), Resolve(dish, excluded).TotalCents)

	require.NoError(t, Validate(dish, replaced))
	priced := Resolve(dish, replaced)
	draft := Materialize(dish, replaced, priced)

	assert.Equal(t, domain.Cents(900), draft.UnitPriceCents)
	require.Len(t, draft.Customizations, 1)
	record := draft.Customizations[0]
	assert.Equal(t, lemonadeItemID, record.ReplacementItemID)
	assert.Equal(t, domain.Cents(100), record.AdjustmentCents)
}
