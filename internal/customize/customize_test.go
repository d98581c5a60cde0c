package customize

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavolaworks/tavola/internal/domain"
)

var (
	elemDrinkID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	elemSauceID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	elemDessertID = uuid.MustParse("33333333-3333-3333-3333-333333333333")

	colaItemID   = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	juiceItemID  = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
	garlicItemID = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001")
	spicyItemID  = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
	flanItemID   = uuid.MustParse("cccccccc-0000-0000-0000-000000000001")
)

// burgerMenu builds a dish with three optional elements:
//   - drink: included by default, +2.00, replaceable by juice (+1.50 on top)
//   - sauce: included by default, +0.00, replaceable by spicy (+0.75 on top)
//   - dessert: excluded by default, +3.00, no replacements
func burgerMenu() *domain.CompositeDish {
	return &domain.CompositeDish{
		ID:             uuid.MustParse("99999999-9999-9999-9999-999999999999"),
		Name:           "Burger Combo",
		BasePriceCents: 800,
		IsAvailable:    true,
		BaseComponents: []domain.BaseComponent{
			{ID: uuid.New(), ItemID: uuid.New(), ItemName: "Beef Patty", Quantity: 1},
		},
		OptionalElements: []domain.OptionalElement{
			{
				ID: elemDrinkID, ItemID: colaItemID, ItemName: "Cola",
				IncludedByDefault: true, AdditionalPriceCents: 200, Type: domain.ElementTypeDrink,
				Replacements: []domain.ReplacementOption{
					{ID: uuid.New(), ItemID: juiceItemID, ItemName: "Fresh Juice", PriceDifferenceCents: 150},
				},
			},
			{
				ID: elemSauceID, ItemID: garlicItemID, ItemName: "Garlic Sauce",
				IncludedByDefault: true, AdditionalPriceCents: 0, Type: domain.ElementTypeSauce,
				Replacements: []domain.ReplacementOption{
					{ID: uuid.New(), ItemID: spicyItemID, ItemName: "Spicy Sauce", PriceDifferenceCents: 75},
				},
			},
			{
				ID: elemDessertID, ItemID: flanItemID, ItemName: "Flan",
				IncludedByDefault: false, AdditionalPriceCents: 300, Type: domain.ElementTypeDessert,
			},
		},
	}
}

func TestInitializeSeedsDefaults(t *testing.T) {
	dish := burgerMenu()
	sel := Initialize(dish)

	require.Len(t, sel.Entries, 3)

	drink, ok := sel.Entry(elemDrinkID)
	require.True(t, ok)
	assert.True(t, drink.Included)
	assert.Equal(t, uuid.Nil, drink.ReplacementItemID)
	assert.Equal(t, domain.Cents(200), drink.AdjustmentCents)

	dessert, ok := sel.Entry(elemDessertID)
	require.True(t, ok)
	assert.False(t, dessert.Included)
	assert.Equal(t, domain.Cents(0), dessert.AdjustmentCents)
}

func TestResolveDefaultStatePrice(t *testing.T) {
	dish := burgerMenu()
	priced := Resolve(dish, Initialize(dish))

	// base 8.00 + drink 2.00 + sauce 0.00; dessert excluded by default
	assert.Equal(t, domain.Cents(1000), priced.TotalCents)
	assert.Equal(t, domain.Cents(800), priced.BasePriceCents)

	// only the drink carries a non-zero adjustment
	require.Len(t, priced.Lines, 1)
	assert.Equal(t, "Cola", priced.Lines[0].Label)
	assert.Equal(t, domain.Cents(200), priced.Lines[0].AmountCents)
}

func TestResolveIdempotent(t *testing.T) {
	dish := burgerMenu()
	sel := Initialize(dish)
	sel, err := Replace(dish, sel, elemDrinkID, juiceItemID)
	require.NoError(t, err)
	sel, err = Toggle(dish, sel, elemDessertID)
	require.NoError(t, err)

	first := Resolve(dish, sel)
	second := Resolve(dish, sel)
	assert.Equal(t, first, second)
}

func TestToggleRoundTrip(t *testing.T) {
	dish := burgerMenu()
	sel := Initialize(dish)

	// choose a replacement first, so the round trip has something to forget
	sel, err := Replace(dish, sel, elemDrinkID, juiceItemID)
	require.NoError(t, err)
	entry, _ := sel.Entry(elemDrinkID)
	require.Equal(t, domain.Cents(350), entry.AdjustmentCents)

	sel, err = Toggle(dish, sel, elemDrinkID)
	require.NoError(t, err)
	sel, err = Toggle(dish, sel, elemDrinkID)
	require.NoError(t, err)

	entry, ok := sel.Entry(elemDrinkID)
	require.True(t, ok)
	assert.True(t, entry.Included, "inclusion restored to the default-implied value")

	// the prior replacement is NOT remembered: adjustment falls back to the
	// element's own additional price, not the pre-toggle 3.50
	assert.Equal(t, uuid.Nil, entry.ReplacementItemID)
	assert.Equal(t, domain.Cents(200), entry.AdjustmentCents)
}

func TestToggleExcludeZeroesAdjustment(t *testing.T) {
	dish := burgerMenu()
	sel := Initialize(dish)

	sel, err := Replace(dish, sel, elemDrinkID, juiceItemID)
	require.NoError(t, err)

	sel, err = Toggle(dish, sel, elemDrinkID)
	require.NoError(t, err)

	entry, _ := sel.Entry(elemDrinkID)
	assert.False(t, entry.Included)
	assert.Equal(t, uuid.Nil, entry.ReplacementItemID, "toggling off discards the replacement")
	assert.Equal(t, domain.Cents(0), entry.AdjustmentCents)
}

func TestReplacePricing(t *testing.T) {
	dish := burgerMenu()
	sel := Initialize(dish)

	// additionalPrice 2.00 + priceDifference 1.50 = 3.50
	sel, err := Replace(dish, sel, elemDrinkID, juiceItemID)
	require.NoError(t, err)

	entry, _ := sel.Entry(elemDrinkID)
	assert.Equal(t, domain.Cents(350), entry.AdjustmentCents)
	assert.Equal(t, juiceItemID, entry.ReplacementItemID)

	priced := Resolve(dish, sel)
	assert.Equal(t, domain.Cents(1150), priced.TotalCents)
	require.NotEmpty(t, priced.Lines)
	assert.Equal(t, "Fresh Juice", priced.Lines[0].Label, "label follows the active replacement")
}

func TestReplaceForcesInclusion(t *testing.T) {
	dish := burgerMenu()
	sel := Initialize(dish)

	sel, err := Toggle(dish, sel, elemDrinkID)
	require.NoError(t, err)
	entry, _ := sel.Entry(elemDrinkID)
	require.False(t, entry.Included)

	sel, err = Replace(dish, sel, elemDrinkID, juiceItemID)
	require.NoError(t, err)

	entry, _ = sel.Entry(elemDrinkID)
	assert.True(t, entry.Included, "replacing an excluded element includes it")
	assert.Equal(t, domain.Cents(350), entry.AdjustmentCents)
}

func TestReplaceUnknownLeavesStateUnchanged(t *testing.T) {
	dish := burgerMenu()
	sel := Initialize(dish)

	got, err := Replace(dish, sel, elemDrinkID, flanItemID)
	require.ErrorIs(t, err, ErrUnknownReplacement)
	assert.Equal(t, sel, got)

	_, err = Replace(dish, sel, uuid.New(), juiceItemID)
	assert.ErrorIs(t, err, ErrUnknownElement)
}

func TestClearReplacement(t *testing.T) {
	dish := burgerMenu()
	sel := Initialize(dish)

	sel, err := Replace(dish, sel, elemDrinkID, juiceItemID)
	require.NoError(t, err)

	sel, err = ClearReplacement(dish, sel, elemDrinkID)
	require.NoError(t, err)

	entry, _ := sel.Entry(elemDrinkID)
	assert.True(t, entry.Included, "clearing a replacement keeps the element included")
	assert.Equal(t, uuid.Nil, entry.ReplacementItemID)
	assert.Equal(t, domain.Cents(200), entry.AdjustmentCents)
}

func TestMutatorsDoNotShareState(t *testing.T) {
	dish := burgerMenu()
	base := Initialize(dish)

	_, err := Toggle(dish, base, elemDessertID)
	require.NoError(t, err)

	// the original selection is untouched by the derived one
	entry, _ := base.Entry(elemDessertID)
	assert.False(t, entry.Included)
	assert.Equal(t, domain.Cents(0), entry.AdjustmentCents)
}
