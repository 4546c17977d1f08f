package models

// Unit says how a menu item is priced and counted.
type Unit string

// Category decides whether a menu item is tracked in stock.
type Category string

const (
	// UnitWeight items are priced per 100 g and entered with a total gram amount.
	UnitWeight Unit = "grams"
	// UnitPiece items are priced per discrete piece.
	UnitPiece Unit = "pieces"

	// CategoryFood items come off the grill and deplete stock.
	CategoryFood Category = "food"
	// CategoryOther items (drinks, extras) are sold but never stock-tracked
	// and never sent to the kitchen.
	CategoryOther Category = "other"
)

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	return u == UnitWeight || u == UnitPiece
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryFood || c == CategoryOther
}

// MenuItem represents one sellable item of the catalog.
// The JSON shape is the record shape exchanged with the remote backend.
type MenuItem struct {
	// ID is the unique, stable identifier (e.g. "kureci").
	ID string `json:"id"`

	// Name is the label shown to the operator and printed on bill lines.
	Name string `json:"name"`

	// Price is in Kč: per 100 g for UnitWeight, per piece for UnitPiece.
	Price int64 `json:"price"`

	// Unit is serialized as "type" for compatibility with the backend.
	Unit Unit `json:"type"`

	Category Category `json:"category"`
}

// TracksStock reports whether sales of this item deplete stock.
func (m MenuItem) TracksStock() bool {
	return m.Category == CategoryFood
}

// DefaultMenu returns the seed catalog used when neither a persisted nor a
// remote menu is available.
func DefaultMenu() []MenuItem {
	return []MenuItem{
		{ID: "kureci", Name: "Kuřecí", Unit: UnitWeight, Price: 89, Category: CategoryFood},
		{ID: "veprove", Name: "Vepřové", Unit: UnitWeight, Price: 89, Category: CategoryFood},
		{ID: "camembert", Name: "Camembert", Unit: UnitPiece, Price: 129, Category: CategoryFood},
		{ID: "brambora", Name: "Pečená brambora", Unit: UnitPiece, Price: 40, Category: CategoryFood},
	}
}

// FindMenuItem returns the item with the given ID.
func FindMenuItem(menu []MenuItem, id string) (MenuItem, bool) {
	for _, item := range menu {
		if item.ID == id {
			return item, true
		}
	}
	return MenuItem{}, false
}
