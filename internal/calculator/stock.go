package calculator

import "github.com/msmolicek/App-UZama-Grill-Secured/internal/models"

// SoldEntry is the sold quantity of one stock-tracked menu item.
type SoldEntry struct {
	Name string
	Unit models.Unit

	// Grams and Count accumulate weight lines (Count is the number of pieces
	// in them); Pieces accumulates piece lines.
	Grams  int64
	Pieces int64
	Count  int64
}

// Sold returns the figure that depletes stock for the entry's unit.
func (e SoldEntry) Sold() int64 {
	if e.Unit == models.UnitWeight {
		return e.Grams
	}
	return e.Pieces
}

// StockItems returns the food items of the menu in catalog order.
func StockItems(menu []models.MenuItem) []models.MenuItem {
	var items []models.MenuItem
	for _, item := range menu {
		if item.TracksStock() {
			items = append(items, item)
		}
	}
	return items
}

// SoldStock attributes every line to its menu item and accumulates the sold
// quantities. Lines are attributed by MenuItemID; lines without one fall back
// to ParseLegacyName. Lines of unknown or non-food items are skipped.
func SoldStock(menu []models.MenuItem, items []models.BillItem) map[string]SoldEntry {
	sold := make(map[string]SoldEntry)
	for _, item := range StockItems(menu) {
		sold[item.ID] = SoldEntry{Name: item.Name, Unit: item.Unit}
	}

	for _, line := range items {
		id, grams := line.MenuItemID, line.WeightGrams
		if id == "" {
			parsed, ok := ParseLegacyName(menu, line.Name)
			if !ok {
				continue
			}
			id = parsed.MenuItemID
			if grams == 0 {
				grams = parsed.Grams
			}
		}

		entry, ok := sold[id]
		if !ok {
			continue
		}
		quantity := int64(line.Quantity)
		if quantity < 1 {
			quantity = 1
		}
		switch line.Unit {
		case models.UnitWeight:
			entry.Grams += int64(grams)
			entry.Count += quantity
		case models.UnitPiece:
			entry.Pieces += quantity
		}
		sold[id] = entry
	}
	return sold
}

// RemainingStock is max(0, initial − sold) per food item, in the unit of the
// menu item. Oversell never drives it negative.
func RemainingStock(menu []models.MenuItem, initial map[string]int64, sold map[string]SoldEntry) map[string]int64 {
	remaining := make(map[string]int64)
	for _, item := range StockItems(menu) {
		entry := sold[item.ID]
		var used int64
		if item.Unit == models.UnitWeight {
			used = entry.Grams
		} else {
			used = entry.Pieces
		}
		remaining[item.ID] = max(0, initial[item.ID]-used)
	}
	return remaining
}

// StockReady reports whether every food item has a non-negative initial value.
func StockReady(menu []models.MenuItem, initial map[string]int64) bool {
	for _, item := range StockItems(menu) {
		v, ok := initial[item.ID]
		if !ok || v < 0 {
			return false
		}
	}
	return true
}
