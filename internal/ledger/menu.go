package ledger

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

// Menu returns a copy of the catalog.
func (l *Ledger) Menu() []models.MenuItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.state.Menu)
}

// UpsertMenuItem adds an item or replaces the one with the same ID.
// An empty ID gets a generated one.
func (l *Ledger) UpsertMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if err := validateMenuItem(item); err != nil {
		return models.MenuItem{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i := slices.IndexFunc(l.state.Menu, func(m models.MenuItem) bool { return m.ID == item.ID }); i >= 0 {
		l.state.Menu[i] = item
	} else {
		l.state.Menu = append(l.state.Menu, item)
	}
	slog.Info("Menu item saved", "id", item.ID, "name", item.Name, "price", item.Price)
	return item, l.save(ctx)
}

// DeleteMenuItem removes an item from the catalog and the opening stock.
func (l *Ledger) DeleteMenuItem(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := slices.IndexFunc(l.state.Menu, func(m models.MenuItem) bool { return m.ID == id })
	if i < 0 {
		return notFoundf("menu item %s", id)
	}
	l.state.Menu = slices.Delete(l.state.Menu, i, i+1)
	delete(l.state.InitialStock, id)

	slog.Info("Menu item deleted", "id", id)
	return l.save(ctx)
}

// ReplaceMenu swaps the whole catalog, as fetched from the backend. One bad
// record rejects the whole list.
func (l *Ledger) ReplaceMenu(ctx context.Context, items []models.MenuItem) error {
	if len(items) == 0 {
		return validationf("menu must not be empty")
	}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ID == "" {
			return validationf("menu item %q has no id", item.Name)
		}
		if seen[item.ID] {
			return validationf("duplicate menu item id %s", item.ID)
		}
		seen[item.ID] = true
		if err := validateMenuItem(item); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Menu = slices.Clone(items)
	slog.Info("Menu replaced", "items", len(items))
	return l.save(ctx)
}

func validateMenuItem(item models.MenuItem) error {
	if item.Name == "" {
		return validationf("menu item name is required")
	}
	if item.Price < 0 {
		return validationf("price of %s must not be negative", item.Name)
	}
	if !item.Unit.Valid() {
		return validationf("unknown unit %q for %s", item.Unit, item.Name)
	}
	if !item.Category.Valid() {
		return validationf("unknown category %q for %s", item.Category, item.Name)
	}
	return nil
}
