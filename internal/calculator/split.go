package calculator

import (
	"errors"
	"fmt"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

var (
	// ErrUnknownLine is returned when a selection references no open line.
	ErrUnknownLine = errors.New("unknown bill line")
	// ErrNotPayable is returned for lines that cannot be paid on their own.
	ErrNotPayable = errors.New("line is not payable separately")
	// ErrBadQuantity is returned when a selection asks for an impossible quantity.
	ErrBadQuantity = errors.New("invalid pay quantity")
	// ErrStalePrice is returned when the price the operator saw no longer matches the line.
	ErrStalePrice = errors.New("line price changed")
)

// SplitLine is one candidate of the split-payment picker.
type SplitLine struct {
	// ID is the line ID, or "<lineID>-<n>" for unit candidates of a piece line.
	ID             string
	OriginalLineID string
	Name           string

	// Price is the value of this candidate: one unit of a piece line or the
	// whole weight line.
	Price    int64
	Quantity int

	// Selectable is false for complimentary lines; they are listed for visibility.
	Selectable bool
}

// SplitLines expands the account into split candidates. Piece lines with
// quantity > 1 become one candidate per unit; weight lines are a single
// whole-line candidate.
func SplitLines(account models.Account) []SplitLine {
	var lines []SplitLine
	for _, item := range account.Items() {
		payable := !item.Complimentary && item.Price > 0

		if item.Unit == models.UnitPiece && item.Quantity > 1 && payable {
			for i := 0; i < item.Quantity; i++ {
				lines = append(lines, SplitLine{
					ID:             fmt.Sprintf("%s-%d", item.ID, i),
					OriginalLineID: item.ID,
					Name:           item.Name,
					Price:          item.Price,
					Quantity:       1,
					Selectable:     true,
				})
			}
			continue
		}

		lines = append(lines, SplitLine{
			ID:             item.ID,
			OriginalLineID: item.ID,
			Name:           item.Name,
			Price:          LineTotal(item),
			Quantity:       item.Quantity,
			Selectable:     payable,
		})
	}
	return lines
}

// AggregateSelections folds the selected candidate IDs back into one
// PartialSelection per original line, in first-selection order, and returns
// the value of the selection.
func AggregateSelections(lines []SplitLine, selected []string) ([]models.PartialSelection, int64, error) {
	byID := make(map[string]SplitLine, len(lines))
	for _, line := range lines {
		byID[line.ID] = line
	}

	seen := make(map[string]bool, len(selected))
	index := make(map[string]int)
	var (
		selections []models.PartialSelection
		total      int64
	)
	for _, id := range selected {
		line, ok := byID[id]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrUnknownLine, id)
		}
		if !line.Selectable {
			return nil, 0, fmt.Errorf("%w: %s", ErrNotPayable, line.Name)
		}
		if seen[id] {
			return nil, 0, fmt.Errorf("%w: %s selected twice", ErrBadQuantity, id)
		}
		seen[id] = true

		total += line.Price
		if i, ok := index[line.OriginalLineID]; ok {
			selections[i].PayQuantity += line.Quantity
			continue
		}
		index[line.OriginalLineID] = len(selections)
		selections = append(selections, models.PartialSelection{
			OriginalLineID: line.OriginalLineID,
			PayQuantity:    line.Quantity,
			Price:          line.Price,
		})
	}
	return selections, total, nil
}

// Deduction is the outcome of applying partial selections to an account.
type Deduction struct {
	// Remaining is the account with the paid quantities removed; empty lines
	// and empty batches are dropped.
	Remaining models.Account
	// Paid holds the deducted quantities at their original prices.
	Paid []models.BillItem
	// Total is the value of Paid.
	Total int64
}

// Deduct removes the selected quantities from the account. Selections for the
// same line are summed first. Piece lines accept 1..quantity units, weight
// lines only the whole line, and complimentary lines are rejected. A non-zero
// selection price must equal the stored line price.
//
// The account argument is not modified.
func Deduct(account models.Account, selections []models.PartialSelection) (Deduction, error) {
	if len(selections) == 0 {
		return Deduction{}, fmt.Errorf("%w: nothing selected", ErrBadQuantity)
	}

	want := make(map[string]int)
	price := make(map[string]int64)
	var order []string
	for _, sel := range selections {
		if sel.PayQuantity < 1 {
			return Deduction{}, fmt.Errorf("%w: %d for %s", ErrBadQuantity, sel.PayQuantity, sel.OriginalLineID)
		}
		if _, ok := want[sel.OriginalLineID]; !ok {
			order = append(order, sel.OriginalLineID)
		}
		want[sel.OriginalLineID] += sel.PayQuantity
		if sel.Price != 0 {
			price[sel.OriginalLineID] = sel.Price
		}
	}

	remaining := cloneAccount(account)
	paidByLine := make(map[string]models.BillItem, len(order))
	for _, lineID := range order {
		bi, ii, ok := findLine(remaining, lineID)
		if !ok {
			return Deduction{}, fmt.Errorf("%w: %s", ErrUnknownLine, lineID)
		}
		line := &remaining.Batches[bi].Items[ii]
		qty := want[lineID]

		if line.Complimentary || line.Price == 0 {
			return Deduction{}, fmt.Errorf("%w: %s", ErrNotPayable, line.Name)
		}
		if p, ok := price[lineID]; ok && p != line.Price {
			return Deduction{}, fmt.Errorf("%w: %s is %d, not %d", ErrStalePrice, line.Name, line.Price, p)
		}
		if qty > line.Quantity {
			return Deduction{}, fmt.Errorf("%w: %d of %d for %s", ErrBadQuantity, qty, line.Quantity, line.Name)
		}
		if line.Unit == models.UnitWeight && qty != line.Quantity {
			return Deduction{}, fmt.Errorf("%w: weighed line %s is paid only as a whole", ErrBadQuantity, line.Name)
		}

		paid := *line
		paid.Quantity = qty
		paidByLine[lineID] = paid
		line.Quantity -= qty
	}

	d := Deduction{Remaining: dropEmpty(remaining)}
	for _, lineID := range order {
		item := paidByLine[lineID]
		d.Paid = append(d.Paid, item)
		d.Total += LineTotal(item)
	}
	return d, nil
}

// OnTheHouseSplit clamps the comped amount to [0, total] and returns it with
// the remainder that still has to be paid.
func OnTheHouseSplit(total, comped int64) (onTheHouse, remainder int64) {
	onTheHouse = min(max(comped, 0), total)
	return onTheHouse, total - onTheHouse
}

func findLine(account models.Account, lineID string) (batch, item int, ok bool) {
	for bi, b := range account.Batches {
		for ii, it := range b.Items {
			if it.ID == lineID {
				return bi, ii, true
			}
		}
	}
	return 0, 0, false
}

func cloneAccount(account models.Account) models.Account {
	out := account
	out.Batches = make([]models.DispatchBatch, len(account.Batches))
	for i, b := range account.Batches {
		b.Items = append([]models.BillItem(nil), b.Items...)
		out.Batches[i] = b
	}
	return out
}

func dropEmpty(account models.Account) models.Account {
	batches := account.Batches[:0]
	for _, b := range account.Batches {
		items := b.Items[:0]
		for _, it := range b.Items {
			if it.Quantity > 0 {
				items = append(items, it)
			}
		}
		if len(items) == 0 {
			continue
		}
		b.Items = items
		batches = append(batches, b)
	}
	account.Batches = batches

	if pending := account.PendingBatch(); pending == nil {
		account.LastAddedItemID = ""
	} else if _, _, ok := findLine(account, account.LastAddedItemID); !ok {
		account.LastAddedItemID = pending.Items[len(pending.Items)-1].ID
	}
	return account
}
