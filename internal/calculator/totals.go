// Package calculator holds the pure bill, stock and split arithmetic of the
// ledger. Nothing in here touches state; the ledger package owns that.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

var hundred = decimal.NewFromInt(100)

// WeightPrice computes the price of a weighed portion.
// Based on the formula: price = round(grams × pricePer100g / 100), half away from zero.
func WeightPrice(grams int, pricePer100g int64) int64 {
	return decimal.NewFromInt(int64(grams)).
		Mul(decimal.NewFromInt(pricePer100g)).
		Div(hundred).
		Round(0).
		IntPart()
}

// LineTotal is the value of one bill line: the whole-portion price for weight
// lines, price × quantity for piece lines.
func LineTotal(item models.BillItem) int64 {
	if item.Unit == models.UnitWeight {
		return item.Price
	}
	return item.Price * int64(item.Quantity)
}

// ItemsTotal sums LineTotal over items.
func ItemsTotal(items []models.BillItem) int64 {
	var total int64
	for _, item := range items {
		total += LineTotal(item)
	}
	return total
}

// AccountTotal is the sum of all lines over all batches of an account.
func AccountTotal(account models.Account) int64 {
	var total int64
	for _, batch := range account.Batches {
		total += ItemsTotal(batch.Items)
	}
	return total
}
