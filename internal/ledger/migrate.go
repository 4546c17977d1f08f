package ledger

import (
	"time"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/calculator"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

// migrateLegacy upgrades fields written by older versions of the snapshot:
//   - MenuItemID and WeightGrams are recovered from the line label; labels
//     matching no menu item are left alone
//   - readyTimestamp (epoch ms) becomes ReadyAt
//   - lastAddedItemIdToPendingBatch becomes LastAddedItemID
//
// Returns the number of fields changed.
func migrateLegacy(s *models.Snapshot) int {
	var n int
	fix := func(account *models.Account) {
		if account.LegacyLastAddedItemID != "" {
			if account.LastAddedItemID == "" {
				account.LastAddedItemID = account.LegacyLastAddedItemID
			}
			account.LegacyLastAddedItemID = ""
			n++
		}
		for bi := range account.Batches {
			batch := &account.Batches[bi]
			if batch.LegacyReadyTimestamp != nil {
				if batch.ReadyAt == nil && *batch.LegacyReadyTimestamp > 0 {
					readyAt := time.UnixMilli(*batch.LegacyReadyTimestamp).UTC()
					batch.ReadyAt = &readyAt
				}
				batch.LegacyReadyTimestamp = nil
				n++
			}

			items := batch.Items
			for i := range items {
				if items[i].MenuItemID != "" {
					continue
				}
				parsed, ok := calculator.ParseLegacyName(s.Menu, items[i].Name)
				if !ok {
					continue
				}
				items[i].MenuItemID = parsed.MenuItemID
				if items[i].Unit == models.UnitWeight && items[i].WeightGrams == 0 {
					items[i].WeightGrams = parsed.Grams
				}
				n++
			}
		}
	}

	for _, accounts := range s.Tables {
		for i := range accounts {
			fix(&accounts[i])
		}
	}
	for i := range s.PaidAccounts {
		fix(&s.PaidAccounts[i].Account)
	}
	return n
}
