// Package models defines the core domain models for the grill stand ledger.
//
// # Models
//
//   - MenuItem: a sellable item from the flat menu catalog
//   - BillItem: one ordered line on a customer's bill
//   - DispatchBatch: a group of lines sharing one kitchen lifecycle
//   - Account: one customer's open running bill at a table
//   - PaidAccount: an immutable snapshot of a settled (or partially settled) account
//   - RunningTotals: revenue collected today, split by payment method
//   - Payment: a validated payment breakdown
//   - OutboxEvent: a business event waiting for delivery to the remote backend
//   - Snapshot: the whole persisted ledger document
//
// # Design Principles
//
//  1. **Whole currency units**: all money is int64 Kč, prices never carry cents
//  2. **Explicit stock fields**: every BillItem stores its MenuItemID and
//     WeightGrams; the display name is only a label
//  3. **IDs instead of pointers**: relationships reference string IDs
//  4. **JSON compatible**: field names follow the document layout the stand
//     has always persisted, so older snapshots still load
package models
