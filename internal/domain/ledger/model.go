// Package ledger writes balanced double-entry postings for reconciliations.
package ledger

import (
	"time"

	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/fuel"
)

// AccountType is the ledger account a posting hits.
type AccountType string

const (
	AccountRevenue AccountType = "revenue"
	AccountCOGS    AccountType = "cogs"
)

// Entry is one ledger posting row.
type Entry struct {
	ID               id.ID       `db:"id" json:"id"`
	StationID        id.ID       `db:"station_id" json:"stationId"`
	EntryDate        time.Time   `db:"entry_date" json:"entryDate"`
	AccountType      AccountType `db:"account_type" json:"accountType"`
	FuelType         fuel.Type   `db:"fuel_type" json:"fuelType"`
	DebitAmount      types.Money `db:"debit_amount" json:"debitAmount"`
	CreditAmount     types.Money `db:"credit_amount" json:"creditAmount"`
	ReconciliationID id.ID       `db:"reconciliation_id" json:"reconciliationId"`
	CreatedAt        time.Time   `db:"created_at" json:"createdAt"`
}
