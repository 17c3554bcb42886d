package ledger

import (
	"context"
	"fmt"
	"time"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/fuel"
	"fuelbook/pkg/logger"
)

// Service posts reconciliation results to the ledger.
type Service struct {
	repo  Repository
	clock types.Clock
}

// NewService creates a ledger poster.
func NewService(repo Repository, clock types.Clock) *Service {
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// PostInput carries the figures to post for one reconciliation.
type PostInput struct {
	StationID        id.ID
	FuelType         fuel.Type
	Date             time.Time
	ReconciliationID id.ID
	TotalSales       types.Money
	TotalCOGS        types.Money
}

// Post writes exactly two rows for the reconciliation: a revenue entry
// (credit = sales) and a COGS entry (debit = COGS). Both are written
// together or not at all; single-sided postings cannot happen.
func (s *Service) Post(ctx context.Context, in PostInput) error {
	if id.IsNil(in.ReconciliationID) {
		return apperror.NewMissingField("reconciliation_id")
	}
	if id.IsNil(in.StationID) {
		return apperror.NewMissingField("station_id")
	}

	now := s.clock.Now()
	entries := []*Entry{
		{
			ID:               id.New(),
			StationID:        in.StationID,
			EntryDate:        in.Date,
			AccountType:      AccountRevenue,
			FuelType:         in.FuelType,
			DebitAmount:      types.Zero(),
			CreditAmount:     types.RoundMoney(in.TotalSales),
			ReconciliationID: in.ReconciliationID,
			CreatedAt:        now,
		},
		{
			ID:               id.New(),
			StationID:        in.StationID,
			EntryDate:        in.Date,
			AccountType:      AccountCOGS,
			FuelType:         in.FuelType,
			DebitAmount:      types.RoundMoney(in.TotalCOGS),
			CreditAmount:     types.Zero(),
			ReconciliationID: in.ReconciliationID,
			CreatedAt:        now,
		},
	}

	if err := s.repo.CreateBatch(ctx, entries); err != nil {
		return fmt.Errorf("post ledger entries: %w", err)
	}

	logger.Info(ctx, "ledger entries posted",
		"reconciliation_id", in.ReconciliationID,
		"sales", entries[0].CreditAmount,
		"cogs", entries[1].DebitAmount,
	)
	return nil
}
