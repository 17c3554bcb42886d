package pricing

import (
	"context"
	"fmt"
	"time"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/tx"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/audit"
	"fuelbook/internal/domain/fuel"
	"fuelbook/pkg/logger"
)

// Service provides selling price operations.
type Service struct {
	repo      Repository
	auditor   audit.Recorder
	txManager tx.Manager
	clock     types.Clock
}

// NewService creates a pricing service.
func NewService(repo Repository, auditor audit.Recorder, txManager tx.Manager, clock types.Clock) *Service {
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Service{repo: repo, auditor: auditor, txManager: txManager, clock: clock}
}

// PriceInput carries a new selling price.
type PriceInput struct {
	StationID     id.ID
	FuelType      fuel.Type
	PricePerLiter types.Money
	EffectiveFrom time.Time
	SetBy         id.ID
}

// Create sets a new selling price. Any prior active price for the same
// station + fuel type is deactivated with its effective_to set to one
// second before now, so price intervals never overlap.
func (s *Service) Create(ctx context.Context, in PriceInput) (id.ID, error) {
	if id.IsNil(in.StationID) {
		return id.Nil(), apperror.NewMissingField("station_id")
	}
	if id.IsNil(in.SetBy) {
		return id.Nil(), apperror.NewMissingField("set_by")
	}
	if !in.FuelType.Valid() {
		return id.Nil(), apperror.NewEnumViolation("selling_price", "fuel_type", in.FuelType)
	}
	if !in.PricePerLiter.IsPositive() {
		return id.Nil(), apperror.NewInvalidInput("price per liter must be positive")
	}
	if in.EffectiveFrom.IsZero() {
		return id.Nil(), apperror.NewMissingField("effective_from")
	}

	now := s.clock.Now()
	price := &SellingPrice{
		ID:            id.New(),
		StationID:     in.StationID,
		FuelType:      in.FuelType,
		PricePerLiter: types.RoundMoney(in.PricePerLiter),
		EffectiveFrom: in.EffectiveFrom,
		Active:        true,
		SetBy:         in.SetBy,
		CreatedAt:     now,
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		prior, err := s.repo.GetActive(ctx, in.StationID, in.FuelType)
		if err != nil && !apperror.IsNotFound(err) {
			return fmt.Errorf("load active price: %w", err)
		}

		if prior != nil {
			cutoff := now.Add(-time.Second)
			if err := s.repo.Deactivate(ctx, prior.ID, cutoff); err != nil {
				return fmt.Errorf("deactivate prior price: %w", err)
			}
		}

		if err := s.repo.Create(ctx, price); err != nil {
			return fmt.Errorf("create price: %w", err)
		}

		// History rows still live in the legacy table, which only knows
		// the original three fuel types. Later additions have no history.
		if in.FuelType.ValidLegacy() {
			oldPrice := types.Zero()
			if prior != nil {
				oldPrice = prior.PricePerLiter
			}
			change := &PriceChange{
				ID:        id.New(),
				StationID: in.StationID,
				FuelType:  in.FuelType,
				OldPrice:  oldPrice,
				NewPrice:  price.PricePerLiter,
				ChangedBy: in.SetBy,
				ChangedAt: now,
			}
			if err := s.repo.CreateHistory(ctx, change); err != nil {
				return fmt.Errorf("create price history: %w", err)
			}
		}

		return s.auditor.Record(ctx, audit.Entry{
			Table:    "selling_prices",
			RecordID: price.ID,
			Action:   audit.ActionCreate,
			NewValues: map[string]any{
				"station_id":      price.StationID,
				"fuel_type":       price.FuelType,
				"price_per_liter": price.PricePerLiter,
				"effective_from":  price.EffectiveFrom,
			},
			ActorID: in.SetBy,
		})
	})
	if err != nil {
		return id.Nil(), err
	}

	logger.Info(ctx, "selling price created",
		"station_id", in.StationID,
		"fuel_type", in.FuelType,
		"price", price.PricePerLiter,
	)
	return price.ID, nil
}

// Current returns the active selling price for a station + fuel type, or
// nil when none is set.
func (s *Service) Current(ctx context.Context, stationID id.ID, fuelType fuel.Type) (*SellingPrice, error) {
	if !fuelType.Valid() {
		return nil, apperror.NewEnumViolation("selling_price", "fuel_type", fuelType)
	}
	price, err := s.repo.GetActive(ctx, stationID, fuelType)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return price, nil
}
