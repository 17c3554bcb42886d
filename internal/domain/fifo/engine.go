package fifo

import (
	"context"
	"fmt"
	"time"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/pkg/logger"
)

// Engine maintains per-tank cost layers and prices dispensed volume.
// All mutating methods expect to run inside the caller's transaction with
// the tank row already locked; the engine itself takes no locks.
type Engine struct {
	repo  Repository
	clock types.Clock
}

// NewEngine creates a FIFO cost engine.
func NewEngine(repo Repository, clock types.Clock) *Engine {
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Engine{repo: repo, clock: clock}
}

// NewLayer creates the cost layer for a delivery. Sequence is assigned as
// max(existing)+1 per tank, 1 for the first layer.
func (e *Engine) NewLayer(ctx context.Context, tankID, deliveryID id.ID, volume types.Volume, unitCost types.Money, deliveryDate time.Time) (*Layer, error) {
	if !volume.IsPositive() {
		return nil, apperror.NewInvalidInput("layer volume must be positive")
	}
	if unitCost.IsNegative() {
		return nil, apperror.NewInvalidInput("layer unit cost must not be negative")
	}

	maxSeq, err := e.repo.MaxSequence(ctx, tankID)
	if err != nil {
		return nil, fmt.Errorf("max sequence: %w", err)
	}

	now := e.clock.Now()
	vol := types.RoundVolume(volume)
	cost := types.RoundMoney(unitCost)
	value := types.RoundMoney(vol.Mul(cost))

	layer := &Layer{
		ID:              id.New(),
		TankID:          tankID,
		DeliveryID:      deliveryID,
		Sequence:        maxSeq + 1,
		OriginalVolume:  vol,
		RemainingVolume: vol,
		CostPerLiter:    cost,
		OriginalValue:   value,
		RemainingValue:  value,
		ConsumedValue:   types.Zero(),
		Status:          StatusActive,
		DeliveryDate:    deliveryDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := e.repo.Create(ctx, layer); err != nil {
		return nil, fmt.Errorf("create layer: %w", err)
	}

	logger.Info(ctx, "fifo layer created",
		"tank_id", tankID,
		"delivery_id", deliveryID,
		"sequence", layer.Sequence,
		"volume", vol,
		"cost_per_liter", cost,
	)

	return layer, nil
}

// Consume prices a dispensed volume against the tank's layers, oldest
// sequence first. A non-positive request returns an all-zero result with
// no mutation. If the layers cannot cover the request the engine does not
// fail: it returns the COGS of what was available and flags the result as
// incomplete with the uncovered shortfall.
func (e *Engine) Consume(ctx context.Context, tankID id.ID, volumeToConsume types.Volume) (ConsumeResult, error) {
	result := ConsumeResult{
		TotalCOGS:             types.Zero(),
		OpeningInventoryValue: types.Zero(),
		ClosingInventoryValue: types.Zero(),
		Shortfall:             types.Zero(),
	}

	if !volumeToConsume.IsPositive() {
		return result, nil
	}

	layers, err := e.repo.GetActiveForUpdate(ctx, tankID)
	if err != nil {
		return result, fmt.Errorf("load active layers: %w", err)
	}

	// Opening value is computed before any mutation.
	for _, l := range layers {
		result.OpeningInventoryValue = types.RoundMoney(
			result.OpeningInventoryValue.Add(types.RoundMoney(l.RemainingVolume.Mul(l.CostPerLiter))))
	}

	remaining := types.RoundVolume(volumeToConsume)
	for _, l := range layers {
		if !remaining.IsPositive() {
			break
		}

		take := remaining
		if l.RemainingVolume.LessThan(take) {
			take = l.RemainingVolume
		}
		take = types.RoundVolume(take)

		cost := types.RoundMoney(take.Mul(l.CostPerLiter))
		result.TotalCOGS = types.RoundMoney(result.TotalCOGS.Add(cost))
		result.Trace = append(result.Trace, TraceEntry{
			LayerID:        l.ID,
			LayerSequence:  l.Sequence,
			VolumeConsumed: take,
			CostPerLiter:   l.CostPerLiter,
			Cost:           cost,
		})

		remaining = types.RoundVolume(remaining.Sub(take))

		l.RemainingVolume = types.RoundVolume(l.RemainingVolume.Sub(take))
		l.RemainingValue = types.RoundMoney(l.RemainingVolume.Mul(l.CostPerLiter))
		l.ConsumedValue = types.RoundMoney(l.OriginalValue.Sub(l.RemainingValue))
		if l.Exhausted() {
			l.Status = StatusDepleted
		}
		l.UpdatedAt = e.clock.Now()

		if err := e.repo.Update(ctx, l); err != nil {
			return result, fmt.Errorf("update layer %d: %w", l.Sequence, err)
		}
	}

	// Closing value includes untouched layers and whatever the touched
	// ones still hold after the walk.
	for _, l := range layers {
		result.ClosingInventoryValue = types.RoundMoney(
			result.ClosingInventoryValue.Add(l.RemainingValue))
	}

	if remaining.IsPositive() {
		result.Incomplete = true
		result.Shortfall = remaining
		logger.Warn(ctx, "fifo consumption exceeded available layers",
			"tank_id", tankID,
			"requested", volumeToConsume,
			"shortfall", remaining,
		)
	}

	return result, nil
}
