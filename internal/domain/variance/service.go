package variance

import (
	"context"
	"fmt"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/tank"
	"fuelbook/pkg/logger"
)

// Severity bands on absolute variance percentage.
var (
	bandCritical = types.MustMoney("10")
	bandHigh     = types.MustMoney("5")
	bandMedium   = types.MustMoney("2")

	hundred = types.MustMoney("100")
)

// Default threshold settings applied on lazy creation.
var (
	DefaultLowPct      = types.MustMoney("20")
	DefaultCriticalPct = types.MustMoney("10")
	// DefaultReorderFraction of tank capacity.
	DefaultReorderFraction = types.MustMoney("0.15")
)

// Fallback fill percentages used when a tank has no threshold row yet.
var (
	fallbackLowPct      = types.MustMoney("15")
	fallbackCriticalPct = types.MustMoney("10")
)

// Service is the variance alert engine.
type Service struct {
	notifications NotificationRepository
	thresholds    ThresholdRepository
	tanks         tank.Repository
	rules         *RuleSet
	clock         types.Clock
}

// NewService creates the variance alert engine. rules may be nil.
func NewService(
	notifications NotificationRepository,
	thresholds ThresholdRepository,
	tanks tank.Repository,
	rules *RuleSet,
	clock types.Clock,
) *Service {
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Service{
		notifications: notifications,
		thresholds:    thresholds,
		tanks:         tanks,
		rules:         rules,
		clock:         clock,
	}
}

// VarianceInput carries the reconciliation figures the check re-derives from.
type VarianceInput struct {
	Opening       types.Volume
	Delivered     types.Volume
	Dispensed     types.Volume
	ActualClosing types.Volume
}

// CheckVariance compares actual against theoretical closing stock and
// emits a graded notification when the discrepancy is at least 2%.
// Below that, variance is treated as measurement noise.
//
// The theoretical figure is re-derived here rather than read back from the
// persisted record, so the check cannot drift from its inputs. Best-effort:
// any internal failure is logged and swallowed.
func (s *Service) CheckVariance(ctx context.Context, tankID, reconciliationID id.ID, in VarianceInput) {
	if err := s.checkVariance(ctx, tankID, reconciliationID, in); err != nil {
		logger.Error(ctx, "variance check failed",
			"tank_id", tankID,
			"reconciliation_id", reconciliationID,
			"error", err,
		)
	}
}

func (s *Service) checkVariance(ctx context.Context, tankID, reconciliationID id.ID, in VarianceInput) error {
	theoretical := types.RoundVolume(in.Opening.Add(in.Delivered).Sub(in.Dispensed))
	variance := types.RoundVolume(in.ActualClosing.Sub(theoretical))

	pct := types.Zero()
	if !theoretical.IsZero() {
		pct = types.RoundMoney(variance.Div(theoretical).Mul(hundred))
	}

	absPct := pct.Abs()
	if absPct.LessThan(bandMedium) {
		return nil
	}

	severity := SeverityMedium
	switch {
	case absPct.GreaterThanOrEqual(bandCritical):
		severity = SeverityCritical
	case absPct.GreaterThanOrEqual(bandHigh):
		severity = SeverityHigh
	}

	t, err := s.tanks.GetByID(ctx, tankID)
	if err != nil {
		return fmt.Errorf("load tank: %w", err)
	}

	magnitude := types.RoundVolume(variance.Abs())

	keep, severity := s.rules.apply(ctx, ruleInput{
		NotificationType: TypeVolumeVariance,
		Severity:         severity,
		FuelType:         t.FuelType.String(),
		VariancePct:      absPct.InexactFloat64(),
		Magnitude:        magnitude.InexactFloat64(),
		FillPct:          t.FillPercentage().InexactFloat64(),
	})
	if !keep {
		return nil
	}

	now := s.clock.Now()
	n := &Notification{
		ID:                 id.New(),
		StationID:          t.StationID,
		TankID:             tankID,
		Type:               TypeVolumeVariance,
		Severity:           severity,
		Magnitude:          magnitude,
		VariancePercentage: absPct,
		Status:             StatusOpen,
		Message: fmt.Sprintf("stock variance of %s L (%s%%) on tank %s",
			variance.StringFixed(3), pct.StringFixed(4), tankID),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	logger.Info(ctx, "variance notification created",
		"tank_id", tankID,
		"reconciliation_id", reconciliationID,
		"severity", severity,
		"variance_pct", absPct,
	)
	return nil
}

// CheckLowStock compares the tank fill level against its alert threshold
// and emits a notification when stock is low or critical. Best-effort.
func (s *Service) CheckLowStock(ctx context.Context, tankID id.ID, currentVolume types.Volume) {
	if err := s.checkLowStock(ctx, tankID, currentVolume); err != nil {
		logger.Error(ctx, "low stock check failed",
			"tank_id", tankID,
			"error", err,
		)
	}
}

func (s *Service) checkLowStock(ctx context.Context, tankID id.ID, currentVolume types.Volume) error {
	t, err := s.tanks.GetByID(ctx, tankID)
	if err != nil {
		return fmt.Errorf("load tank: %w", err)
	}
	if t.Capacity.IsZero() {
		return nil
	}

	lowPct, criticalPct := fallbackLowPct, fallbackCriticalPct
	threshold, err := s.thresholds.GetActiveByTank(ctx, tankID)
	if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("load threshold: %w", err)
	}
	if threshold != nil {
		lowPct = threshold.LowPct
		criticalPct = threshold.CriticalPct
	}

	fillPct := types.RoundMoney(currentVolume.Div(t.Capacity).Mul(hundred))

	var severity Severity
	switch {
	case fillPct.LessThanOrEqual(criticalPct):
		severity = SeverityCritical
	case fillPct.LessThanOrEqual(lowPct):
		severity = SeverityHigh
	default:
		return nil
	}

	keep, severity := s.rules.apply(ctx, ruleInput{
		NotificationType: TypeLowStock,
		Severity:         severity,
		FuelType:         t.FuelType.String(),
		FillPct:          fillPct.InexactFloat64(),
	})
	if !keep {
		return nil
	}

	now := s.clock.Now()
	n := &Notification{
		ID:        id.New(),
		StationID: t.StationID,
		TankID:    tankID,
		Type:      TypeLowStock,
		Severity:  severity,
		Magnitude: types.RoundVolume(currentVolume),
		Status:    StatusOpen,
		Message: fmt.Sprintf("tank %s at %s%% fill (%s L remaining)",
			tankID, fillPct.StringFixed(2), currentVolume.StringFixed(3)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	logger.Info(ctx, "low stock notification created",
		"tank_id", tankID,
		"severity", severity,
		"fill_pct", fillPct,
	)
	return nil
}

// ThresholdInput configures stock alert thresholds for a tank.
// Zero-valued fields take the defaults.
type ThresholdInput struct {
	TankID       id.ID
	LowPct       types.Money
	CriticalPct  types.Money
	ReorderPoint types.Volume
}

// CreateThresholds creates an alert threshold row for a tank, applying
// defaults for unset fields (low 20%, critical 10%, reorder point 15% of
// capacity).
func (s *Service) CreateThresholds(ctx context.Context, in ThresholdInput) error {
	if id.IsNil(in.TankID) {
		return apperror.NewMissingField("tank_id")
	}

	t, err := s.tanks.GetByID(ctx, in.TankID)
	if err != nil {
		return err
	}

	exists, err := s.thresholds.ExistsForTank(ctx, in.TankID)
	if err != nil {
		return fmt.Errorf("check threshold: %w", err)
	}
	if exists {
		return apperror.NewDuplicate("stock alert threshold", "tank_id", in.TankID.String())
	}

	return s.thresholds.Create(ctx, s.buildThreshold(t, in))
}

// EnsureDefaults lazily creates a default threshold row for a tank that
// lacks one. Called on first delivery.
func (s *Service) EnsureDefaults(ctx context.Context, t *tank.Tank) error {
	exists, err := s.thresholds.ExistsForTank(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("check threshold: %w", err)
	}
	if exists {
		return nil
	}
	return s.thresholds.Create(ctx, s.buildThreshold(t, ThresholdInput{TankID: t.ID}))
}

func (s *Service) buildThreshold(t *tank.Tank, in ThresholdInput) *StockAlertThreshold {
	low := in.LowPct
	if low.IsZero() {
		low = DefaultLowPct
	}
	critical := in.CriticalPct
	if critical.IsZero() {
		critical = DefaultCriticalPct
	}
	reorder := in.ReorderPoint
	if reorder.IsZero() {
		reorder = types.RoundVolume(t.Capacity.Mul(DefaultReorderFraction))
	}

	now := s.clock.Now()
	return &StockAlertThreshold{
		ID:           id.New(),
		TankID:       t.ID,
		LowPct:       low,
		CriticalPct:  critical,
		ReorderPoint: reorder,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
