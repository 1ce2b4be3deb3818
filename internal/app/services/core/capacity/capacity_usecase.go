package capacity

import (
	"context"

	"citamed-service/internal/app/contracts"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/exceptions"
	"citamed-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type CapacityLimiterUsecase struct {
	procedures contracts.ProcedureRepository
	bookings   contracts.BookingStore
	logger     *zap.Logger
}

func NewCapacityLimiterUsecase(
	procedures contracts.ProcedureRepository,
	bookings contracts.BookingStore,
	logger *zap.Logger,
) contracts.CapacityLimiter {
	return &CapacityLimiterUsecase{
		procedures: procedures,
		bookings:   bookings,
		logger:     logger,
	}
}

// IsAtLimit reports whether adding additionalQuantity units of procedureCode
// in targetDate's month would push the owning group past its ceiling. The
// consumed total is recomputed from the store on every call rather than kept
// as a counter, so cancelled bookings free their quota immediately. Codes
// outside every group are unlimited.
func (u *CapacityLimiterUsecase) IsAtLimit(ctx context.Context, procedureCode, targetDate string, additionalQuantity int) (bool, error) {
	group, err := u.procedures.FindGroupContainingCode(ctx, procedureCode)
	if err != nil {
		return false, err
	}
	if group == nil {
		return false, nil
	}

	date, err := utils.ParseDate(targetDate)
	if err != nil {
		return false, exceptions.ErrCannotParseTime(err)
	}
	monthStart, monthEnd := utils.MonthWindow(date)

	consumed, err := u.bookings.SumGroupConsumptionForMonth(
		ctx,
		group,
		monthStart.Format(constvars.DateLayout),
		monthEnd.Format(constvars.DateLayout),
	)
	if err != nil {
		return false, err
	}

	atLimit := consumed+additionalQuantity > group.Max
	if atLimit {
		u.logger.Warn("cups group monthly quota reached",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingTenantKey, utils.GetTenant(ctx)),
			zap.String(constvars.LoggingCupsGroupKey, group.Name),
			zap.Int("consumed", consumed),
			zap.Int("requested", additionalQuantity),
			zap.Int("max", group.Max),
		)
	}
	return atLimit, nil
}
