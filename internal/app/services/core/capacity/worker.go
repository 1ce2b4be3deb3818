package capacity

import (
	"context"
	"time"

	"citamed-service/internal/app/config"
	"citamed-service/internal/app/contracts"
	"citamed-service/internal/pkg/constvars"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// snapshotTTL keeps snapshots around long enough to cover a skipped run.
const snapshotTTL = 48 * time.Hour

// Worker periodically materializes the consumed monthly quota of every cups
// group into redis, per tenant. The booking path never reads these snapshots;
// they exist for dashboards and capacity planning.
type Worker struct {
	log        *zap.Logger
	cfg        *config.InternalConfig
	locker     contracts.LockerService
	redisRepo  contracts.RedisRepository
	tenants    contracts.TenantRegistry
	procedures contracts.ProcedureRepository
	bookings   contracts.BookingStore
	cron       *cron.Cron
	runCtx     context.Context
	cancel     context.CancelFunc
}

func NewWorker(
	log *zap.Logger,
	cfg *config.InternalConfig,
	locker contracts.LockerService,
	redisRepo contracts.RedisRepository,
	tenants contracts.TenantRegistry,
	procedures contracts.ProcedureRepository,
	bookings contracts.BookingStore,
) *Worker {
	return &Worker{
		log:        log,
		cfg:        cfg,
		locker:     locker,
		redisRepo:  redisRepo,
		tenants:    tenants,
		procedures: procedures,
		bookings:   bookings,
	}
}

// Start schedules the snapshot sweep with the configured cron spec.
func (w *Worker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)
	c := cron.New()
	spec := w.cfg.Scheduling.SnapshotCronSpec
	_, err := c.AddFunc(spec, func() { w.runOnce(w.runCtx) })
	if err != nil {
		w.log.Warn("capacity.worker: invalid cron spec; falling back to @daily", zap.Error(err))
		c = cron.New()
		_, _ = c.AddFunc("@daily", func() { w.runOnce(w.runCtx) })
	}
	c.Start()
	w.cron = c
}

// Stop cancels in-flight sweeps and waits for the cron runner to drain.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		ctx := w.cron.Stop()
		<-ctx.Done()
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	ttl := 2 * time.Minute
	acquired, token, err := w.locker.TryLock(ctx, constvars.RedisKeyCapacityLeader, ttl)
	if err != nil {
		w.log.Warn("capacity.worker: leader lock attempt failed", zap.Error(err))
		return
	}
	if !acquired {
		w.log.Info("capacity.worker: leader lock held elsewhere; skipping run")
		return
	}
	defer w.locker.Unlock(ctx, constvars.RedisKeyCapacityLeader, token)

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()
	go func() {
		tick := time.NewTicker(ttl / 2)
		defer tick.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-tick.C:
				if err := w.locker.Refresh(ctx, constvars.RedisKeyCapacityLeader, token, ttl); err != nil {
					w.log.Warn("capacity.worker: failed to refresh leader lock TTL", zap.Error(err))
				}
			}
		}
	}()

	tenantIDs, err := w.tenants.ListTenantIDs(ctx)
	if err != nil {
		w.log.Warn("capacity.worker: tenant listing failed", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		if ctx.Err() != nil {
			return
		}
		w.snapshotTenant(context.WithValue(ctx, constvars.CONTEXT_TENANT_KEY, tenantID), tenantID)
	}
}

func (w *Worker) snapshotTenant(ctx context.Context, tenantID string) {
	groups, err := w.procedures.ListGroups(ctx)
	if err != nil {
		w.log.Warn("capacity.worker: group listing failed",
			zap.String(constvars.LoggingTenantKey, tenantID), zap.Error(err))
		return
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	monthKey := monthStart.Format("2006-01")

	for i := range groups {
		group := &groups[i]
		consumed, err := w.bookings.SumGroupConsumptionForMonth(
			ctx,
			group,
			monthStart.Format(constvars.DateLayout),
			monthEnd.Format(constvars.DateLayout),
		)
		if err != nil {
			w.log.Warn("capacity.worker: consumption aggregate failed",
				zap.String(constvars.LoggingTenantKey, tenantID),
				zap.String(constvars.LoggingCupsGroupKey, group.Name),
				zap.Error(err))
			continue
		}

		key := constvars.RedisKeyCapacitySnapshot + tenantID + ":" + group.Name + ":" + monthKey
		if err := w.redisRepo.Set(ctx, key, consumed, snapshotTTL); err != nil {
			w.log.Warn("capacity.worker: snapshot write failed",
				zap.String(constvars.LoggingRedisKey, key), zap.Error(err))
		}
	}
}
