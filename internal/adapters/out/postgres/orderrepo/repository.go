package orderrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLSTATE raised by Postgres when a bounded lock wait expires.
const sqlStateLockNotAvailable = "55P03"

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db          *gorm.DB
	tracker     aggregateTracker
	lockTimeout time.Duration
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
// lockTimeout bounds the wait in GetForUpdate; an expired wait surfaces as a
// LockTimeoutError instead of blocking the caller indefinitely.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker, lockTimeout time.Duration) *GormOrderRepository {
	return &GormOrderRepository{
		db:          db,
		tracker:     tracker,
		lockTimeout: lockTimeout,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an already-transitioned order using a conditional write on the
// pre-transition version. The condition makes the read-modify-write race-free
// against concurrent writers: whoever commits first wins, the loser's update
// matches zero rows and surfaces as a VersionConflictError.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	expectedVersion := dto.Version - 1

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND tenant_id = ? AND version = ?", dto.ID, dto.TenantID, expectedVersion).
		Updates(map[string]any{
			"status":      dto.Status,
			"version":     dto.Version,
			"total_cents": dto.TotalCents,
			"updated_at":  dto.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.conflictFor(ctx, dto, expectedVersion)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// conflictFor distinguishes a stale version from a vanished row after a
// conditional update matched nothing, and reports the actual version.
func (r *GormOrderRepository) conflictFor(ctx context.Context, dto OrderDTO, expectedVersion int) error {
	var actualVersion int
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND tenant_id = ?", dto.ID, dto.TenantID).
		Select("version").
		Take(&actualVersion).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundError("order", dto.ID.String())
	}
	if err != nil {
		return err
	}

	return errs.NewVersionConflictError(expectedVersion, actualVersion)
}

// Get retrieves an order by ID within the tenant scope. A row owned by a
// different tenant is reported as not found.
func (r *GormOrderRepository) Get(ctx context.Context, tenantID string, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		First(&dto, "id = ? AND tenant_id = ?", id.Bytes(), tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetForUpdate retrieves an order by ID within the tenant scope, holding a
// row lock until the surrounding transaction ends. The lock wait is bounded
// by the repository's lockTimeout via SET LOCAL, so it must run inside a
// transaction.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, tenantID string, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	timeoutStmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
	if err := r.db.WithContext(ctx).Exec(timeoutStmt).Error; err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&dto, "id = ? AND tenant_id = ?", id.Bytes(), tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.SQLState() == sqlStateLockNotAvailable {
			return nil, errs.NewLockTimeoutError("order", err)
		}
		return nil, err
	}

	return toDomain(dto)
}
