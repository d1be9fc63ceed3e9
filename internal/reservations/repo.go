package reservations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentkit/rentkit-backend/pkg/db/models"
	"github.com/rentkit/rentkit-backend/pkg/enums"
	"github.com/rentkit/rentkit-backend/pkg/pagination"
)

// repository implements Repository on a GORM DB.
type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to reservation operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// Create persists the reservation and its items.
func (r *repository) Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	if reservation == nil {
		return nil, fmt.Errorf("reservation is required")
	}
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

// FindByStoreAndID loads a reservation with its items, scoped to a tenant.
func (r *repository) FindByStoreAndID(ctx context.Context, storeID, reservationID uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ? AND store_id = ?", reservationID, storeID).
		First(&reservation).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListByStore returns a keyset page of reservations, newest first.
func (r *repository) ListByStore(ctx context.Context, storeID uuid.UUID, status *enums.ReservationStatus, params pagination.Params) ([]models.Reservation, error) {
	q := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("store_id = ?", storeID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Reservation
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the reservation row only; items are managed separately.
func (r *repository) Update(ctx context.Context, reservation *models.Reservation) error {
	if reservation == nil {
		return fmt.Errorf("reservation is required")
	}
	return r.db.WithContext(ctx).Omit("Items").Save(reservation).Error
}

// UpdateStatus transitions the reservation status.
func (r *repository) UpdateStatus(ctx context.Context, reservationID uuid.UUID, status enums.ReservationStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", reservationID).
		Updates(map[string]any{"status": status, "updated_at": gorm.Expr("now()")}).Error
}

// ReplaceItems swaps all reservation lines within the caller's transaction.
func (r *repository) ReplaceItems(ctx context.Context, reservationID uuid.UUID, items []models.ReservationItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("reservation_id = ?", reservationID).Delete(&models.ReservationItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

// FindItem loads a single line scoped to its reservation.
func (r *repository) FindItem(ctx context.Context, reservationID, itemID uuid.UUID) (*models.ReservationItem, error) {
	var item models.ReservationItem
	if err := r.db.WithContext(ctx).
		Where("id = ? AND reservation_id = ?", itemID, reservationID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem saves a single line.
func (r *repository) UpdateItem(ctx context.Context, item *models.ReservationItem) error {
	if item == nil {
		return fmt.Errorf("item is required")
	}
	return r.db.WithContext(ctx).Save(item).Error
}
