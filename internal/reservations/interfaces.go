package reservations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentkit/rentkit-backend/pkg/db/models"
	"github.com/rentkit/rentkit-backend/pkg/enums"
	"github.com/rentkit/rentkit-backend/pkg/pagination"
)

// Repository defines persistence operations for reservation tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error)
	FindByStoreAndID(ctx context.Context, storeID, reservationID uuid.UUID) (*models.Reservation, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, status *enums.ReservationStatus, params pagination.Params) ([]models.Reservation, error)
	Update(ctx context.Context, reservation *models.Reservation) error
	UpdateStatus(ctx context.Context, reservationID uuid.UUID, status enums.ReservationStatus) error
	ReplaceItems(ctx context.Context, reservationID uuid.UUID, items []models.ReservationItem) error
	FindItem(ctx context.Context, reservationID, itemID uuid.UUID) (*models.ReservationItem, error)
	UpdateItem(ctx context.Context, item *models.ReservationItem) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByStoreAndID(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error)
}
