package repository

import (
	"context"

	"roomstay/internal/domain"

	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRentByID returns the monthly rent in minor units together with the
// owner, the two facts booking creation needs.
func (r *RoomRepository) GetRentByID(ctx context.Context, roomID int64) (rent int64, ownerID int64, err error) {
	var row struct {
		Rent    int64
		OwnerID int64
	}
	tx := r.db.WithContext(ctx).
		Table("rooms").
		Select("rent, owner_id").
		Where("id = ?", roomID).
		Scan(&row)
	if tx.Error != nil {
		return 0, 0, tx.Error
	}
	if tx.RowsAffected == 0 {
		return 0, 0, gorm.ErrRecordNotFound
	}
	return row.Rent, row.OwnerID, nil
}

func (r *RoomRepository) List(ctx context.Context, city string, limit, offset int) ([]domain.Room, error) {
	q := r.db.WithContext(ctx).Model(&domain.Room{}).Where("available = ?", true)
	if city != "" {
		q = q.Where("city = ?", city)
	}
	var rooms []domain.Room
	if err := q.Order("id").Limit(limit).Offset(offset).Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}
