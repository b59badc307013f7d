package database

import (
	"roomstay/internal/domain"
	"roomstay/internal/modules/notification"

	"gorm.io/gorm"
)

// Migrate creates the schema plus the partial unique index that enforces at
// most one open (created/pending) payment per booking. Both Postgres and the
// sqlite dev driver support partial indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Room{},
		&domain.Booking{},
		&domain.Payment{},
		&notification.Notification{},
	); err != nil {
		return err
	}
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_open_payment
ON payments (booking_id) WHERE status IN ('created', 'pending')`).Error
}
