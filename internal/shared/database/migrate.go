package database

import (
	"skybook/internal/bookings"
	"skybook/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&bookings.Booking{},
		&bookings.Passenger{},
	)
}
