package domain

import "time"

type Room struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `gorm:"index;not null" json:"owner_id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	City        string    `gorm:"index" json:"city"`
	Address     string    `json:"address,omitempty"`
	Rent        int64     `json:"rent" validate:"required,gt=0"`
	Available   bool      `gorm:"default:true" json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}
