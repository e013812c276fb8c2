package models

import (
	"github.com/arslanhfz7-dot/taxi-reserve/src/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	Name     *string   `json:"name,omitempty"`
	Email    string    `gorm:"uniqueIndex" json:"email,omitempty"`
	Password string    `json:"-"`

	Reservations []Reservation `gorm:"foreignKey:user_id" json:"reservations,omitempty"`
	Reminders    []Reminder    `gorm:"foreignKey:user_id" json:"reminders,omitempty"`

	types.Timestamps
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
