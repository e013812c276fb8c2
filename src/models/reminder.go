package models

import (
	"time"

	"github.com/arslanhfz7-dot/taxi-reserve/src/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder rows are the dispatcher's work queue. ReservationID is a weak
// reference: a reminder can be created on its own and looked up without one.
type Reminder struct {
	ID            uuid.UUID  `gorm:"primarykey;type:uuid" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;index" json:"user_id,omitempty"`
	ReservationID *uuid.UUID `gorm:"type:uuid;index" json:"reservation_id,omitempty"`

	Title  string    `json:"title"`
	Note   *string   `json:"note,omitempty"`
	DueAt  time.Time `gorm:"index" json:"due_at"`
	IsDone bool      `gorm:"default:false" json:"is_done"`

	User        *User        `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Reservation *Reservation `gorm:"foreignKey:reservation_id" json:"reservation,omitempty"`

	types.Timestamps
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
