package models

import (
	"time"

	"github.com/arslanhfz7-dot/taxi-reserve/src/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reservation times are absolute UTC instants. Wall-clock input is resolved
// before a row is created; nothing here stores ambiguous local text.
type Reservation struct {
	ID     uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`

	StartAt time.Time  `json:"start_at"`
	EndAt   *time.Time `json:"end_at,omitempty"`

	PickupText  *string                 `json:"pickup_text,omitempty"`
	DropoffText *string                 `json:"dropoff_text,omitempty"`
	Pax         int                     `gorm:"default:1" json:"pax,omitempty"`
	PriceEuro   *float64                `json:"price_euro,omitempty"`
	Phone       *string                 `json:"phone,omitempty"`
	Flight      *string                 `json:"flight,omitempty"`
	Driver      *string                 `json:"driver,omitempty"`
	Notes       *string                 `json:"notes,omitempty"`
	Status      types.ReservationStatus `gorm:"default:'PENDING'" json:"status,omitempty"`

	// Derived marker for the start-window dispatch variant. Set to
	// StartAt minus the lead time at booking, cleared once notified.
	ReminderAt *time.Time `json:"reminder_at,omitempty"`

	User      *User      `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Reminders []Reminder `gorm:"foreignKey:reservation_id" json:"reminders,omitempty"`

	types.Timestamps
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
