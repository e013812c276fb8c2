package types

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type ReservationStatus string

const (
	RESERVATION_PENDING    ReservationStatus = "PENDING"
	RESERVATION_ASSIGNED   ReservationStatus = "ASSIGNED"
	RESERVATION_COMPLETED  ReservationStatus = "COMPLETED"
	RESERVATION_R_RECEIVED ReservationStatus = "R_RECEIVED"
)

// Capability is a granted permission resolved from a presented credential.
// Shared secrets map to capability sets instead of being compared inline
// at every call site.
type Capability string

const (
	CAP_USERS_READ   Capability = "users:read"
	CAP_USERS_DELETE Capability = "users:delete"
	CAP_CRON_RUN     Capability = "cron:run"
)

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type RegisterUserRequestBody struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequestBody struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// StartAt/EndAt carry wall-clock strings from the picker; the handler funnels
// them through the local-time normalizer before anything touches the database.
type CreateReservationRequestBody struct {
	StartAt     string   `json:"startAt" binding:"required,localdatetime"`
	EndAt       *string  `json:"endAt,omitempty" binding:"omitempty,localdatetime"`
	PickupText  *string  `json:"pickupText,omitempty" binding:"omitempty,max=500"`
	DropoffText *string  `json:"dropoffText,omitempty" binding:"omitempty,max=500"`
	Pax         int      `json:"pax" binding:"required,min=1,max=99"`
	PriceEuro   *float64 `json:"priceEuro,omitempty"`
	Phone       *string  `json:"phone,omitempty" binding:"omitempty,max=100"`
	Flight      *string  `json:"flight,omitempty" binding:"omitempty,max=50"`
	Notes       *string  `json:"notes,omitempty"`
	Status      *string  `json:"status,omitempty" binding:"omitempty,oneof=PENDING ASSIGNED COMPLETED R_RECEIVED"`
}

// Patch body: absent fields stay untouched, present fields are coerced and
// clamped rather than rejected (edit policy differs from create on purpose).
type PatchReservationRequestBody struct {
	StartAt     *string  `json:"startAt,omitempty" binding:"omitempty,localdatetime"`
	EndAt       *string  `json:"endAt,omitempty"`
	PickupText  *string  `json:"pickupText,omitempty"`
	DropoffText *string  `json:"dropoffText,omitempty"`
	Pax         *int     `json:"pax,omitempty"`
	PriceEuro   *float64 `json:"priceEuro,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Flight      *string  `json:"flight,omitempty"`
	Driver      *string  `json:"driver,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	Status      *string  `json:"status,omitempty" binding:"omitempty,oneof=PENDING ASSIGNED COMPLETED R_RECEIVED"`
}

type CreateReminderRequestBody struct {
	Title         string  `json:"title" binding:"required,max=120"`
	Note          *string `json:"note,omitempty" binding:"omitempty,max=2000"`
	DueAt         string  `json:"dueAt" binding:"required,localdatetime"`
	ReservationID *string `json:"reservationId,omitempty" binding:"omitempty,uuid"`
	IsDone        bool    `json:"isDone,omitempty"`
}

type PatchReminderRequestBody struct {
	Title  *string `json:"title,omitempty"`
	Note   *string `json:"note,omitempty"`
	DueAt  *string `json:"dueAt,omitempty" binding:"omitempty,localdatetime"`
	IsDone *bool   `json:"isDone,omitempty"`
}

type BulkDeleteRequestBody struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type ReservationQueryFilters struct {
	From   string `form:"from,omitempty"`
	To     string `form:"to,omitempty"`
	Status string `form:"status,omitempty"`
	Sort   string `form:"sort,omitempty"`
}

type SimpleRequestParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// DispatchSummary is returned by every dispatcher invocation.
type DispatchSummary struct {
	RunID   uuid.UUID         `json:"run_id"`
	Found   int               `json:"found"`
	Sent    int               `json:"sent"`
	Skipped int               `json:"skipped"`
	Failed  int               `json:"failed"`
	DryRun  bool              `json:"dry_run,omitempty"`
	Items   []DispatchPreview `json:"items,omitempty"`
}

// DispatchPreview is what a dry run yields per candidate instead of a send.
type DispatchPreview struct {
	ReminderID uuid.UUID `json:"reminder_id"`
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
}

type APIResponseUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
