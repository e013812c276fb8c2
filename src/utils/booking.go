package utils

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/arslanhfz7-dot/taxi-reserve/src/models"
	"github.com/arslanhfz7-dot/taxi-reserve/src/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultReminderLead is subtracted from a reservation's start to compute
// when the reminder email fires. The calendar alarm uses a longer lead so the
// phone buzzes before the email lands.
const (
	DefaultReminderLead = 30 * time.Minute
	CalendarAlarmLead   = 45 * time.Minute
)

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func capped(v *string, max int) *string {
	if v == nil {
		return nil
	}
	s := truncate(strings.TrimSpace(*v), max)
	if s == "" {
		return nil
	}
	return &s
}

// BookReservation validates the request, resolves wall-clock input to UTC and
// creates the reservation together with its reminder in one transaction.
// If either row fails to persist, neither does.
func BookReservation(db *gorm.DB, userID uuid.UUID, params *types.CreateReservationRequestBody, lead time.Duration) (*models.Reservation, error) {
	startAt, err := ParseLocalDateTime(params.StartAt)
	if err != nil {
		return nil, err
	}
	var endAt *time.Time
	if params.EndAt != nil && *params.EndAt != "" {
		e, err := ParseLocalDateTime(*params.EndAt)
		if err != nil {
			return nil, err
		}
		if e.Before(startAt) {
			return nil, fmt.Errorf("%w: endAt before startAt", types.ErrInvalidInput)
		}
		endAt = &e
	}
	if params.Pax < 1 || params.Pax > 99 {
		return nil, fmt.Errorf("%w: pax out of range", types.ErrInvalidInput)
	}
	if params.PriceEuro != nil && (math.IsNaN(*params.PriceEuro) || math.IsInf(*params.PriceEuro, 0)) {
		return nil, fmt.Errorf("%w: priceEuro is not a number", types.ErrInvalidInput)
	}

	status := types.RESERVATION_PENDING
	if params.Status != nil {
		status = types.ReservationStatus(*params.Status)
	}
	reminderAt := startAt.Add(-lead)
	reservation := models.Reservation{
		UserID:      userID,
		StartAt:     startAt,
		EndAt:       endAt,
		PickupText:  capped(params.PickupText, 500),
		DropoffText: capped(params.DropoffText, 500),
		Pax:         params.Pax,
		PriceEuro:   params.PriceEuro,
		Phone:       capped(params.Phone, 100),
		Flight:      capped(params.Flight, 50),
		Notes:       capped(params.Notes, 2000),
		Status:      status,
		ReminderAt:  &reminderAt,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}
		reminder := models.Reminder{
			UserID:        userID,
			ReservationID: &reservation.ID,
			Title:         reminderTitle(&reservation),
			DueAt:         reminderAt,
			IsDone:        false,
		}
		if err := tx.Create(&reminder).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Could not book reservation for user [%s]: %s\n", userID, err.Error())
		return nil, fmt.Errorf("%w: %s", types.ErrDependencyFailure, err.Error())
	}
	return &reservation, nil
}

func reminderTitle(r *models.Reservation) string {
	pickup := "-"
	if r.PickupText != nil {
		pickup = *r.PickupText
	}
	dropoff := "-"
	if r.DropoffText != nil {
		dropoff = *r.DropoffText
	}
	return truncate(fmt.Sprintf("Pickup %s → %s", pickup, dropoff), 120)
}

// ApplyReservationPatch coerces a patch body onto a reservation. Edit policy:
// clamp and cap instead of reject, matching what the edit form tolerates.
func ApplyReservationPatch(r *models.Reservation, patch *types.PatchReservationRequestBody) error {
	if patch.StartAt != nil {
		startAt, err := ParseLocalDateTime(*patch.StartAt)
		if err != nil {
			return err
		}
		r.StartAt = startAt
	}
	if patch.EndAt != nil {
		if *patch.EndAt == "" {
			r.EndAt = nil
		} else {
			endAt, err := ParseLocalDateTime(*patch.EndAt)
			if err != nil {
				return err
			}
			if endAt.Before(r.StartAt) {
				return fmt.Errorf("%w: endAt before startAt", types.ErrInvalidInput)
			}
			r.EndAt = &endAt
		}
	}
	if patch.Pax != nil {
		n := *patch.Pax
		if n < 1 {
			n = 1
		}
		if n > 99 {
			n = 99
		}
		r.Pax = n
	}
	if patch.PriceEuro != nil {
		if math.IsNaN(*patch.PriceEuro) || math.IsInf(*patch.PriceEuro, 0) {
			r.PriceEuro = nil
		} else {
			r.PriceEuro = patch.PriceEuro
		}
	}
	if patch.PickupText != nil {
		r.PickupText = capped(patch.PickupText, 500)
	}
	if patch.DropoffText != nil {
		r.DropoffText = capped(patch.DropoffText, 500)
	}
	if patch.Phone != nil {
		r.Phone = capped(patch.Phone, 100)
	}
	if patch.Flight != nil {
		r.Flight = capped(patch.Flight, 50)
	}
	if patch.Driver != nil {
		r.Driver = capped(patch.Driver, 100)
	}
	if patch.Notes != nil {
		r.Notes = capped(patch.Notes, 2000)
	}
	if patch.Status != nil {
		r.Status = types.ReservationStatus(*patch.Status)
	}
	return nil
}

// GetOwnReservations lists the caller's reservations with the filter set the
// list page exposes: civil date range on start_at, status (ALL = none) and
// sort direction. Capped at 500 rows.
func GetOwnReservations(db *gorm.DB, userID uuid.UUID, filters *types.ReservationQueryFilters) ([]models.Reservation, error) {
	q := db.
		Model(&models.Reservation{}).
		Where(&models.Reservation{UserID: userID})
	if filters.From != "" {
		from, err := ParseLocalDateTime(filters.From + "T00:00")
		if err != nil {
			return nil, err
		}
		q = q.Where("start_at >= ?", from)
	}
	if filters.To != "" {
		to, err := ParseLocalDateTime(filters.To + "T23:59")
		if err != nil {
			return nil, err
		}
		q = q.Where("start_at <= ?", to)
	}
	if filters.Status != "" && filters.Status != "ALL" {
		q = q.Where("status = ?", filters.Status)
	}
	sortDir := "desc"
	if filters.Sort == "asc" {
		sortDir = "asc"
	}
	var reservations []models.Reservation
	if err := q.
		Order("start_at " + sortDir).
		Limit(500).
		Find(&reservations).
		Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// DeleteOwnReservation removes a reservation and its reminders in one
// transaction. The ownership predicate doubles as the existence check so a
// caller cannot probe other users' rows.
func DeleteOwnReservation(db *gorm.DB, userID, resID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{ID: resID, UserID: userID}).
			Select("id").
			First(&reservation).
			Error; err != nil {
			return types.ErrNotFound
		}
		if err := tx.
			Where("reservation_id = ?", resID).
			Delete(&models.Reminder{}).
			Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Reservation{}, "id = ?", resID).Error; err != nil {
			return err
		}
		return nil
	})
}
