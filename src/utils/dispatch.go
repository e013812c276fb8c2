package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/arslanhfz7-dot/taxi-reserve/src/lib/mailer"
	"github.com/arslanhfz7-dot/taxi-reserve/src/models"
	"github.com/arslanhfz7-dot/taxi-reserve/src/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The dispatcher is a batch job poked by an external trigger. Delivery is
// at-least-once: a crash between a successful send and the mark-done update
// means the next run sends again. There is no transaction spanning SMTP and
// the database, and we accept that instead of pretending otherwise. Within a
// run each item is isolated: one bad address or SMTP hiccup never aborts the
// rest of the batch.

const DefaultBatchLimit = 25

const ReminderSubject = "Reminder: reservation in ~30 minutes"

type DispatchOptions struct {
	Limit  int
	DryRun bool
}

var reminderBodyTmpl = template.Must(template.New("reminder").Parse(`<div style="font-family:system-ui,Segoe UI,Roboto,Helvetica">
  <h2 style="margin:0 0 8px">Upcoming reservation</h2>
  <p style="margin:0 0 12px">Scheduled at <strong>{{.When}}</strong></p>
  <ul style="margin:0 0 12px; padding-left:18px">
    <li><strong>Pickup</strong>: {{.Pickup}}</li>
    <li><strong>Drop-off</strong>: {{.Dropoff}}</li>
    <li><strong>Pax</strong>: {{.Pax}}</li>
    {{if .Phone}}<li><strong>Phone</strong>: {{.Phone}}</li>{{end}}
    {{if .Flight}}<li><strong>Flight</strong>: {{.Flight}}</li>{{end}}
    {{if .Price}}<li><strong>Price</strong>: {{.Price}}&euro;</li>{{end}}
  </ul>
  {{if .Note}}<p style="margin:0 0 8px"><strong>Note:</strong> {{.Note}}</p>{{end}}
</div>`))

type reminderEmailData struct {
	When    string
	Pickup  string
	Dropoff string
	Pax     int
	Phone   string
	Flight  string
	Price   string
	Note    string
}

func renderReminderBody(resv *models.Reservation, note *string) (string, error) {
	data := reminderEmailData{
		When:    "(unknown time)",
		Pickup:  "-",
		Dropoff: "-",
		Pax:     1,
	}
	if resv != nil {
		data.When = FormatMadrid(resv.StartAt)
		data.Pax = resv.Pax
		if resv.PickupText != nil {
			data.Pickup = *resv.PickupText
		}
		if resv.DropoffText != nil {
			data.Dropoff = *resv.DropoffText
		}
		if resv.Phone != nil {
			data.Phone = *resv.Phone
		}
		if resv.Flight != nil {
			data.Flight = *resv.Flight
		}
		if resv.PriceEuro != nil {
			data.Price = fmt.Sprintf("%.2f", *resv.PriceEuro)
		}
	}
	if note != nil {
		data.Note = *note
	}
	var buf bytes.Buffer
	if err := reminderBodyTmpl.Execute(&buf, &data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// DispatchDueReminders finds due, unsent reminders (is_done = false and
// due_at <= now), earliest first, sends each owner one email and marks the
// row done. The mark is conditional on is_done still being false so two
// overlapping runs cannot both flip the same row. With DryRun set, the same
// candidate set and rendered bodies are computed with no sends and no writes.
func DispatchDueReminders(db *gorm.DB, sender mailer.Sender, now time.Time, opts DispatchOptions) (*types.DispatchSummary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	var due []models.Reminder
	if err := db.
		Model(&models.Reminder{}).
		Where("is_done = ? AND due_at <= ?", false, now).
		Order("due_at asc").
		Limit(limit).
		Preload("User").
		Preload("Reservation").
		Find(&due).
		Error; err != nil {
		log.Printf("Error querying due reminders: %s\n", err.Error())
		return nil, fmt.Errorf("%w: %s", types.ErrDependencyFailure, err.Error())
	}

	summary := types.DispatchSummary{
		RunID:  uuid.New(),
		Found:  len(due),
		DryRun: opts.DryRun,
	}
	for _, r := range due {
		if r.User == nil || r.User.Email == "" {
			log.Printf("[dispatch %s] Reminder %s has no resolvable email. Skipping\n", summary.RunID, r.ID)
			summary.Skipped++
			continue
		}
		to := r.User.Email
		body, err := renderReminderBody(r.Reservation, r.Note)
		if err != nil {
			log.Printf("[dispatch %s] Error rendering body for reminder %s: %s\n", summary.RunID, r.ID, err.Error())
			summary.Failed++
			continue
		}
		if opts.DryRun {
			summary.Items = append(summary.Items, types.DispatchPreview{
				ReminderID: r.ID,
				To:         to,
				Subject:    ReminderSubject,
				Body:       body,
			})
			continue
		}
		if err := sender.Send(to, ReminderSubject, body); err != nil {
			log.Printf("[dispatch %s] Email send failed for reminder %s: %s\n", summary.RunID, r.ID, err.Error())
			summary.Failed++
			continue
		}
		res := db.
			Model(&models.Reminder{}).
			Where("id = ? AND is_done = ?", r.ID, false).
			Update("is_done", true)
		if res.Error != nil {
			log.Printf("[dispatch %s] Error marking reminder %s done: %s\n", summary.RunID, r.ID, res.Error.Error())
			summary.Failed++
			continue
		}
		if res.RowsAffected == 0 {
			log.Printf("[dispatch %s] Reminder %s was already marked by a concurrent run\n", summary.RunID, r.ID)
		}
		summary.Sent++
	}
	return &summary, nil
}

// DispatchWindowReservations is the alternative trigger source: instead of
// reminder rows it derives dueness from Reservation.StartAt falling inside
// [now+from, now+to] (e.g. +29m to +31m) while the reminder marker is still
// set. Sending clears the marker, again conditionally.
func DispatchWindowReservations(db *gorm.DB, sender mailer.Sender, now time.Time, from, to time.Duration, opts DispatchOptions) (*types.DispatchSummary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	lo := now.Add(from)
	hi := now.Add(to)
	var due []models.Reservation
	if err := db.
		Model(&models.Reservation{}).
		Where("reminder_at IS NOT NULL AND start_at BETWEEN ? AND ?", lo, hi).
		Order("start_at asc").
		Limit(limit).
		Preload("User").
		Find(&due).
		Error; err != nil {
		log.Printf("Error querying reservation window: %s\n", err.Error())
		return nil, fmt.Errorf("%w: %s", types.ErrDependencyFailure, err.Error())
	}

	summary := types.DispatchSummary{
		RunID:  uuid.New(),
		Found:  len(due),
		DryRun: opts.DryRun,
	}
	for i := range due {
		r := &due[i]
		if r.User == nil || r.User.Email == "" {
			log.Printf("[dispatch %s] Reservation %s has no resolvable email. Skipping\n", summary.RunID, r.ID)
			summary.Skipped++
			continue
		}
		body, err := renderReminderBody(r, r.Notes)
		if err != nil {
			log.Printf("[dispatch %s] Error rendering body for reservation %s: %s\n", summary.RunID, r.ID, err.Error())
			summary.Failed++
			continue
		}
		if opts.DryRun {
			summary.Items = append(summary.Items, types.DispatchPreview{
				ReminderID: r.ID,
				To:         r.User.Email,
				Subject:    ReminderSubject,
				Body:       body,
			})
			continue
		}
		if err := sender.Send(r.User.Email, ReminderSubject, body); err != nil {
			log.Printf("[dispatch %s] Email send failed for reservation %s: %s\n", summary.RunID, r.ID, err.Error())
			summary.Failed++
			continue
		}
		res := db.
			Model(&models.Reservation{}).
			Where("id = ? AND reminder_at IS NOT NULL", r.ID).
			Update("reminder_at", nil)
		if res.Error != nil {
			log.Printf("[dispatch %s] Error clearing reminder marker on %s: %s\n", summary.RunID, r.ID, res.Error.Error())
			summary.Failed++
			continue
		}
		if res.RowsAffected == 0 {
			log.Printf("[dispatch %s] Reservation %s marker was already cleared by a concurrent run\n", summary.RunID, r.ID)
		}
		summary.Sent++
	}
	return &summary, nil
}
