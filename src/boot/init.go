package boot

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/arslanhfz7-dot/taxi-reserve/src/db"
	"github.com/arslanhfz7-dot/taxi-reserve/src/lib"
	"github.com/arslanhfz7-dot/taxi-reserve/src/lib/mailer"
	"github.com/arslanhfz7-dot/taxi-reserve/src/models"
	"github.com/arslanhfz7-dot/taxi-reserve/src/utils"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Reservation{},
		&models.Reminder{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler registers the in-process dispatch loop. Deployments with an
// external trigger hitting /cron/run leave CRON_LOCAL unset and run nothing
// here; either path goes through the same dispatcher.
func InitScheduler() {
	localCron, err := strconv.ParseBool(os.Getenv("CRON_LOCAL"))
	if err != nil || !localCron {
		return
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sender := mailer.NewSMTPSender()
	id, err := lib.CreateCronJob(func() {
		summary, err := utils.DispatchDueReminders(db.GetDb(), sender, time.Now().UTC(), utils.DispatchOptions{})
		if err != nil {
			log.Printf("Error dispatching reminders: %s\n", err.Error())
			return
		}
		if summary.Found > 0 {
			log.Printf("Dispatched reminders: found=%d sent=%d skipped=%d failed=%d\n", summary.Found, summary.Sent, summary.Skipped, summary.Failed)
		}
	}, time.Minute)
	if err != nil {
		log.Printf("Error creating dispatch job: %s\n", err.Error())
		return
	}
	log.Printf("Dispatch job registered: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	lib.StopScheduler()
}
