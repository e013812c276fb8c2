package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/arslanhfz7-dot/taxi-reserve/src/db"
	"github.com/arslanhfz7-dot/taxi-reserve/src/middlewares"
	"github.com/arslanhfz7-dot/taxi-reserve/src/models"
	"github.com/arslanhfz7-dot/taxi-reserve/src/types"
	"github.com/arslanhfz7-dot/taxi-reserve/src/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func reminderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/reminders", func(ctx *gin.Context) {
			userId, ok := middlewares.UserID(ctx)
			if !ok {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			db := db.GetDb()
			var reminders []models.Reminder
			if err := db.
				Model(&models.Reminder{}).
				Where(&models.Reminder{UserID: userId}).
				Order("due_at asc").
				Find(&reminders).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reminders, "count": len(reminders)})
		}).
		POST("/reminders", func(ctx *gin.Context) {
			userId, ok := middlewares.UserID(ctx)
			if !ok {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			var body types.CreateReminderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			dueAt, err := utils.ParseLocalDateTime(body.DueAt)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			reminder := models.Reminder{
				UserID: userId,
				Title:  body.Title,
				Note:   body.Note,
				DueAt:  dueAt,
				IsDone: body.IsDone,
			}
			db := db.GetDb()
			if body.ReservationID != nil {
				resId, err := uuid.Parse(*body.ReservationID)
				if err == nil {
					// Only link reservations the caller owns; a foreign id
					// would leak its details through the reminder email.
					var owned int64
					db.
						Model(&models.Reservation{}).
						Where(&models.Reservation{ID: resId, UserID: userId}).
						Count(&owned)
					if owned > 0 {
						reminder.ReservationID = &resId
					}
				}
			}
			if err := db.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&reminder).Error
			}); err != nil {
				log.Printf("Could not create reminder: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": reminder})
		}).
		PATCH("/reminders/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId, _ := middlewares.UserID(ctx)
			remId, _ := uuid.Parse(params.ID)
			var body types.PatchReminderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var reminder models.Reminder
				if err := tx.
					Model(&models.Reminder{}).
					Where(&models.Reminder{ID: remId, UserID: userId}).
					First(&reminder).
					Error; err != nil {
					return types.ErrNotFound
				}
				if body.Title != nil {
					title := *body.Title
					if len(title) > 120 {
						title = title[:120]
					}
					reminder.Title = title
				}
				if body.Note != nil {
					note := *body.Note
					if len(note) > 2000 {
						note = note[:2000]
					}
					if note == "" {
						reminder.Note = nil
					} else {
						reminder.Note = &note
					}
				}
				if body.DueAt != nil {
					dueAt, err := utils.ParseLocalDateTime(*body.DueAt)
					if err != nil {
						return err
					}
					reminder.DueAt = dueAt
				}
				if body.IsDone != nil {
					reminder.IsDone = *body.IsDone
				}
				return tx.Save(&reminder).Error
			})
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
					return
				}
				if errors.Is(err, types.ErrInvalidInput) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"ok": true})
		}).
		DELETE("/reminders/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId, _ := middlewares.UserID(ctx)
			remId, _ := uuid.Parse(params.ID)
			db := db.GetDb()
			res := db.
				Where(&models.Reminder{ID: remId, UserID: userId}).
				Delete(&models.Reminder{})
			if res.Error != nil {
				log.Printf("Could not complete request: %s\n", res.Error.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"ok": true})
		})
	return g
}
