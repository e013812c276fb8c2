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

func reservationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/reservations", func(ctx *gin.Context) {
			userId, ok := middlewares.UserID(ctx)
			if !ok {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			var filters types.ReservationQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			data, err := utils.GetOwnReservations(db, userId, &filters)
			if err != nil {
				if errors.Is(err, types.ErrInvalidInput) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		POST("/reservations", func(ctx *gin.Context) {
			userId, ok := middlewares.UserID(ctx)
			if !ok {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			var body types.CreateReservationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			reservation, err := utils.BookReservation(db, userId, &body, utils.DefaultReminderLead)
			if err != nil {
				if errors.Is(err, types.ErrInvalidInput) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"ok": true, "reservation": reservation})
		}).
		GET("/reservations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId, _ := middlewares.UserID(ctx)
			resId, _ := uuid.Parse(params.ID)
			db := db.GetDb()
			var reservation models.Reservation
			if err := db.
				Model(&models.Reservation{}).
				Where(&models.Reservation{ID: resId, UserID: userId}).
				Preload("Reminders").
				First(&reservation).
				Error; err != nil {
				err := errors.New("reservation not found")
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservation})
		}).
		PATCH("/reservations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId, _ := middlewares.UserID(ctx)
			resId, _ := uuid.Parse(params.ID)
			var body types.PatchReservationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var reservation models.Reservation
				if err := tx.
					Model(&models.Reservation{}).
					Where(&models.Reservation{ID: resId, UserID: userId}).
					First(&reservation).
					Error; err != nil {
					return types.ErrNotFound
				}
				if err := utils.ApplyReservationPatch(&reservation, &body); err != nil {
					return err
				}
				return tx.Save(&reservation).Error
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
		DELETE("/reservations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId, _ := middlewares.UserID(ctx)
			resId, _ := uuid.Parse(params.ID)
			db := db.GetDb()
			if err := utils.DeleteOwnReservation(db, userId, resId); err != nil {
				if errors.Is(err, types.ErrNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
					return
				}
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"ok": true})
		}).
		POST("/reservations/bulk-delete", func(ctx *gin.Context) {
			userId, ok := middlewares.UserID(ctx)
			if !ok {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			var body types.BulkDeleteRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ids := make([]uuid.UUID, 0, len(body.IDs))
			for _, s := range body.IDs {
				id, err := uuid.Parse(s)
				if err != nil {
					continue
				}
				ids = append(ids, id)
			}
			if len(ids) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "No ids to delete"})
				return
			}
			var deleted int64
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var owned []uuid.UUID
				if err := tx.
					Model(&models.Reservation{}).
					Where("id IN (?)", ids).
					Where(&models.Reservation{UserID: userId}).
					Pluck("id", &owned).
					Error; err != nil {
					return err
				}
				if len(owned) == 0 {
					return nil
				}
				if err := tx.
					Where("reservation_id IN (?)", owned).
					Delete(&models.Reminder{}).
					Error; err != nil {
					return err
				}
				res := tx.Delete(&models.Reservation{}, "id IN (?)", owned)
				if res.Error != nil {
					return res.Error
				}
				deleted = res.RowsAffected
				return nil
			})
			if err != nil {
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
		})
	return g
}
