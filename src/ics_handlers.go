package main

import (
	"fmt"
	"net/http"

	"github.com/arslanhfz7-dot/taxi-reserve/src/db"
	"github.com/arslanhfz7-dot/taxi-reserve/src/lib"
	"github.com/arslanhfz7-dot/taxi-reserve/src/middlewares"
	"github.com/arslanhfz7-dot/taxi-reserve/src/models"
	"github.com/arslanhfz7-dot/taxi-reserve/src/types"
	"github.com/arslanhfz7-dot/taxi-reserve/src/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

func icsHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.GET("/ics/:id", func(ctx *gin.Context) {
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
			First(&reservation).
			Error; err != nil {
			ctx.String(http.StatusNotFound, "Not found")
			return
		}

		location := ""
		if reservation.PickupText != nil {
			location = *reservation.PickupText
		}
		value := lib.BuildCalendarEvent(&lib.CalendarEventInput{
			ID:          reservation.ID,
			StartAt:     reservation.StartAt,
			EndAt:       reservation.EndAt,
			Location:    location,
			Title:       "Assign booking",
			Description: "You have a booking to assign in 45 minutes",
			AlarmLead:   utils.CalendarAlarmLead,
		})

		filename := fmt.Sprintf("booking-%s.ics", reservation.ID)
		if location != "" {
			filename = fmt.Sprintf("booking-%s.ics", slug.Make(location))
		}
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		ctx.Header("Cache-Control", "public, max-age=300")
		ctx.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(value))
	})
	return g
}
