package main

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/arslanhfz7-dot/taxi-reserve/src/db"
	"github.com/arslanhfz7-dot/taxi-reserve/src/lib"
	"github.com/arslanhfz7-dot/taxi-reserve/src/lib/mailer"
	"github.com/arslanhfz7-dot/taxi-reserve/src/middlewares"
	"github.com/arslanhfz7-dot/taxi-reserve/src/types"
	"github.com/arslanhfz7-dot/taxi-reserve/src/utils"
	"github.com/gin-gonic/gin"
)

// The external scheduler hits this endpoint on its own cadence; invocation is
// at-least-once and may overlap, which is why the dispatcher marks rows
// conditionally and the handler grabs a short advisory lock when redis is
// around.
func cronHandlers(g *gin.Engine, sender mailer.Sender) {
	cron := g.Group("/cron", middlewares.RequireCapability(types.CAP_CRON_RUN))
	cron.GET("/run", func(ctx *gin.Context) {
		dry, _ := strconv.ParseBool(ctx.Query("dry"))
		window, _ := strconv.ParseBool(ctx.Query("window"))
		limit, _ := strconv.Atoi(ctx.Query("limit"))
		opts := utils.DispatchOptions{Limit: limit, DryRun: dry}

		if !dry {
			ok, release := lib.AcquireDispatchLock(ctx, time.Minute)
			if !ok {
				ctx.JSON(http.StatusOK, gin.H{"ok": true, "skipped": "another dispatch is running"})
				return
			}
			defer release()
		}

		now := time.Now().UTC()
		log.Printf("CRON triggered at: %s\n", now.Format(time.RFC3339))

		var summary *types.DispatchSummary
		var err error
		if window {
			summary, err = utils.DispatchWindowReservations(db.GetDb(), sender, now, 29*time.Minute, 31*time.Minute, opts)
		} else {
			summary, err = utils.DispatchDueReminders(db.GetDb(), sender, now, opts)
		}
		if err != nil {
			log.Printf("Dispatch failed: %s\n", err.Error())
			ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Error while processing request"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"ok": true, "summary": summary})
	})
}
