package main

import (
	"log"
	"net/http"

	"github.com/arslanhfz7-dot/taxi-reserve/src/db"
	"github.com/arslanhfz7-dot/taxi-reserve/src/middlewares"
	"github.com/arslanhfz7-dot/taxi-reserve/src/models"
	"github.com/arslanhfz7-dot/taxi-reserve/src/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func adminHandlers(g *gin.Engine) {
	admin := g.Group("/admin")
	admin.
		GET("/users", middlewares.RequireCapability(types.CAP_USERS_READ), func(ctx *gin.Context) {
			db := db.GetDb()
			var users []models.User
			if err := db.
				Model(&models.User{}).
				Order("created_at desc").
				Find(&users).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			out := make([]types.APIResponseUser, 0, len(users))
			for _, u := range users {
				out = append(out, types.APIResponseUser{
					ID:        u.ID,
					Email:     u.Email,
					Name:      u.Name,
					CreatedAt: u.CreatedAt,
				})
			}
			ctx.JSON(http.StatusOK, gin.H{"count": len(out), "users": out})
		}).
		DELETE("/users/:id", middlewares.RequireCapability(types.CAP_USERS_DELETE), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing user id"})
				return
			}
			userId, _ := uuid.Parse(params.ID)
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Where("user_id = ?", userId).Delete(&models.Reminder{}).Error; err != nil {
					return err
				}
				if err := tx.Where("user_id = ?", userId).Delete(&models.Reservation{}).Error; err != nil {
					return err
				}
				return tx.Delete(&models.User{}, "id = ?", userId).Error
			})
			if err != nil {
				log.Printf("Could not delete user [%s]: %s\n", userId, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true})
		})
}
