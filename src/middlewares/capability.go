package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/arslanhfz7-dot/taxi-reserve/src/config"
	"github.com/arslanhfz7-dot/taxi-reserve/src/types"
	"github.com/gin-gonic/gin"
)

// Shared secrets resolve to capability sets instead of being string-compared
// at each call site. The presented credential comes from the "key" query
// parameter (external schedulers) or the x-admin-secret header.
func resolveCapabilities(presented string) []types.Capability {
	if presented == "" {
		return nil
	}
	if admin := config.AdminSecret(); admin != "" &&
		subtle.ConstantTimeCompare([]byte(presented), []byte(admin)) == 1 {
		return []types.Capability{types.CAP_USERS_READ, types.CAP_USERS_DELETE, types.CAP_CRON_RUN}
	}
	if cron := config.CronSecret(); cron != "" &&
		subtle.ConstantTimeCompare([]byte(presented), []byte(cron)) == 1 {
		return []types.Capability{types.CAP_CRON_RUN}
	}
	return nil
}

func RequireCapability(want types.Capability) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		presented := ctx.Query("key")
		if presented == "" {
			presented = ctx.Query("pw")
		}
		if presented == "" {
			presented = ctx.GetHeader("x-admin-secret")
		}
		for _, granted := range resolveCapabilities(presented) {
			if granted == want {
				ctx.Next()
				return
			}
		}
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
}
