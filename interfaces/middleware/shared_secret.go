package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-scheduler/domain/dto"
)

// SharedSecret gates the dispatch trigger. The caller is a scheduler (cron,
// uptime pinger), not a user session, so it authenticates with a static
// secret instead of a JWT.
func SharedSecret(secret string) gin.HandlerFunc {
	res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

	return func(ctx *gin.Context) {
		if secret == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		provided := ctx.Request.Header.Get("X-Autopost-Secret")
		if provided == "" {
			provided = ctx.Query("secret")
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		ctx.Next()
	}
}
