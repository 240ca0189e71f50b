package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/infrastructure/configuration"
	"social-scheduler/infrastructure/logger"
)

// Auth validates the session token and stores the owner id on the request
// context. Every scoped handler reads "user_id" from there; there is no
// fallback identity.
func Auth() gin.HandlerFunc {
	res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

	return func(ctx *gin.Context) {
		authorization := ctx.Request.Header.Get("Authorization")
		if authorization == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		auth := strings.Split(authorization, "Bearer ")
		if len(auth) != 2 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		userClaims, token, err := getClaim(auth[1], configuration.C.App.SecretKey)
		if err != nil || !token.Valid {
			res.ResponseMessage = describe(err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		if userClaims.Issuer == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		ctx.Set("user_id", userClaims.Issuer)
		ctx.Set("user_name", userClaims.UserName)
		ctx.Next()
	}
}

func describe(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		}
		if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			return "Timing is everything"
		}
		return fmt.Sprintf("Couldn't handle this token:%v", err)
	}
	return "Unauthorized"
}

func getClaim(tokenString, secretKey string) (model.UserClaims, *jwt.Token, error) {
	var userClaims model.UserClaims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&userClaims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secretKey), nil
		},
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Debug("parsing session token")
	}
	return userClaims, token, err
}

// OwnerID reads the authenticated owner id set by Auth.
func OwnerID(ctx *gin.Context) string {
	return ctx.GetString("user_id")
}
