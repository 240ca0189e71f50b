package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpHandler "social-scheduler/interfaces/http"
	"social-scheduler/interfaces/middleware"
)

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	scheduleHandler httpHandler.IScheduleHandler,
	accountHandler httpHandler.IAccountHandler,
	connectHandler httpHandler.IConnectHandler,
	autopostHandler httpHandler.IAutopostHandler,
	autopostSecret string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "http://localhost:4201", "https://localhost:4200", "https://localhost:4201"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Platform redirects land here without a session; the owner identity
	// travels in the signed state parameter.
	router.GET("/oauth/:platform/callback", connectHandler.Callback)

	// The dispatch trigger authenticates with the shared autopost secret,
	// not a user session.
	router.POST("/autopost", middleware.SharedSecret(autopostSecret), autopostHandler.Trigger)

	api := router.Group("api")
	api.Use(middleware.Auth())

	api.GET("/connect/:platform", connectHandler.Begin)

	api.GET("/accounts", accountHandler.List)
	api.DELETE("/accounts/:id", accountHandler.Disconnect)

	schedule := api.Group("/schedule")
	{
		schedule.POST("", scheduleHandler.Create)
		schedule.GET("", scheduleHandler.List)
		schedule.GET("/:id", scheduleHandler.Get)
		schedule.PATCH("/:id", scheduleHandler.Reschedule)
		schedule.DELETE("/:id", scheduleHandler.Delete)
	}

	return router
}
