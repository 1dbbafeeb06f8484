package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"gate-access-backend/controllers"
	"gate-access-backend/middleware"
	"gate-access-backend/models"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires middleware and controllers onto the gin engine.
func SetupRouter(
	db *gorm.DB,
	ac *controllers.AuthController,
	uc *controllers.UserController,
	pc *controllers.PropertyController,
	bc *controllers.BookingController,
	gc *controllers.GuardController,
	lc *controllers.LuggageController,
	blc *controllers.BillingController,
	logs *controllers.LogsController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())
	r.Static("/uploads", "./uploads")

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	listCache := gocache.New(30*time.Second, time.Minute)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", ac.Login)
		auth.GET("/me", middleware.AuthRequired(db), ac.Me)
	}

	// Daraja posts here directly; no session.
	api.POST("/billing/mpesa/callback", blc.MpesaCallback)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(db))
	{
		users := authed.Group("/users", middleware.RequireRole(models.RoleAdmin))
		{
			users.GET("", uc.List)
			users.POST("", uc.Create)
			users.PUT("/:id", uc.Update)
			users.DELETE("/:id", uc.Delete)
		}

		properties := authed.Group("/properties", middleware.RequireRole(models.RoleHost))
		{
			properties.GET("", pc.List)
			properties.POST("", pc.Create)
			properties.PUT("/:id", pc.Update)
			properties.DELETE("/:id", pc.Delete)
		}

		rooms := authed.Group("/rooms", middleware.RequireRole(models.RoleHost))
		{
			rooms.GET("", pc.ListRooms)
			rooms.POST("", pc.CreateRoom)
			rooms.PUT("/:id", pc.UpdateRoom)
			rooms.DELETE("/:id", pc.DeleteRoom)
		}

		checkpoints := authed.Group("/checkpoints")
		{
			checkpoints.GET("", middleware.CacheResponse(listCache, 30*time.Second), pc.ListCheckpoints)
			checkpoints.GET("/:id", pc.GetCheckpoint)
			checkpoints.POST("", middleware.RequireRole(models.RoleHost), pc.CreateCheckpoint)
			checkpoints.PUT("/:id", middleware.RequireRole(models.RoleHost), pc.UpdateCheckpoint)
			checkpoints.DELETE("/:id", middleware.RequireRole(models.RoleHost), pc.DeleteCheckpoint)
		}

		bookings := authed.Group("/bookings", middleware.RequireRole(models.RoleHost))
		{
			bookings.POST("", middleware.RequirePlan(models.PlanBasic), bc.Create)
			bookings.GET("/calendar", bc.Calendar)
			bookings.GET("/:id", bc.Detail)
			bookings.POST("/:id/cancel", bc.Cancel)
			bookings.GET("/:id/qr.png", bc.QRImage)
		}

		guard := authed.Group("/guard", middleware.RequireRole(models.RoleGuard))
		guard.Use(middleware.RateLimiter(rate.Limit(5), 10))
		{
			guard.POST("/scan", gc.ScanPerson)
			guard.POST("/scan-qr", gc.ScanBookingQR)
			guard.POST("/scan-luggage", gc.ScanLuggage)
			guard.GET("/verify-qr", gc.VerifyBookingQR)
		}

		luggage := authed.Group("/luggage", middleware.RequireRole(models.RoleHost))
		{
			luggage.POST("", middleware.RequirePlan(models.PlanPremium), lc.Register)
			luggage.GET("", lc.List)
			luggage.GET("/:id", lc.Detail)
			luggage.POST("/:id/block", lc.Block)
			luggage.POST("/:id/unblock", lc.Unblock)
			luggage.DELETE("/:id", lc.Delete)
			luggage.GET("/:id/qr.png", lc.QRImage)
		}

		billing := authed.Group("/billing")
		{
			billing.POST("/checkout", blc.Checkout)
			billing.GET("/plan", blc.MyPlan)
			billing.GET("/payments", blc.MyPayments)
		}

		logGroup := authed.Group("/logs", middleware.RequireRole(models.RoleHost, models.RoleGuard))
		{
			logGroup.GET("/access", logs.AccessLogs)
			logGroup.GET("/luggage", logs.LuggageLogs)
		}
	}

	return r
}
