package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lifeline-dev/lifeline/internal/handlers"
	"github.com/lifeline-dev/lifeline/internal/middleware"
	"github.com/lifeline-dev/lifeline/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/requests/:blood_type", handlers.RequestFeed)

		users := api.Group("/users")
		{
			users.POST("", handlers.RegisterUser)
			users.POST("/login", handlers.LoginUser)
			users.GET("/profile", middleware.AuthMiddleware(), handlers.GetUserProfile)
			users.PUT("/profile", middleware.AuthMiddleware(), handlers.UpdateUserProfile)
			users.GET("", middleware.AuthMiddleware(), middleware.RequireAdmin(), handlers.ListUsers)
			users.DELETE("/:id", middleware.AuthMiddleware(), middleware.RequireAdmin(), handlers.DeleteUser)
		}

		donors := api.Group("/donors", middleware.AuthMiddleware(), middleware.RequireDonor())
		{
			donors.POST("", handlers.CreateDonorProfile)
			donors.GET("/profile", handlers.GetDonorProfile)
			donors.PUT("/profile", handlers.UpdateDonorProfile)
			donors.GET("/eligible-requests", handlers.GetEligibleRequests)
			donors.POST("/respond/:id", handlers.RespondToRequest)
			donors.GET("/donation-history", handlers.GetDonationHistory)
			donors.PUT("/availability", handlers.UpdateAvailability)
		}

		institutions := api.Group("/institutions", middleware.AuthMiddleware(), middleware.RequireInstitution())
		{
			institutions.POST("", handlers.CreateInstitutionProfile)
			institutions.GET("/profile", handlers.GetInstitutionProfile)
			institutions.PUT("/profile", handlers.UpdateInstitutionProfile)

			institutions.POST("/blood-requests", handlers.CreateBloodRequest)
			institutions.GET("/blood-requests", handlers.ListInstitutionRequests)
			institutions.GET("/blood-requests/:id", handlers.GetInstitutionRequestByID)
			institutions.PUT("/blood-requests/:id", handlers.UpdateBloodRequest)
			institutions.PUT("/blood-requests/:id/cancel", handlers.CancelBloodRequest)
			institutions.PUT("/blood-requests/:id/confirm/:donor_id", handlers.ConfirmDonorAppointment)
			institutions.PUT("/blood-requests/:id/complete/:donor_id", handlers.CompleteDonation)
		}

		bloodRequests := api.Group("/bloodRequests")
		{
			bloodRequests.GET("", handlers.ListBloodRequests)
			bloodRequests.GET("/search", handlers.SearchBloodRequests)
			bloodRequests.GET("/events", handlers.GetDonationEvents)
			bloodRequests.GET("/stats", handlers.GetBloodRequestStats)
			bloodRequests.GET("/:id", handlers.GetBloodRequestByID)
		}
	}

	return r
}
