package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"symptom-diary-server/internal/config"
	"symptom-diary-server/internal/handlers"
	"symptom-diary-server/internal/middleware"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, logger *zap.Logger) {
	authHandler := handlers.NewAuthHandler(db, cfg, logger)
	entryHandler := handlers.NewEntryHandler(db, logger)
	snapshotHandler := handlers.NewSnapshotHandler(db, logger)
	appointmentHandler := handlers.NewAppointmentHandler(db, logger)

	// Public routes (no authentication required)
	public := router.Group("/api")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		// Availability feeds the booking calendar before login.
		public.GET("/appointments/availability", appointmentHandler.Availability)
	}

	// Authenticated routes
	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		private.GET("/users/me", authHandler.Me)

		entryRoutes := private.Group("/entries")
		{
			entryRoutes.POST("", entryHandler.CreateEntry)
			entryRoutes.GET("", entryHandler.ListMyEntries)
			entryRoutes.PUT("/:id", entryHandler.UpdateEntry)
			entryRoutes.DELETE("/:id", entryHandler.DeleteEntry)
			entryRoutes.GET("/admin/all", middleware.AdminOnly(), entryHandler.ListAllEntries)
		}

		snapshotRoutes := private.Group("/snapshots")
		{
			snapshotRoutes.POST("", snapshotHandler.CreateSnapshot)
			snapshotRoutes.GET("", snapshotHandler.ListMySnapshots)
		}

		appointmentRoutes := private.Group("/appointments")
		{
			// Patient side of the negotiation.
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.ListMyAppointments)
			appointmentRoutes.PUT("/:id/accept", appointmentHandler.AcceptProposal)
			appointmentRoutes.PUT("/:id/reject", appointmentHandler.RejectProposal)
			appointmentRoutes.GET("/:id/attachment", appointmentHandler.DownloadAttachment)

			// Admin side.
			appointmentRoutes.GET("/admin/all", middleware.AdminOnly(), appointmentHandler.ListAllAppointments)
			appointmentRoutes.PUT("/:id/status", middleware.AdminOnly(), appointmentHandler.UpdateStatus)
			appointmentRoutes.PUT("/:id/propose", middleware.AdminOnly(), appointmentHandler.Propose)
			appointmentRoutes.GET("/:id/pdf", middleware.AdminOnly(), appointmentHandler.DownloadDiaryPDF)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
