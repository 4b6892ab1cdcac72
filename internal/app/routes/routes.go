package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dmorales/becas-core/internal/app/controllers"
	"github.com/dmorales/becas-core/internal/app/models"
	"github.com/dmorales/becas-core/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	periodController *controllers.PeriodController,
	importController *controllers.ImportController,
	scholarshipController *controllers.ScholarshipController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/register", authController.RegisterApplicant)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Period routes: reading is open to every authenticated user,
		// mutations and imports are reviewer-only.
		periods := authenticated.Group("/periods")
		{
			periods.GET("", periodController.GetAllPeriods)
			periods.GET("/:id", periodController.GetPeriodByID)

			periodsReviewer := periods.Group("")
			periodsReviewer.Use(authMiddleware.RoleRequired(models.RoleReviewer))
			{
				periodsReviewer.POST("", periodController.CreatePeriod)
				periodsReviewer.PUT("/:id", periodController.UpdatePeriod)
				periodsReviewer.DELETE("/:id", periodController.DeletePeriod)
				periodsReviewer.POST("/:id/import", importController.ImportRoster)
			}
		}

		// Scholarship routes: ownership is enforced in the services, so
		// applicants can share these endpoints with reviewers.
		scholarships := authenticated.Group("/scholarships")
		{
			scholarships.GET("", scholarshipController.ListScholarships)
			scholarships.GET("/:id", scholarshipController.GetScholarship)
			scholarships.GET("/:id/actions", scholarshipController.GetActions)
			scholarships.POST("/:id/transitions", scholarshipController.ApplyTransition)
			scholarships.GET("/:id/history", scholarshipController.GetHistory)
			scholarships.GET("/:id/evidence", scholarshipController.ListEvidence)
			scholarships.POST("/:id/evidence", scholarshipController.UploadEvidence)
			scholarships.PUT("/:id/bank-account", scholarshipController.SetBankAccount)
		}
	}
}
