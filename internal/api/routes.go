package api

import (
	"net/http"

	"veloplan/training-app/internal/domain"
	"veloplan/training-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	scheduleService service.ScheduleService,
	activityService service.ActivityService,
	builderService service.BuilderService,
	libraryService service.LibraryService,
) {
	authHandler := NewAuthHandler(authService)
	scheduleHandler := NewScheduleHandler(scheduleService)
	activityHandler := NewActivityHandler(activityService)
	builderHandler := NewBuilderHandler(builderService)
	libraryHandler := NewLibraryHandler(libraryService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": role})
		})

		// --- Schedule Routes ---
		protected.GET("/calendar", scheduleHandler.GetCalendar)
		planGroup := protected.Group("/plans/:planId/schedule")
		{
			planGroup.GET("", scheduleHandler.GetSchedule)
			planGroup.POST("/move", scheduleHandler.MoveWorkout)
			planGroup.POST("/copy", scheduleHandler.CopyWorkout)
			planGroup.POST("/delete", scheduleHandler.DeleteWorkout)
			planGroup.POST("/library", scheduleHandler.InsertFromLibrary)
		}

		// --- Activity Routes ---
		activityGroup := protected.Group("/activities")
		{
			activityGroup.POST("", activityHandler.CreateActivity)
			activityGroup.GET("/:activityId", activityHandler.GetActivity)
			activityGroup.POST("/:activityId/file/upload-url", activityHandler.RequestUploadURL)
			activityGroup.POST("/:activityId/file/confirm", activityHandler.ConfirmUpload)
			activityGroup.GET("/:activityId/file/download-url", activityHandler.GetDownloadURL)
		}

		// --- Builder Routes (coaches only) ---
		builderGroup := protected.Group("/builder/drafts")
		builderGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			builderGroup.GET("/:draftId", builderHandler.GetDraft)
			builderGroup.DELETE("/:draftId", builderHandler.DiscardDraft)
			builderGroup.POST("/:draftId/actions", builderHandler.ApplyAction)
			builderGroup.POST("/:draftId/save", builderHandler.SaveDraft)
			builderGroup.POST("/:draftId/plans", builderHandler.CreatePlan)
		}

		// --- Library Routes ---
		libraryGroup := protected.Group("/library/workouts")
		{
			libraryGroup.POST("", RoleMiddleware(domain.RoleCoach), libraryHandler.CreateWorkout)
			libraryGroup.GET("", RoleMiddleware(domain.RoleCoach), libraryHandler.ListWorkouts)
			libraryGroup.GET("/:workoutId", libraryHandler.GetWorkout)
		}
	}
}
