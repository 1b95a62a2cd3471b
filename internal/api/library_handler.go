package api

import (
	"errors"
	"fmt"
	"net/http"

	"veloplan/training-app/internal/domain"
	"veloplan/training-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LibraryHandler exposes the coach's workout library.
type LibraryHandler struct {
	libraryService service.LibraryService
}

// NewLibraryHandler creates a new LibraryHandler.
func NewLibraryHandler(libraryService service.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService}
}

// --- Request/Response Structs ---

type CreateLibraryWorkoutRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Category    string                  `json:"category" binding:"required"`
	TSS         float64                 `json:"tss"`
	DurationMin int                     `json:"durationMin,omitempty"`
	Description string                  `json:"description,omitempty"`
	Segments    []domain.WorkoutSegment `json:"segments,omitempty"`
}

// --- Handler Methods ---

// CreateWorkout godoc
// @Summary Create a library workout
// @Tags Library
// @Accept json
// @Produce json
// @Param workout body CreateLibraryWorkoutRequest true "Workout template"
// @Success 201 {object} domain.LibraryWorkout
// @Security BearerAuth
// @Router /library/workouts [post]
func (h *LibraryHandler) CreateWorkout(c *gin.Context) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CreateLibraryWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := h.libraryService.CreateWorkout(c.Request.Context(), coachID, service.CreateLibraryWorkoutInput{
		Name:        req.Name,
		Category:    req.Category,
		TSS:         req.TSS,
		DurationMin: req.DurationMin,
		Description: req.Description,
		Segments:    req.Segments,
	})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// GetWorkout godoc
// @Summary Get one library workout
// @Tags Library
// @Produce json
// @Param workoutId path string true "Library workout ID"
// @Success 200 {object} domain.LibraryWorkout
// @Security BearerAuth
// @Router /library/workouts/{workoutId} [get]
func (h *LibraryHandler) GetWorkout(c *gin.Context) {
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}

	workout, err := h.libraryService.GetWorkout(c.Request.Context(), workoutID)
	if err != nil {
		if errors.Is(err, service.ErrLibraryWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	c.JSON(http.StatusOK, workout)
}

// ListWorkouts godoc
// @Summary List the coach's library workouts
// @Tags Library
// @Produce json
// @Success 200 {array} domain.LibraryWorkout
// @Security BearerAuth
// @Router /library/workouts [get]
func (h *LibraryHandler) ListWorkouts(c *gin.Context) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workouts, err := h.libraryService.ListByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	if workouts == nil {
		workouts = []domain.LibraryWorkout{}
	}
	c.JSON(http.StatusOK, workouts)
}
