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

// ScheduleHandler exposes schedule resolution and edit endpoints.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// --- Request/Response Structs ---

// WorkoutRefDTO addresses a workout by stable id or by position.
type WorkoutRefDTO struct {
	Date      string `json:"date,omitempty"`
	Index     *int   `json:"index,omitempty"`
	WorkoutID string `json:"workoutId,omitempty"`
}

type MoveWorkoutRequest struct {
	Source WorkoutRefDTO `json:"source" binding:"required"`
	Target WorkoutRefDTO `json:"target" binding:"required"`
}

type CopyWorkoutRequest struct {
	Source WorkoutRefDTO `json:"source" binding:"required"`
	Target WorkoutRefDTO `json:"target" binding:"required"`
}

type DeleteWorkoutRequest struct {
	Target WorkoutRefDTO `json:"target" binding:"required"`
}

type LibraryInsertRequest struct {
	LibraryWorkoutID string `json:"libraryWorkoutId" binding:"required"`
	TargetDate       string `json:"targetDate" binding:"required"`
}

type EditResponse struct {
	Success       bool                  `json:"success"`
	Extracted     bool                  `json:"extracted"`
	ManualWorkout *domain.ManualWorkout `json:"manualWorkout,omitempty"`
}

func toServiceRef(dto WorkoutRefDTO) service.WorkoutRef {
	return service.WorkoutRef{Date: dto.Date, Index: dto.Index, WorkoutID: dto.WorkoutID}
}

// --- Handler Methods ---

// GetSchedule godoc
// @Summary Get the effective schedule of a plan
// @Description Resolves the plan's base weeks through its override layer.
// @Tags Schedule
// @Produce json
// @Param planId path string true "Plan instance ID"
// @Success 200 {object} map[string][]schedule.EffectiveWorkout
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Plan not found"
// @Security BearerAuth
// @Router /plans/{planId}/schedule [get]
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	userID, planID, ok := h.userAndPlan(c)
	if !ok {
		return
	}

	sched, err := h.scheduleService.GetEffectiveSchedule(c.Request.Context(), userID, planID)
	if err != nil {
		h.mapScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

// GetCalendar godoc
// @Summary Get the athlete's merged calendar
// @Description Merges active-plan schedules with manual workouts over a date range.
// @Tags Schedule
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} service.Calendar
// @Security BearerAuth
// @Router /calendar [get]
func (h *ScheduleHandler) GetCalendar(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		abortWithError(c, http.StatusBadRequest, "from and to query parameters are required")
		return
	}

	calendar, err := h.scheduleService.GetCalendar(c.Request.Context(), userID, from, to)
	if err != nil {
		h.mapScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, calendar)
}

// MoveWorkout godoc
// @Summary Move a workout to another date
// @Description Moves a scheduled workout. A target outside the plan's date range extracts it into a standalone manual workout.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param planId path string true "Plan instance ID"
// @Param edit body MoveWorkoutRequest true "Source and target"
// @Success 200 {object} EditResponse
// @Failure 409 {object} gin.H "Workout already matched, or concurrent edit"
// @Failure 422 {object} gin.H "Date in the past"
// @Security BearerAuth
// @Router /plans/{planId}/schedule/move [post]
func (h *ScheduleHandler) MoveWorkout(c *gin.Context) {
	userID, planID, ok := h.userAndPlan(c)
	if !ok {
		return
	}

	var req MoveWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.scheduleService.Move(c.Request.Context(), userID, planID, toServiceRef(req.Source), toServiceRef(req.Target))
	if err != nil {
		h.mapScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, EditResponse{Success: true, Extracted: result.Extracted, ManualWorkout: result.ManualWorkout})
}

// CopyWorkout godoc
// @Summary Copy a workout to another date
// @Description Duplicates a scheduled workout onto a new date; the original is untouched.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param planId path string true "Plan instance ID"
// @Param edit body CopyWorkoutRequest true "Source and target"
// @Success 200 {object} EditResponse
// @Security BearerAuth
// @Router /plans/{planId}/schedule/copy [post]
func (h *ScheduleHandler) CopyWorkout(c *gin.Context) {
	userID, planID, ok := h.userAndPlan(c)
	if !ok {
		return
	}

	var req CopyWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.scheduleService.Copy(c.Request.Context(), userID, planID, toServiceRef(req.Source), toServiceRef(req.Target))
	if err != nil {
		h.mapScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, EditResponse{Success: true, Extracted: result.Extracted, ManualWorkout: result.ManualWorkout})
}

// DeleteWorkout godoc
// @Summary Suppress a workout from the schedule
// @Description Records a deletion in the override layer; the base plan is untouched.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param planId path string true "Plan instance ID"
// @Param edit body DeleteWorkoutRequest true "Target workout"
// @Success 200 {object} EditResponse
// @Security BearerAuth
// @Router /plans/{planId}/schedule/delete [post]
func (h *ScheduleHandler) DeleteWorkout(c *gin.Context) {
	userID, planID, ok := h.userAndPlan(c)
	if !ok {
		return
	}

	var req DeleteWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.scheduleService.Delete(c.Request.Context(), userID, planID, toServiceRef(req.Target)); err != nil {
		h.mapScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, EditResponse{Success: true})
}

// InsertFromLibrary godoc
// @Summary Insert a library workout into the schedule
// @Description Places a copy of a library workout on the given date.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param planId path string true "Plan instance ID"
// @Param edit body LibraryInsertRequest true "Library workout and target date"
// @Success 200 {object} EditResponse
// @Security BearerAuth
// @Router /plans/{planId}/schedule/library [post]
func (h *ScheduleHandler) InsertFromLibrary(c *gin.Context) {
	userID, planID, ok := h.userAndPlan(c)
	if !ok {
		return
	}

	var req LibraryInsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	libraryID, err := primitive.ObjectIDFromHex(req.LibraryWorkoutID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid library workout ID format")
		return
	}

	result, err := h.scheduleService.InsertFromLibrary(c.Request.Context(), userID, planID, libraryID, req.TargetDate)
	if err != nil {
		h.mapScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, EditResponse{Success: true, Extracted: result.Extracted, ManualWorkout: result.ManualWorkout})
}

// --- Helpers ---

func (h *ScheduleHandler) userAndPlan(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return userID, planID, true
}

func (h *ScheduleHandler) mapScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrWorkoutNotFound),
		errors.Is(err, service.ErrLibraryWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPlanNotEditable),
		errors.Is(err, service.ErrWorkoutMatched),
		errors.Is(err, service.ErrConcurrentEdit):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPastDate):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
