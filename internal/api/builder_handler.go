package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"veloplan/training-app/internal/builder"
	"veloplan/training-app/internal/schedule"
	"veloplan/training-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuilderHandler exposes the coach's plan-authoring endpoints. Draft
// mutations arrive as typed actions and run through the reducer server
// side, so undo/redo history lives with the draft.
type BuilderHandler struct {
	builderService service.BuilderService
}

// NewBuilderHandler creates a new BuilderHandler.
func NewBuilderHandler(builderService service.BuilderService) *BuilderHandler {
	return &BuilderHandler{builderService: builderService}
}

// --- Request/Response Structs ---

type ActionRequest struct {
	Type    string          `json:"type" binding:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CreatePlanRequest struct {
	AthleteID string `json:"athleteId" binding:"required"`
	StartDate string `json:"startDate" binding:"required"` // YYYY-MM-DD, a Monday
}

// decodeAction maps a wire action onto a reducer action value.
func decodeAction(req ActionRequest) (builder.Action, error) {
	unmarshal := func(v interface{}) error {
		if len(req.Payload) == 0 {
			return nil
		}
		return json.Unmarshal(req.Payload, v)
	}

	switch req.Type {
	case "addWeek":
		var a builder.AddWeek
		return a, unmarshal(&a)
	case "removeWeek":
		var a builder.RemoveWeek
		return a, unmarshal(&a)
	case "updateWeekPhase":
		var a builder.UpdateWeekPhase
		return a, unmarshal(&a)
	case "updateWeekNotes":
		var a builder.UpdateWeekNotes
		return a, unmarshal(&a)
	case "copyWeek":
		var a builder.CopyWeek
		return a, unmarshal(&a)
	case "addWorkout":
		var a builder.AddWorkout
		return a, unmarshal(&a)
	case "removeWorkout":
		var a builder.RemoveWorkout
		return a, unmarshal(&a)
	case "moveWorkout":
		var a builder.MoveWorkout
		return a, unmarshal(&a)
	case "reorderWorkouts":
		var a builder.ReorderWorkouts
		return a, unmarshal(&a)
	case "undo":
		return builder.Undo{}, nil
	case "redo":
		return builder.Redo{}, nil
	case "validate":
		return builder.Validate{}, nil
	case "clearValidation":
		return builder.ClearValidation{}, nil
	case "initPlan":
		var a builder.InitPlan
		return a, unmarshal(&a)
	default:
		return nil, fmt.Errorf("unknown action type %q", req.Type)
	}
}

// --- Handler Methods ---

// GetDraft godoc
// @Summary Get the coach's plan draft state
// @Tags Builder
// @Produce json
// @Param draftId path string true "Draft ID"
// @Success 200 {object} builder.State
// @Security BearerAuth
// @Router /builder/drafts/{draftId} [get]
func (h *BuilderHandler) GetDraft(c *gin.Context) {
	coachID, draftID, ok := h.coachAndDraft(c)
	if !ok {
		return
	}

	state, err := h.builderService.GetDraft(c.Request.Context(), coachID, draftID)
	if err != nil {
		h.mapBuilderError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ApplyAction godoc
// @Summary Apply one authoring action to the draft
// @Description Runs a reducer action (addWeek, moveWorkout, undo, ...) and returns the new state.
// @Tags Builder
// @Accept json
// @Produce json
// @Param draftId path string true "Draft ID"
// @Param action body ActionRequest true "Typed action"
// @Success 200 {object} builder.State
// @Security BearerAuth
// @Router /builder/drafts/{draftId}/actions [post]
func (h *BuilderHandler) ApplyAction(c *gin.Context) {
	coachID, draftID, ok := h.coachAndDraft(c)
	if !ok {
		return
	}

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	action, err := decodeAction(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.builderService.ApplyAction(c.Request.Context(), coachID, draftID, action)
	if err != nil {
		h.mapBuilderError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// SaveDraft godoc
// @Summary Persist the draft and clear its dirty flag
// @Tags Builder
// @Produce json
// @Param draftId path string true "Draft ID"
// @Success 200 {object} builder.State
// @Security BearerAuth
// @Router /builder/drafts/{draftId}/save [post]
func (h *BuilderHandler) SaveDraft(c *gin.Context) {
	coachID, draftID, ok := h.coachAndDraft(c)
	if !ok {
		return
	}

	state, err := h.builderService.SaveDraft(c.Request.Context(), coachID, draftID)
	if err != nil {
		// The state still carries the failure for the client.
		if state != nil {
			c.JSON(http.StatusInternalServerError, state)
			return
		}
		h.mapBuilderError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// DiscardDraft godoc
// @Summary Discard the draft
// @Tags Builder
// @Produce json
// @Param draftId path string true "Draft ID"
// @Success 200 {object} gin.H
// @Security BearerAuth
// @Router /builder/drafts/{draftId} [delete]
func (h *BuilderHandler) DiscardDraft(c *gin.Context) {
	coachID, draftID, ok := h.coachAndDraft(c)
	if !ok {
		return
	}

	if err := h.builderService.DiscardDraft(c.Request.Context(), coachID, draftID); err != nil {
		h.mapBuilderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreatePlan godoc
// @Summary Create a plan instance from the draft
// @Tags Builder
// @Accept json
// @Produce json
// @Param draftId path string true "Draft ID"
// @Param request body CreatePlanRequest true "Athlete and start date"
// @Success 201 {object} domain.PlanInstance
// @Failure 422 {object} gin.H "Draft empty or invalid"
// @Security BearerAuth
// @Router /builder/drafts/{draftId}/plans [post]
func (h *BuilderHandler) CreatePlan(c *gin.Context) {
	coachID, draftID, ok := h.coachAndDraft(c)
	if !ok {
		return
	}

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	athleteID, err := primitive.ObjectIDFromHex(req.AthleteID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format")
		return
	}
	startDate, err := time.Parse(schedule.DateLayout, req.StartDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD")
		return
	}

	plan, err := h.builderService.CreatePlanFromDraft(c.Request.Context(), coachID, draftID, athleteID, startDate)
	if err != nil {
		h.mapBuilderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// --- Helpers ---

func (h *BuilderHandler) coachAndDraft(c *gin.Context) (primitive.ObjectID, string, bool) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return primitive.NilObjectID, "", false
	}
	draftID := c.Param("draftId")
	if draftID == "" {
		abortWithError(c, http.StatusBadRequest, "Draft ID is required")
		return primitive.NilObjectID, "", false
	}
	return coachID, draftID, true
}

func (h *BuilderHandler) mapBuilderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDraftNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDraftNotValid), errors.Is(err, service.ErrDraftHasNoWeek):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
