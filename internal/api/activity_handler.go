package api

import (
	"errors"
	"fmt"
	"net/http"

	"veloplan/training-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityHandler exposes activity recording endpoints.
type ActivityHandler struct {
	activityService service.ActivityService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// --- Request/Response Structs ---

type CreateActivityRequest struct {
	UUID        string   `json:"uuid,omitempty"`
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Date        string   `json:"date" binding:"required"`
	TSS         *float64 `json:"tss,omitempty"`
	DurationSec int      `json:"durationSec,omitempty"`
}

type UploadURLRequest struct {
	ContentType string `json:"contentType,omitempty"`
}

type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type ConfirmUploadRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

type DownloadURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// --- Handler Methods ---

// CreateActivity godoc
// @Summary Record a new activity
// @Description Stores activity metadata and triggers workout auto-matching in the background.
// @Tags Activities
// @Accept json
// @Produce json
// @Param activity body CreateActivityRequest true "Activity metadata"
// @Success 201 {object} domain.Activity
// @Failure 409 {object} gin.H "Activity with this uuid already exists"
// @Security BearerAuth
// @Router /activities [post]
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	activity, err := h.activityService.CreateActivity(c.Request.Context(), userID, service.CreateActivityInput{
		UUID:        req.UUID,
		Name:        req.Name,
		Category:    req.Category,
		Date:        req.Date,
		TSS:         req.TSS,
		DurationSec: req.DurationSec,
	})
	if err != nil {
		h.mapActivityError(c, err)
		return
	}
	c.JSON(http.StatusCreated, activity)
}

// GetActivity godoc
// @Summary Get one activity
// @Tags Activities
// @Produce json
// @Param activityId path string true "Activity ID"
// @Success 200 {object} domain.Activity
// @Security BearerAuth
// @Router /activities/{activityId} [get]
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	userID, activityID, ok := h.userAndActivity(c)
	if !ok {
		return
	}

	activity, err := h.activityService.GetActivity(c.Request.Context(), userID, activityID)
	if err != nil {
		h.mapActivityError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}

// RequestUploadURL godoc
// @Summary Get a presigned URL for uploading the raw recording file
// @Tags Activities
// @Accept json
// @Produce json
// @Param activityId path string true "Activity ID"
// @Param request body UploadURLRequest false "Upload details"
// @Success 200 {object} UploadURLResponse
// @Security BearerAuth
// @Router /activities/{activityId}/file/upload-url [post]
func (h *ActivityHandler) RequestUploadURL(c *gin.Context) {
	userID, activityID, ok := h.userAndActivity(c)
	if !ok {
		return
	}

	var req UploadURLRequest
	// Body is optional; ignore bind errors for an empty body.
	_ = c.ShouldBindJSON(&req)

	uploadURL, objectKey, err := h.activityService.RequestRawFileUpload(c.Request.Context(), userID, activityID, req.ContentType)
	if err != nil {
		h.mapActivityError(c, err)
		return
	}
	c.JSON(http.StatusOK, UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey})
}

// ConfirmUpload godoc
// @Summary Confirm the raw recording file upload completed
// @Tags Activities
// @Accept json
// @Produce json
// @Param activityId path string true "Activity ID"
// @Param request body ConfirmUploadRequest true "Uploaded object key"
// @Success 200 {object} gin.H
// @Security BearerAuth
// @Router /activities/{activityId}/file/confirm [post]
func (h *ActivityHandler) ConfirmUpload(c *gin.Context) {
	userID, activityID, ok := h.userAndActivity(c)
	if !ok {
		return
	}

	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.activityService.ConfirmRawFileUpload(c.Request.Context(), userID, activityID, req.ObjectKey); err != nil {
		h.mapActivityError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetDownloadURL godoc
// @Summary Get a presigned URL for downloading the raw recording file
// @Tags Activities
// @Produce json
// @Param activityId path string true "Activity ID"
// @Success 200 {object} DownloadURLResponse
// @Failure 404 {object} gin.H "No file uploaded for this activity"
// @Security BearerAuth
// @Router /activities/{activityId}/file/download-url [get]
func (h *ActivityHandler) GetDownloadURL(c *gin.Context) {
	userID, activityID, ok := h.userAndActivity(c)
	if !ok {
		return
	}

	downloadURL, err := h.activityService.GetRawFileDownloadURL(c.Request.Context(), userID, activityID)
	if err != nil {
		h.mapActivityError(c, err)
		return
	}
	c.JSON(http.StatusOK, DownloadURLResponse{DownloadURL: downloadURL})
}

// --- Helpers ---

func (h *ActivityHandler) userAndActivity(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	activityID, err := primitive.ObjectIDFromHex(c.Param("activityId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid activity ID format")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return userID, activityID, true
}

func (h *ActivityHandler) mapActivityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActivityNotFound), errors.Is(err, service.ErrNoRawFile):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrActivityAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrActivityAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
