package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"veloplan/training-app/internal/domain"
	"veloplan/training-app/internal/repository"
	"veloplan/training-app/internal/schedule"
	"veloplan/training-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrActivityNotFound      = errors.New("activity not found")
	ErrActivityAlreadyExists = errors.New("activity with this uuid already exists")
	ErrActivityAccessDenied  = errors.New("activity does not belong to this athlete")
	ErrNoRawFile             = errors.New("activity has no raw recording file")
)

// matchTimeout bounds the background auto-match run kicked off after an
// activity is created.
const matchTimeout = 30 * time.Second

type ActivityService interface {
	CreateActivity(ctx context.Context, athleteID primitive.ObjectID, input CreateActivityInput) (*domain.Activity, error)
	GetActivity(ctx context.Context, athleteID, activityID primitive.ObjectID) (*domain.Activity, error)
	RequestRawFileUpload(ctx context.Context, athleteID, activityID primitive.ObjectID, contentType string) (uploadURL, objectKey string, err error)
	ConfirmRawFileUpload(ctx context.Context, athleteID, activityID primitive.ObjectID, objectKey string) error
	GetRawFileDownloadURL(ctx context.Context, athleteID, activityID primitive.ObjectID) (string, error)
}

// CreateActivityInput carries the recording metadata supplied by the
// client (or a device sync job).
type CreateActivityInput struct {
	UUID        string
	Name        string
	Category    string
	Date        string
	TSS         *float64
	DurationSec int
}

// --- Service Implementation ---

// activityService implements the ActivityService interface. Raw
// recording files travel directly between the client and object storage
// via presigned URLs; the service only brokers URLs and tracks keys.
type activityService struct {
	activityRepo repository.ActivityRepository
	matcher      MatcherService
	fileStorage  storage.FileStorage
}

// NewActivityService creates a new instance of activityService.
func NewActivityService(activityRepo repository.ActivityRepository, matcher MatcherService, fileStorage storage.FileStorage) ActivityService {
	return &activityService{
		activityRepo: activityRepo,
		matcher:      matcher,
		fileStorage:  fileStorage,
	}
}

// CreateActivity records a new activity and kicks off auto-matching in
// the background. Matching failures never fail activity creation.
func (s *activityService) CreateActivity(ctx context.Context, athleteID primitive.ObjectID, input CreateActivityInput) (*domain.Activity, error) {
	if input.Name == "" || input.Category == "" {
		return nil, errors.New("activity name and category cannot be empty")
	}
	if _, err := time.Parse(schedule.DateLayout, input.Date); err != nil {
		return nil, ErrInvalidDate
	}

	activityUUID := input.UUID
	if activityUUID == "" {
		activityUUID = uuid.NewString()
	} else {
		if _, err := s.activityRepo.GetByUUID(ctx, activityUUID); err == nil {
			return nil, ErrActivityAlreadyExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	activity := &domain.Activity{
		AthleteID:   athleteID,
		UUID:        activityUUID,
		Name:        input.Name,
		Category:    input.Category,
		Date:        input.Date,
		TSS:         input.TSS,
		DurationSec: input.DurationSec,
	}

	activityID, err := s.activityRepo.Create(ctx, activity)
	if err != nil {
		return nil, err
	}
	activity.ID = activityID

	if s.matcher != nil {
		go s.runAutoMatch(activity)
	}

	return activity, nil
}

// runAutoMatch runs the matcher detached from the request context.
func (s *activityService) runAutoMatch(activity *domain.Activity) {
	ctx, cancel := context.WithTimeout(context.Background(), matchTimeout)
	defer cancel()

	if _, err := s.matcher.MatchActivity(ctx, activity); err != nil {
		log.Printf("WARN: auto-match for activity %s failed: %v", activity.ID.Hex(), err)
	}
}

// GetActivity retrieves a single activity, enforcing ownership.
func (s *activityService) GetActivity(ctx context.Context, athleteID, activityID primitive.ObjectID) (*domain.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	if activity.AthleteID != athleteID {
		return nil, ErrActivityAccessDenied
	}
	return activity, nil
}

// RequestRawFileUpload returns a presigned PUT URL for the activity's
// raw recording file. The key is not persisted until the client
// confirms the upload completed.
func (s *activityService) RequestRawFileUpload(ctx context.Context, athleteID, activityID primitive.ObjectID, contentType string) (string, string, error) {
	activity, err := s.GetActivity(ctx, athleteID, activityID)
	if err != nil {
		return "", "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectKey := fmt.Sprintf("activities/%s/%s/%s", athleteID.Hex(), activity.ID.Hex(), uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return uploadURL, objectKey, nil
}

// ConfirmRawFileUpload records the object key after the client finished
// its direct upload. A replaced file's old object is deleted best-effort.
func (s *activityService) ConfirmRawFileUpload(ctx context.Context, athleteID, activityID primitive.ObjectID, objectKey string) error {
	activity, err := s.GetActivity(ctx, athleteID, activityID)
	if err != nil {
		return err
	}
	if objectKey == "" {
		return errors.New("object key cannot be empty")
	}

	if err := s.activityRepo.SetFileObjectKey(ctx, activityID, objectKey); err != nil {
		return err
	}

	if activity.FileObjectKey != "" && activity.FileObjectKey != objectKey {
		if err := s.fileStorage.DeleteObject(ctx, activity.FileObjectKey); err != nil {
			log.Printf("WARN: failed to delete replaced recording file %s: %v", activity.FileObjectKey, err)
		}
	}
	return nil
}

// GetRawFileDownloadURL returns a presigned GET URL for the activity's
// raw recording file.
func (s *activityService) GetRawFileDownloadURL(ctx context.Context, athleteID, activityID primitive.ObjectID) (string, error) {
	activity, err := s.GetActivity(ctx, athleteID, activityID)
	if err != nil {
		return "", err
	}
	if activity.FileObjectKey == "" {
		return "", ErrNoRawFile
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, activity.FileObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}
	return downloadURL, nil
}
