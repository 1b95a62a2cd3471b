package service

import (
	"context"
	"testing"
	"time"

	"veloplan/training-app/internal/domain"
	"veloplan/training-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeActivityRepo struct {
	activities map[primitive.ObjectID]*domain.Activity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{activities: make(map[primitive.ObjectID]*domain.Activity)}
}

func (r *fakeActivityRepo) Create(_ context.Context, a *domain.Activity) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	a.ID = id
	cp := *a
	r.activities[id] = &cp
	return id, nil
}

func (r *fakeActivityRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Activity, error) {
	a, ok := r.activities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeActivityRepo) GetByUUID(_ context.Context, uuid string) (*domain.Activity, error) {
	for _, a := range r.activities {
		if a.UUID == uuid {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeActivityRepo) SetFileObjectKey(_ context.Context, id primitive.ObjectID, objectKey string) error {
	a, ok := r.activities[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.FileObjectKey = objectKey
	return nil
}

type fakeFileStorage struct {
	deleted []string
}

func (s *fakeFileStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (s *fakeFileStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

func TestCreateActivityAssignsUUID(t *testing.T) {
	repo := newFakeActivityRepo()
	svc := NewActivityService(repo, nil, &fakeFileStorage{})
	athleteID := primitive.NewObjectID()

	activity, err := svc.CreateActivity(context.Background(), athleteID, CreateActivityInput{
		Name: "Morning Ride", Category: domain.CategoryRide, Date: "2025-03-05", TSS: fptr(92),
	})
	require.NoError(t, err)
	assert.False(t, activity.ID.IsZero())
	assert.NotEmpty(t, activity.UUID)
	assert.Equal(t, athleteID, activity.AthleteID)
}

func TestCreateActivityDuplicateUUID(t *testing.T) {
	repo := newFakeActivityRepo()
	svc := NewActivityService(repo, nil, &fakeFileStorage{})
	athleteID := primitive.NewObjectID()
	input := CreateActivityInput{
		UUID: "device-123", Name: "Morning Ride", Category: domain.CategoryRide, Date: "2025-03-05",
	}

	_, err := svc.CreateActivity(context.Background(), athleteID, input)
	require.NoError(t, err)

	_, err = svc.CreateActivity(context.Background(), athleteID, input)
	assert.ErrorIs(t, err, ErrActivityAlreadyExists)
}

func TestCreateActivityRejectsBadDate(t *testing.T) {
	svc := NewActivityService(newFakeActivityRepo(), nil, &fakeFileStorage{})

	_, err := svc.CreateActivity(context.Background(), primitive.NewObjectID(), CreateActivityInput{
		Name: "Ride", Category: domain.CategoryRide, Date: "05/03/2025",
	})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestRawFileUploadFlow(t *testing.T) {
	repo := newFakeActivityRepo()
	store := &fakeFileStorage{}
	svc := NewActivityService(repo, nil, store)
	ctx := context.Background()
	athleteID := primitive.NewObjectID()

	activity, err := svc.CreateActivity(ctx, athleteID, CreateActivityInput{
		Name: "Morning Ride", Category: domain.CategoryRide, Date: "2025-03-05",
	})
	require.NoError(t, err)

	// No file yet.
	_, err = svc.GetRawFileDownloadURL(ctx, athleteID, activity.ID)
	assert.ErrorIs(t, err, ErrNoRawFile)

	uploadURL, objectKey, err := svc.RequestRawFileUpload(ctx, athleteID, activity.ID, "application/octet-stream")
	require.NoError(t, err)
	assert.Contains(t, uploadURL, objectKey)

	require.NoError(t, svc.ConfirmRawFileUpload(ctx, athleteID, activity.ID, objectKey))

	downloadURL, err := svc.GetRawFileDownloadURL(ctx, athleteID, activity.ID)
	require.NoError(t, err)
	assert.Contains(t, downloadURL, objectKey)

	// Replacing the file deletes the old object.
	_, secondKey, err := svc.RequestRawFileUpload(ctx, athleteID, activity.ID, "")
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmRawFileUpload(ctx, athleteID, activity.ID, secondKey))
	assert.Equal(t, []string{objectKey}, store.deleted)
}

func TestActivityOwnership(t *testing.T) {
	repo := newFakeActivityRepo()
	svc := NewActivityService(repo, nil, &fakeFileStorage{})
	ctx := context.Background()

	activity, err := svc.CreateActivity(ctx, primitive.NewObjectID(), CreateActivityInput{
		Name: "Ride", Category: domain.CategoryRide, Date: "2025-03-05",
	})
	require.NoError(t, err)

	_, err = svc.GetActivity(ctx, primitive.NewObjectID(), activity.ID)
	assert.ErrorIs(t, err, ErrActivityAccessDenied)

	_, err = svc.GetActivity(ctx, activity.AthleteID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrActivityNotFound)
}
