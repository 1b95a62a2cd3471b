package service

import (
	"context"
	"errors"

	"veloplan/training-app/internal/domain"
	"veloplan/training-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LibraryService interface {
	CreateWorkout(ctx context.Context, coachID primitive.ObjectID, input CreateLibraryWorkoutInput) (*domain.LibraryWorkout, error)
	GetWorkout(ctx context.Context, id primitive.ObjectID) (*domain.LibraryWorkout, error)
	ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.LibraryWorkout, error)
}

type CreateLibraryWorkoutInput struct {
	Name        string
	Category    string
	TSS         float64
	DurationMin int
	Description string
	Segments    []domain.WorkoutSegment
}

type libraryService struct {
	libraryRepo repository.LibraryWorkoutRepository
}

// NewLibraryService creates a new instance of libraryService.
func NewLibraryService(libraryRepo repository.LibraryWorkoutRepository) LibraryService {
	return &libraryService{libraryRepo: libraryRepo}
}

func (s *libraryService) CreateWorkout(ctx context.Context, coachID primitive.ObjectID, input CreateLibraryWorkoutInput) (*domain.LibraryWorkout, error) {
	if input.Name == "" || input.Category == "" {
		return nil, errors.New("library workout name and category cannot be empty")
	}
	if input.TSS < 0 {
		return nil, errors.New("library workout tss cannot be negative")
	}

	workout := &domain.LibraryWorkout{
		CoachID:     coachID,
		Name:        input.Name,
		Category:    input.Category,
		TSS:         input.TSS,
		DurationMin: input.DurationMin,
		Description: input.Description,
		Segments:    input.Segments,
	}
	id, err := s.libraryRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = id
	return workout, nil
}

func (s *libraryService) GetWorkout(ctx context.Context, id primitive.ObjectID) (*domain.LibraryWorkout, error) {
	workout, err := s.libraryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLibraryWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

func (s *libraryService) ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.LibraryWorkout, error) {
	return s.libraryRepo.GetByCoachID(ctx, coachID)
}
