package mongo

import (
	"context"
	"errors"
	"time"

	"veloplan/training-app/internal/domain"
	"veloplan/training-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const manualWorkoutCollectionName = "manual_workouts"

// mongoManualWorkoutRepository implements repository.ManualWorkoutRepository
type mongoManualWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoManualWorkoutRepository creates a new ManualWorkout repository.
func NewMongoManualWorkoutRepository(db *mongo.Database) repository.ManualWorkoutRepository {
	return &mongoManualWorkoutRepository{
		collection: db.Collection(manualWorkoutCollectionName),
	}
}

// Create inserts a new manual workout.
func (r *mongoManualWorkoutRepository) Create(ctx context.Context, workout *domain.ManualWorkout) (primitive.ObjectID, error) {
	if workout.AthleteID == primitive.NilObjectID || workout.Name == "" || workout.Date == "" {
		return primitive.NilObjectID, errors.New("manual workout requires athleteId, name, and date")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted manual workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single manual workout by its ID.
func (r *mongoManualWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ManualWorkout, error) {
	var workout domain.ManualWorkout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetByAthleteAndDateRange retrieves an athlete's manual workouts dated
// within [fromDate, toDate], ordered by date. Dates compare correctly as
// strings because they are stored as YYYY-MM-DD.
func (r *mongoManualWorkoutRepository) GetByAthleteAndDateRange(ctx context.Context, athleteID primitive.ObjectID, fromDate, toDate string) ([]domain.ManualWorkout, error) {
	var workouts []domain.ManualWorkout
	filter := bson.M{
		"athleteId": athleteID,
		"date":      bson.M{"$gte": fromDate, "$lte": toDate},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Delete removes a manual workout. Used both by athletes and by the
// extraction rollback path.
func (r *mongoManualWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if id == primitive.NilObjectID {
		return errors.New("manual workout ID is required for deletion")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureManualWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureManualWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "sourcePlanInstanceId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
