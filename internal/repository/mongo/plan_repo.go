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

const planCollectionName = "plan_instances"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new PlanInstance repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new plan instance.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.PlanInstance) (primitive.ObjectID, error) {
	if plan.AthleteID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires athleteId and name")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.Status == "" {
		plan.Status = domain.PlanStatusActive
	}
	plan.Version = 1

	// Embedded workouts need stable ids before first write.
	for wi := range plan.Weeks {
		for day := range plan.Weeks[wi].Workouts {
			workouts := plan.Weeks[wi].Workouts[day]
			for i := range workouts {
				if workouts[i].ID.IsZero() {
					workouts[i].ID = primitive.NewObjectID()
				}
			}
		}
	}

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single plan instance by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanInstance, error) {
	var plan domain.PlanInstance
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByAthleteID retrieves all plan instances for an athlete, newest
// first.
func (r *mongoPlanRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.PlanInstance, error) {
	return r.find(ctx, bson.M{"athleteId": athleteID})
}

// GetActiveByAthlete retrieves the athlete's active plans whose start
// date is on or before the given date. This is the candidate set the
// auto-matcher scans.
func (r *mongoPlanRepository) GetActiveByAthlete(ctx context.Context, athleteID primitive.ObjectID, onOrAfterStart string) ([]domain.PlanInstance, error) {
	day, err := time.Parse("2006-01-02", onOrAfterStart)
	if err != nil {
		return nil, err
	}
	filter := bson.M{
		"athleteId": athleteID,
		"status":    domain.PlanStatusActive,
		"startDate": bson.M{"$lte": day.Add(24*time.Hour - time.Second)},
	}
	return r.find(ctx, filter)
}

func (r *mongoPlanRepository) find(ctx context.Context, filter bson.M) ([]domain.PlanInstance, error) {
	var plans []domain.PlanInstance
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

// UpdateOverrides replaces the plan's override layer, conditioned on the
// version the caller read. A MatchedCount of zero against an existing
// plan means another writer got there first.
func (r *mongoPlanRepository) UpdateOverrides(ctx context.Context, planID primitive.ObjectID, overrides domain.OverrideLayer, expectedVersion int64) error {
	filter := bson.M{"_id": planID, "version": expectedVersion}
	updateDoc := bson.M{
		"$set": bson.M{
			"overrides": overrides,
			"updatedAt": time.Now().UTC(),
		},
		"$inc": bson.M{"version": int64(1)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing plan from a lost race.
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": planID})
		if countErr == nil && count > 0 {
			return repository.ErrVersionConflict
		}
		return repository.ErrNotFound
	}
	return nil
}

// UpdateStatus transitions a plan's lifecycle status.
func (r *mongoPlanRepository) UpdateStatus(ctx context.Context, planID primitive.ObjectID, status domain.PlanStatus) error {
	filter := bson.M{"_id": planID}
	updateDoc := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main matcher query: active plans for an athlete by start date.
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "status", Value: 1}, {Key: "startDate", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
