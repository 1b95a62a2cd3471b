package mongo

import (
	"context"
	"errors"
	"time"

	"veloplan/training-app/internal/builder"
	"veloplan/training-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const draftCollectionName = "plan_drafts"

// draftDocument wraps a builder.State with its storage identity. The
// authoring state itself is an opaque value to this layer.
type draftDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CoachID   primitive.ObjectID `bson:"coachId"`
	DraftID   string             `bson:"draftId"`
	State     builder.State      `bson:"state"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// mongoDraftRepository implements repository.DraftRepository
type mongoDraftRepository struct {
	collection *mongo.Collection
}

// NewMongoDraftRepository creates a new plan-draft repository.
func NewMongoDraftRepository(db *mongo.Database) repository.DraftRepository {
	return &mongoDraftRepository{
		collection: db.Collection(draftCollectionName),
	}
}

// Put upserts the authoring state for a (coach, draft) pair.
func (r *mongoDraftRepository) Put(ctx context.Context, coachID primitive.ObjectID, draftID string, state builder.State) error {
	if coachID == primitive.NilObjectID || draftID == "" {
		return errors.New("coach ID and draft ID are required")
	}
	filter := bson.M{"coachId": coachID, "draftId": draftID}
	updateDoc := bson.M{
		"$set": bson.M{
			"state":     state,
			"updatedAt": time.Now().UTC(),
		},
		"$setOnInsert": bson.M{"coachId": coachID, "draftId": draftID},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, updateDoc, opts)
	return err
}

// Get loads the authoring state for a (coach, draft) pair.
func (r *mongoDraftRepository) Get(ctx context.Context, coachID primitive.ObjectID, draftID string) (*builder.State, error) {
	var doc draftDocument
	err := r.collection.FindOne(ctx, bson.M{"coachId": coachID, "draftId": draftID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc.State, nil
}

// Delete removes a stored draft.
func (r *mongoDraftRepository) Delete(ctx context.Context, coachID primitive.ObjectID, draftID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"coachId": coachID, "draftId": draftID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureDraftIndexes creates necessary indexes. Call during startup.
func EnsureDraftIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "draftId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
