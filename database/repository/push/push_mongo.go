package pushRepo

import (
	"context"
	"fmt"
	"time"

	"yogatrack/database"
	"yogatrack/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPushRepo implements Repository using MongoDB.
type MongoPushRepo struct {
	coll *mongo.Collection
}

// NewMongoPushRepo creates a new instance of Repository using MongoDB.
func NewMongoPushRepo() Repository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("push_subscriptions")
	repo := &MongoPushRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create push subscription indexes: %v\n", err)
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

// ensureIndexes creates the unique endpoint index; a browser subscription
// cannot belong to two users at once.
func (r *MongoPushRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "endpoint", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Save upserts a subscription keyed by endpoint.
func (r *MongoPushRepo) Save(ctx context.Context, sub *models.PushSubscription) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	filter := bson.M{"endpoint": sub.Endpoint}
	update := bson.M{
		"$set": bson.M{
			"userId": sub.UserID,
			"p256dh": sub.P256dh,
			"auth":   sub.Auth,
		},
		"$setOnInsert": bson.M{
			"id":        sub.ID,
			"endpoint":  sub.Endpoint,
			"createdAt": sub.CreatedAt,
		},
	}

	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}
	return nil
}

// ListByUser retrieves all subscriptions owned by the given user.
func (r *MongoPushRepo) ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var subs []models.PushSubscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("failed to decode push subscriptions for user %s: %w", userID, err)
	}
	return subs, nil
}

// DeleteByEndpoint removes a subscription. Used when the push service
// reports the endpoint gone or the user revokes.
func (r *MongoPushRepo) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"endpoint": endpoint}); err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}
