package poseimageRepo

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

// MongoPoseImageRepo implements Repository using MongoDB.
type MongoPoseImageRepo struct {
	coll *mongo.Collection
}

// NewMongoPoseImageRepo creates a new instance of Repository using MongoDB.
func NewMongoPoseImageRepo() Repository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("pose_images")
	repo := &MongoPoseImageRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create pose image indexes: %v\n", err)
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoPoseImageRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "storageType", Value: 1}, {Key: "createdAt", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new pose image document.
func (r *MongoPoseImageRepo) Create(ctx context.Context, img *models.PoseImage) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	img.CreatedAt = now
	img.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, img); err != nil {
		return fmt.Errorf("failed to create pose image: %w", err)
	}
	return nil
}

// GetByID retrieves a pose image by its unique ID.
func (r *MongoPoseImageRepo) GetByID(ctx context.Context, id string) (*models.PoseImage, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var img models.PoseImage
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&img); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("pose image with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch pose image with id %s: %w", id, err)
	}
	return &img, nil
}

// Delete removes a pose image document by its ID.
func (r *MongoPoseImageRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete pose image with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("pose image with id %s not found", id)
	}
	return nil
}

// ListByUser retrieves all pose images owned by the given user.
func (r *MongoPoseImageRepo) ListByUser(ctx context.Context, userID string) ([]models.PoseImage, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list pose images for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var images []models.PoseImage
	if err := cursor.All(ctx, &images); err != nil {
		return nil, fmt.Errorf("failed to decode pose images for user %s: %w", userID, err)
	}
	return images, nil
}

// ListLocal returns records still awaiting reconciliation, oldest first.
func (r *MongoPoseImageRepo) ListLocal(ctx context.Context, limit int) ([]models.PoseImage, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"storageType": models.StorageLocal}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list local pose images: %w", err)
	}
	defer cursor.Close(ctx)

	var images []models.PoseImage
	if err := cursor.All(ctx, &images); err != nil {
		return nil, fmt.Errorf("failed to decode local pose images: %w", err)
	}
	return images, nil
}

// PromoteFromLocal performs the guarded transition out of LOCAL placement.
func (r *MongoPoseImageRepo) PromoteFromLocal(ctx context.Context, id, cloudID, url string, keepLocal bool) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"cloudflareId": cloudID,
		"url":          url,
		"isOffline":    false,
		"updatedAt":    time.Now(),
	}
	update := bson.M{"$set": set}
	if keepLocal {
		set["storageType"] = models.StorageHybrid
	} else {
		set["storageType"] = models.StorageCloud
		update["$unset"] = bson.M{"localStorageId": ""}
	}

	filter := bson.M{"id": id, "storageType": models.StorageLocal}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to promote pose image %s: %w", id, err)
	}
	return result.MatchedCount == 1, nil
}
