package reminderRepo

import (
	"context"
	"fmt"
	"time"

	"yogatrack/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new reminder document.
func (r *MongoReminderRepo) Create(ctx context.Context, rem *models.Reminder) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	rem.CreatedAt = now
	rem.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, rem)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

// GetByID retrieves a reminder by its unique ID.
func (r *MongoReminderRepo) GetByID(ctx context.Context, id string) (*models.Reminder, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var rem models.Reminder
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&rem); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("reminder with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch reminder with id %s: %w", id, err)
	}
	return &rem, nil
}

// Update modifies the user-editable fields of an existing reminder document.
// lastSent is deliberately excluded; only CommitLastSent writes it.
func (r *MongoReminderRepo) Update(ctx context.Context, rem *models.Reminder) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	rem.UpdatedAt = time.Now()
	filter := bson.M{"id": rem.ID, "userId": rem.UserID}
	update := bson.M{"$set": bson.M{
		"timeOfDay":                 rem.TimeOfDay,
		"days":                      rem.Days,
		"enabled":                   rem.Enabled,
		"message":                   rem.Message,
		"emailNotificationsEnabled": rem.EmailNotificationsEnabled,
		"updatedAt":                 rem.UpdatedAt,
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update reminder with id %s: %w", rem.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("reminder with id %s not found", rem.ID)
	}
	return nil
}

// Delete removes a reminder document by its ID.
func (r *MongoReminderRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete reminder with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("reminder with id %s not found", id)
	}
	return nil
}
