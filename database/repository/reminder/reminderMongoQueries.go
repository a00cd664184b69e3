package reminderRepo

import (
	"context"
	"fmt"
	"time"

	"yogatrack/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListByUser retrieves all reminders owned by the given user.
func (r *MongoReminderRepo) ListByUser(ctx context.Context, userID string) ([]models.Reminder, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var reminders []models.Reminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders for user %s: %w", userID, err)
	}
	return reminders, nil
}

// ListEnabled returns one page of enabled reminders in id order, starting
// after afterID. The returned cursor is the last id of a full page and ""
// once the scan is exhausted.
func (r *MongoReminderRepo) ListEnabled(ctx context.Context, afterID string, limit int) ([]models.Reminder, string, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"enabled": true}
	if afterID != "" {
		filter["id"] = bson.M{"$gt": afterID}
	}
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}}).SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list enabled reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var page []models.Reminder
	if err := cursor.All(ctx, &page); err != nil {
		return nil, "", fmt.Errorf("failed to decode enabled reminders: %w", err)
	}

	next := ""
	if len(page) == limit {
		next = page[len(page)-1].ID
	}
	return page, next, nil
}

// CommitLastSent performs the conditional update that marks an occurrence
// handled. The filter carries the previously observed lastSent so that of
// two overlapping dispatch runs only one can match.
func (r *MongoReminderRepo) CommitLastSent(ctx context.Context, id string, prev *time.Time, next time.Time) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	if prev == nil {
		filter["lastSent"] = nil
	} else {
		filter["lastSent"] = *prev
	}
	update := bson.M{"$set": bson.M{"lastSent": next, "updatedAt": time.Now()}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to commit lastSent for reminder %s: %w", id, err)
	}
	return result.MatchedCount == 1, nil
}
