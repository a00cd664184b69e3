package models

import "time"

// UserData is the account record owning reminders, push subscriptions and
// pose images. Tz is the IANA zone name all of the user's wall-clock
// scheduling is evaluated in.
type UserData struct {
	ID        string    `json:"id" bson:"id"`
	Email     string    `json:"email" bson:"email"`
	Name      string    `json:"name" bson:"name"`
	Tz        string    `json:"tz" bson:"tz"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
