package models

import "time"

// PushSubscription is one browser's Web Push registration. Endpoint is
// globally unique; P256dh and Auth are the encryption key material the push
// service requires.
type PushSubscription struct {
	ID        string    `json:"id" bson:"id"`
	UserID    string    `json:"userId" bson:"userId"`
	Endpoint  string    `json:"endpoint" bson:"endpoint"`
	P256dh    string    `json:"p256dh" bson:"p256dh"`
	Auth      string    `json:"auth" bson:"auth"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
