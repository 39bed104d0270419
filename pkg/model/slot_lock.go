package model

import "time"

// SlotLock is an advisory lock held while a booking transaction for a
// staff/start slot is in flight. The _id encodes the slot coordinates,
// so a duplicate-key error on insert means another request is booking
// the same slot right now. Expired locks are reaped by a TTL index.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
