package models

import "time"

// Relation links a document to an activity. Rows are keyed by the
// (documentId, activityId) pair; the link operation keeps the pair unique.
type Relation struct {
	ID         string    `bson:"_id" json:"_id"`
	DocumentID string    `bson:"documentId" json:"documentId"`
	ActivityID string    `bson:"activityId" json:"activityId"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// ShareCode grants unauthenticated read access to one activity's entry scene
// until ExpiresAt. The code string itself is the capability.
type ShareCode struct {
	ID         string    `bson:"_id" json:"_id"`
	ShareCode  string    `bson:"shareCode" json:"shareCode"`
	ActivityID string    `bson:"activityId" json:"activityId"`
	ExpiresAt  time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
