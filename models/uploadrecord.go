package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IngestState represents the standardized ingestion states of an upload record
type IngestState string

// Predefined IngestState values
const (
	IngestStatePending  IngestState = "PENDING"
	IngestStateIngested IngestState = "INGESTED"
	IngestStateFailed   IngestState = "FAILED"
)

// IsValid checks if the IngestState value is one of the predefined constants
func (s IngestState) IsValid() bool {
	switch s {
	case IngestStatePending, IngestStateIngested, IngestStateFailed:
		return true
	}
	return false
}

// UploadRecord holds the structure for the uploadRecords collection in mongo.
// A record is written when a multipart session is started and updated when it
// completes or aborts; completed-but-uningested records are the retry targets
// for the ingestion path and stale started records are reaped by the
// scheduler.
type UploadRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UploadID     string             `bson:"uploadId" json:"uploadId"`
	Key          string             `bson:"key" json:"key"`
	Filename     string             `bson:"filename" json:"filename"`
	Completed    bool               `bson:"completed" json:"completed"`
	Aborted      bool               `bson:"aborted" json:"aborted"`
	IngestState  IngestState        `bson:"ingestState" json:"ingestState"`
	VideoID      string             `bson:"videoId,omitempty" json:"videoId,omitempty"`
	ThumbnailURL string             `bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	CreatedAt    primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt    primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}
