package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AudiobookCategory groups books on the catalog tabs
type AudiobookCategory string

const (
	AudiobookCategorySelfHelp      AudiobookCategory = "self-help"
	AudiobookCategoryBusiness      AudiobookCategory = "business"
	AudiobookCategoryRelationships AudiobookCategory = "relationships"
)

// ValidAudiobookCategories returns all valid AudiobookCategory values
func ValidAudiobookCategories() []AudiobookCategory {
	return []AudiobookCategory{
		AudiobookCategorySelfHelp,
		AudiobookCategoryBusiness,
		AudiobookCategoryRelationships,
	}
}

// IsValid checks if the AudiobookCategory value is one of the predefined constants
func (c AudiobookCategory) IsValid() bool {
	for _, validCategory := range ValidAudiobookCategories() {
		if c == validCategory {
			return true
		}
	}
	return false
}

// Audiobook holds the structure for the audiobooks collection in mongo
type Audiobook struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Author          string             `bson:"author,omitempty" json:"author,omitempty"`
	Narrator        string             `bson:"narrator,omitempty" json:"narrator,omitempty"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Category        AudiobookCategory  `bson:"category" json:"category"`
	CoverImageURL   string             `bson:"coverImageUrl,omitempty" json:"coverImageUrl,omitempty"`
	AudioURL        string             `bson:"audioUrl,omitempty" json:"audioUrl,omitempty"`
	DurationMinutes int                `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	Premium         bool               `bson:"premium" json:"premium"`
	Featured        bool               `bson:"featured" json:"featured"`
	ListenCount     int64              `bson:"listenCount" json:"listenCount"`
	CreatedAt       primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt       primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}
