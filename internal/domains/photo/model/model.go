package model

import (
	"time"
)

const (
	EntityName = "photo"

	DatabaseName   = "keepsake_photos"
	SchemaVersion  = 1
	CollectionName = "photos"
)

// Photo is the persisted record for the slot it occupies. Content is a data URL
// and is opaque to the store.
type Photo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	Caption    string    `json:"caption"`
	UploadedAt time.Time `json:"uploaded_at"`
}
