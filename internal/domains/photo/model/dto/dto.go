package dto

import (
	"io"
	"keepsake/internal/domains/photo/model"
	"keepsake/internal/domains/photo/slot"
	"keepsake/shared/base64"
	"keepsake/shared/constant"
	"keepsake/shared/timezone"
	"time"
)

type UploadPhotoRequest struct {
	SlotID      string    `json:"slot_id"      validate:"required"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type" validate:"required,mimeprefix=image/"`
	Size        int64     `json:"size"         validate:"gt=0,maxfilesize=5"`
	File        io.Reader `json:"-"            swaggerignore:"true" validate:"-"`
}

// ToModel builds the record for a finished encoding. The caption is captured
// from the slot so later registry changes do not alter stored records.
func (r *UploadPhotoRequest) ToModel(def slot.Definition, content string, uploadedAt time.Time) model.Photo {
	name := r.FileName
	if name == constant.Empty {
		name = def.Caption
	}

	return model.Photo{
		ID:         def.ID,
		Name:       name,
		Content:    content,
		Caption:    def.Caption,
		UploadedAt: uploadedAt,
	}
}

type PhotoResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Caption     string `json:"caption"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Content     string `json:"content,omitempty"`
	UploadedAt  string `json:"uploaded_at"`
}

func (r *PhotoResponse) FromModel(photo model.Photo, withContent bool) {
	r.ID = photo.ID
	r.Name = photo.Name
	r.Caption = photo.Caption
	r.ContentType = base64.GetContentType(photo.Content)
	r.Size = len(photo.Content)
	r.UploadedAt = timezone.ToAppTime(photo.UploadedAt).Format(constant.DateFormat)

	if withContent {
		r.Content = photo.Content
	}
}

type GetPhotosResponse struct {
	Photos    []PhotoResponse `json:"photos"`
	TotalData int             `json:"total_data"`
}

func (r *GetPhotosResponse) FromModels(photos []model.Photo, withContent bool) {
	r.TotalData = len(photos)

	r.Photos = make([]PhotoResponse, len(photos))
	for i, p := range photos {
		r.Photos[i].FromModel(p, withContent)
	}
}

type SlotResponse struct {
	ID          string `json:"id"`
	Caption     string `json:"caption"`
	State       string `json:"state"`
	Image       string `json:"image"`
	Placeholder bool   `json:"placeholder"`
	Name        string `json:"name,omitempty"`
	UploadedAt  string `json:"uploaded_at,omitempty"`
}

type GalleryResponse struct {
	Slots    []SlotResponse `json:"slots"`
	Occupied int            `json:"occupied"`
	Total    int            `json:"total"`
}

type ImageResponse struct {
	Found       bool
	ContentType string
	Data        []byte
	Fallback    string
}

type StatusResponse struct {
	Available     bool     `json:"available"`
	Error         string   `json:"error,omitempty"`
	Count         int      `json:"count"`
	HasPhotos     bool     `json:"has_photos"`
	StoredBytes   int64    `json:"stored_bytes"`
	StoredSize    string   `json:"stored_size"`
	OccupiedSlots []string `json:"occupied_slots"`
	Loaded        bool     `json:"loaded"`
}
