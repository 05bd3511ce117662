package model

import "errors"

var (
	ErrStorageUnavailable = errors.New("photo storage unavailable")
	ErrStorageWrite       = errors.New("photo storage write failed")
	ErrStorageRead        = errors.New("photo storage read failed")
	ErrEncoding           = errors.New("photo encoding failed")
	ErrValidation         = errors.New("invalid photo")
	ErrSlotBusy           = errors.New("slot is busy")
	ErrSlotNotFound       = errors.New("slot not found")
	ErrPhotoNotFound      = errors.New("photo not found")
)
