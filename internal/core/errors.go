package core

import "errors"

var (
	// ErrValidation is returned by CatalogEditor.Submit when the draft is
	// not fit to be persisted. The draft is left intact.
	ErrValidation = errors.New("workflow validation failed")

	// ErrNotFound is returned when a workflow id is not in the catalog.
	ErrNotFound = errors.New("workflow not found")

	// ErrSaveFailed wraps a slot write failure. The in-memory catalog
	// already holds the change.
	ErrSaveFailed = errors.New("catalog could not be saved")

	// ErrDuplicateID is returned by CatalogStore.Insert when the id is
	// already in the catalog.
	ErrDuplicateID = errors.New("workflow id already exists")

	// ErrInvalidField is returned by CatalogEditor.SetField for unknown
	// field names and values the field cannot hold.
	ErrInvalidField = errors.New("invalid field value")

	// ErrNotImage is delivered by CatalogEditor.IngestImageFile when the
	// payload is not an image.
	ErrNotImage = errors.New("file is not an image")

	// ErrAssistantBusy is reported when a turn is sent while another is in
	// flight.
	ErrAssistantBusy = errors.New("assistant is busy")
)
