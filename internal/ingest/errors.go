package ingest

import "errors"

var (
	// ErrInvalidInput is returned for a missing, empty or non-spreadsheet upload.
	// No store call has been made when it is returned.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageRead marks a failed existence probe. It is logged, never returned.
	ErrStorageRead = errors.New("storage read failed")

	// ErrStorageArchive marks a failed move of the previous canonical object.
	// It is logged and reported in Result, never returned.
	ErrStorageArchive = errors.New("storage archive failed")

	// ErrStorageWrite is returned when the canonical object could not be written.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrPipelineTrigger marks a failed pipeline notification. It is reported in
	// Result, never returned.
	ErrPipelineTrigger = errors.New("pipeline trigger failed")

	// ErrLockUnavailable is returned when the canonical path could not be locked in time.
	ErrLockUnavailable = errors.New("canonical object is locked by another upload")
)
