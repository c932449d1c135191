package services

import "errors"

// Domain failures surfaced to handlers. Every one of these becomes a
// structured {success:false} response, never a transport error.
var (
	ErrInvalidImage   = errors.New("invalid image payload")
	ErrNoFaceDetected = errors.New("no face detected")
)
