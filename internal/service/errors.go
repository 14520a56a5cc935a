package service

import "errors"

// Sentinel errors shared by the service layer. Handlers map them onto HTTP
// status codes; detail travels in the wrapping message.
var (
	ErrValidation        = errors.New("validation")         // 400
	ErrUnauthorized      = errors.New("unauthorized")       // 403
	ErrNotFound          = errors.New("not found")          // 404
	ErrConflict          = errors.New("conflict")           // 409
	ErrUnavailable       = errors.New("item unavailable")   // 400
	ErrInsufficientStock = errors.New("insufficient stock") // 400
)
