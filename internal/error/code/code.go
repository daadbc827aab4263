package code

// HTTP status codes.
const (
	// StatusOK - 200: success.
	StatusOK = 200
	// StatusBadRequest - 400: invalid request parameters.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: not authenticated.
	StatusUnauthorized = 401
	// StatusForbidden - 403: access denied.
	StatusForbidden = 403
	// StatusNotFound - 404: resource does not exist.
	StatusNotFound = 404
	// StatusUnprocessable - 422: request understood but rejected.
	StatusUnprocessable = 422
	// StatusTooManyRequests - 429: too many requests.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: internal server error.
	StatusInternalServerError = 500
)

// Generic error codes (100xxx).
const (
	// ErrSuccess - 200: success.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: unknown error.
	ErrUnknown
	// ErrBind - 400: request body binding error.
	ErrBind
	// ErrValidation - 400: request validation error.
	ErrValidation
	// ErrTokenInvalid - 401: invalid token.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: request rate too high.
	ErrTooManyRequests
)

// User error codes (101xxx).
const (
	// ErrUserNotFound - 404: user does not exist.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 400: user already exists.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: wrong password.
	ErrUserPasswordIncorrect
)

// Weather error codes (102xxx).
const (
	// ErrWeatherUnavailable - 500: every weather provider failed.
	ErrWeatherUnavailable int = iota + 102000
	// ErrForecastUnavailable - 500: forecast data unavailable.
	ErrForecastUnavailable
)

// Crop and zone error codes (103xxx).
const (
	// ErrCropNotFound - 404: crop does not exist.
	ErrCropNotFound int = iota + 103000
	// ErrCropTypeUnknown - 400: crop type is not in the ontology.
	ErrCropTypeUnknown
	// ErrZoneHealthFailed - 500: zone health calculation failed.
	ErrZoneHealthFailed
)

// AI advisory error codes (104xxx).
const (
	// ErrLowConfidence - 422: image confidence below the diagnosis gate.
	ErrLowConfidence int = iota + 104000
	// ErrAdviceRejected - 422: recommendation rejected by governance.
	ErrAdviceRejected
	// ErrVisionFailed - 500: vision analysis failed.
	ErrVisionFailed
)

// Database error codes (105xxx).
const (
	// ErrDatabase - 500: database error.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: record does not exist.
	ErrRecordNotFound
)
