package code

// Error code to message mapping
var codeMessageMap = map[int]string{
	// Generic
	ErrSuccess:         "success",
	ErrUnknown:         "unknown error",
	ErrBind:            "request binding error",
	ErrValidation:      "request validation error",
	ErrTokenInvalid:    "invalid authentication token",
	ErrTooManyRequests: "too many requests",

	// User
	ErrUserNotFound:          "user does not exist",
	ErrUserAlreadyExist:      "user already exists",
	ErrUserPasswordIncorrect: "incorrect password",

	// Weather
	ErrWeatherUnavailable:  "unable to fetch weather data from any source",
	ErrForecastUnavailable: "forecast data unavailable",

	// Crop and zone
	ErrCropNotFound:     "crop does not exist",
	ErrCropTypeUnknown:  "unsupported crop type",
	ErrZoneHealthFailed: "zone health calculation failed",

	// AI advisory
	ErrLowConfidence:  "image quality too low for reliable diagnosis",
	ErrAdviceRejected: "recommendation rejected by governance",
	ErrVisionFailed:   "vision analysis failed",

	// Database
	ErrDatabase:       "database error",
	ErrRecordNotFound: "record does not exist",
}

// Error code to HTTP status mapping
var codeStatusMap = map[int]int{
	// Generic
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,

	// User
	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusBadRequest,
	ErrUserPasswordIncorrect: StatusUnauthorized,

	// Weather
	ErrWeatherUnavailable:  StatusInternalServerError,
	ErrForecastUnavailable: StatusInternalServerError,

	// Crop and zone
	ErrCropNotFound:     StatusNotFound,
	ErrCropTypeUnknown:  StatusBadRequest,
	ErrZoneHealthFailed: StatusInternalServerError,

	// AI advisory
	ErrLowConfidence:  StatusUnprocessable,
	ErrAdviceRejected: StatusUnprocessable,
	ErrVisionFailed:   StatusInternalServerError,

	// Database
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage returns the message for an error code
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "unknown error"
}

// GetStatus returns the HTTP status for an error code
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
