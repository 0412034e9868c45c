package registration

import "fmt"

type ErrorReason string

const (
	REASON_INVALID_FIELD                   ErrorReason = "INVALID_FIELD"
	REASON_CAMP_FULL                       ErrorReason = "CAMP_FULL"
	REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL ErrorReason = "FAILED_TO_TRANSLATE_TO_DB_MODEL"
	REASON_FAILED_TO_WRITE                 ErrorReason = "FAILED_TO_WRITE"
	REASON_FAILED_TO_FETCH                 ErrorReason = "FAILED_TO_FETCH"
	REASON_FAILED_TO_PRICE                 ErrorReason = "FAILED_TO_PRICE"
	REASON_INVALID_CURSOR                  ErrorReason = "INVALID_CURSOR"
	REASON_DELIVERY_FAILED                 ErrorReason = "DELIVERY_FAILED"
	REASON_TIMEOUT                         ErrorReason = "TIMEOUT"
)

type Error struct {
	Reason ErrorReason

	// Field names the first form field that failed validation.
	// Only set for REASON_INVALID_FIELD.
	Field string

	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s. Cause: %s", e.Reason, e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s. Cause: %s", e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newRegistrationError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewInvalidFieldError(field string, message string) *Error {
	return &Error{
		Reason:  REASON_INVALID_FIELD,
		Field:   field,
		Message: message,
	}
}

func NewCampFullError(campName string) *Error {
	return newRegistrationError(REASON_CAMP_FULL, fmt.Sprintf("Das Camp %q ist bereits ausgebucht", campName), nil)
}

func NewFailedToWriteError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_WRITE, message, cause)
}

func NewFailedToTranslateToDBModelError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL, message, cause)
}

func NewFailedToFetchError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_FETCH, message, cause)
}

func NewFailedToPriceError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_PRICE, message, cause)
}

func NewInvalidCursorError(message string, cause error) *Error {
	return newRegistrationError(REASON_INVALID_CURSOR, message, cause)
}

func NewDeliveryFailedError(message string, cause error) *Error {
	return newRegistrationError(REASON_DELIVERY_FAILED, message, cause)
}

func NewTimeoutError(message string) *Error {
	return newRegistrationError(REASON_TIMEOUT, message, nil)
}
