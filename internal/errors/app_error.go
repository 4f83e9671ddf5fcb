package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeDatabaseError   = "DATABASE_ERROR"
	ErrCodeDuplicateEntry  = "DUPLICATE_ENTRY"
	ErrCodeThirdPartyError = "THIRD_PARTY_ERROR"

	ErrCodeCatalogMismatch = "CATALOG_MISMATCH"
	ErrCodeCouponRejected  = "COUPON_REJECTED"
	ErrCodeNotDeliverable  = "NOT_DELIVERABLE"
	ErrCodePaymentGateway  = "PAYMENT_GATEWAY_ERROR"
)

// Coupon rejection reasons carried in AppError.Detail.
const (
	CouponReasonNotFound     = "not_found"
	CouponReasonExpired      = "expired"
	CouponReasonLimitReached = "limit_reached"
	CouponReasonBelowMinimum = "below_minimum"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, http.StatusForbidden)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, http.StatusInternalServerError)
}

func DuplicateEntryError(message string) *AppError {
	return NewAppError(ErrCodeDuplicateEntry, message, http.StatusConflict)
}

func ThirdPartyError(message string) *AppError {
	return NewAppError(ErrCodeThirdPartyError, message, http.StatusInternalServerError)
}

// CatalogMismatchError signals that the cart references a product or variant
// that the catalog no longer offers.
func CatalogMismatchError(message string) *AppError {
	return NewAppError(ErrCodeCatalogMismatch, message, http.StatusConflict)
}

// CouponRejectedError carries the machine-readable rejection reason in Detail.
func CouponRejectedError(reason, message string) *AppError {
	return NewAppError(ErrCodeCouponRejected, message, http.StatusUnprocessableEntity).WithDetail(reason)
}

func NotDeliverableError(message string) *AppError {
	return NewAppError(ErrCodeNotDeliverable, message, http.StatusUnprocessableEntity)
}

func PaymentGatewayError(message string) *AppError {
	return NewAppError(ErrCodePaymentGateway, message, http.StatusBadGateway)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason))
}
