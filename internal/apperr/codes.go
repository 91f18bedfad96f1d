package apperr

import "net/http"

// Reservation rules.
var (
	ErrLeadTimeViolation = &Error{Kind: KindValidation, Code: "LEAD_TIME_VIOLATION", HTTPStatus: http.StatusBadRequest,
		Message: "Reservation time must be at least 30 minutes ahead of the current time"}
	ErrPastDateViolation = &Error{Kind: KindValidation, Code: "PAST_DATE_VIOLATION", HTTPStatus: http.StatusBadRequest,
		Message: "Reservation date cannot be in the past"}
	ErrSlotConflict        = New(KindConflict, "SLOT_CONFLICT", "Doctor already has an appointment at this time")
	ErrInvalidTransition   = New(KindState, "INVALID_TRANSITION", "reservation status does not allow this action")
	ErrReservationNotFound = New(KindNotFound, "RESERVATION_NOT_FOUND", "reservation not found")
	ErrDoctorNotFound      = New(KindNotFound, "DOCTOR_NOT_FOUND", "doctor not found")
	ErrDoctorInactive      = New(KindState, "DOCTOR_INACTIVE", "Doctor is not active")
	ErrPatientNotFound     = New(KindNotFound, "PATIENT_NOT_FOUND", "patient not found")
	ErrPageOutOfRange      = New(KindNotFound, "PAGE_OUT_OF_RANGE", "This page does not exist")
)

// Authentication and authorization.
var (
	ErrUnauthorized           = New(KindUnauthorized, "UNAUTHORIZED", "Unauthorized: token not found")
	ErrInvalidToken           = New(KindUnauthorized, "INVALID_TOKEN", "Invalid token")
	ErrInvalidCredentials     = New(KindUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	ErrPasswordChangeRequired = New(KindForbidden, "PASSWORD_CHANGE_REQUIRED", "please change your system generated password")
	ErrForbidden              = New(KindForbidden, "FORBIDDEN", "Forbidden: you don't have rights to perform this action")
	ErrTokenExpired           = &Error{Kind: KindUnauthorized, Code: "TOKEN_EXPIRED", HTTPStatus: http.StatusBadRequest,
		Message: "token has expired"}
	// ErrInvalidCode is ErrInvalidToken answered with 400, for one-time codes.
	ErrInvalidCode = &Error{Kind: KindUnauthorized, Code: "INVALID_TOKEN", HTTPStatus: http.StatusBadRequest,
		Message: "invalid token"}
	ErrAlreadyVerified = New(KindState, "ALREADY_VERIFIED", "account already verified")
	ErrAlreadyRotated  = New(KindState, "PASSWORD_ALREADY_CHANGED", "System generated password has been changed already")
)

// Accounts and inventory.
var (
	ErrEmailTaken      = New(KindConflict, "EMAIL_TAKEN", "email already exist")
	ErrPhoneTaken      = New(KindConflict, "PHONE_TAKEN", "phone already exist")
	ErrAccountNotFound = New(KindNotFound, "ACCOUNT_NOT_FOUND", "account not found")
	ErrProductNotFound = New(KindNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	ErrProductExists   = New(KindConflict, "PRODUCT_EXISTS", "product already exists")
)
