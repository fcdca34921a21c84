package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/roomledger/internal/auth/token"
	electricitydomain "github.com/smallbiznis/roomledger/internal/electricity/domain"
	landlorddomain "github.com/smallbiznis/roomledger/internal/landlord/domain"
	paymentdomain "github.com/smallbiznis/roomledger/internal/payment/domain"
	propertydomain "github.com/smallbiznis/roomledger/internal/property/domain"
	reportdomain "github.com/smallbiznis/roomledger/internal/report/domain"
	roomdomain "github.com/smallbiznis/roomledger/internal/room/domain"
	tenantdomain "github.com/smallbiznis/roomledger/internal/tenant/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInternal        = errors.New("internal_error")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrTooManyRequests = errors.New("too_many_requests")
)

// notFoundMessages names the missing entity in 404 responses.
var notFoundMessages = []struct {
	err     error
	message string
}{
	{landlorddomain.ErrNotFound, "Landlord not found"},
	{propertydomain.ErrNotFound, "Property not found"},
	{roomdomain.ErrNotFound, "Room not found"},
	{tenantdomain.ErrNotFound, "Tenant not found"},
	{tenantdomain.ErrNoTenantForRoom, "No active tenant found for this room"},
	{paymentdomain.ErrNotFound, "Payment not found"},
	{electricitydomain.ErrNotFound, "Electricity reading not found"},
	{reportdomain.ErrNoRooms, "No rooms found for this property"},
}

// badRequestMessages covers uniqueness and business-rule violations.
var badRequestMessages = []struct {
	err     error
	message string
}{
	{landlorddomain.ErrEmailExists, "Email already registered"},
	{roomdomain.ErrRoomNumberExists, "Room number already exists in this property"},
	{tenantdomain.ErrRoomOccupied, "Room is already occupied"},
	{tenantdomain.ErrRoomPropertyMismatch, "Room does not belong to this property"},
	{tenantdomain.ErrDocumentTooLarge, "Document exceeds the maximum upload size"},
	{tenantdomain.ErrTooManyDocuments, "Too many documents"},
	{paymentdomain.ErrTenantNotInRoom, "Tenant is not assigned to this room"},
	{paymentdomain.ErrDuplicatePeriod, "Payment already exists for this tenant, room and period"},
	{electricitydomain.ErrReadingDecreased, "Current reading cannot be less than last reading"},
	{electricitydomain.ErrEmptyBatch, "No readings provided"},
}

var validationCodes = []error{
	ErrInvalidRequest,
	landlorddomain.ErrInvalidUsername,
	landlorddomain.ErrInvalidEmail,
	landlorddomain.ErrInvalidMobileNumber,
	landlorddomain.ErrInvalidPassword,
	propertydomain.ErrInvalidPropertyName,
	propertydomain.ErrInvalidAddress,
	roomdomain.ErrInvalidRoomNumber,
	roomdomain.ErrInvalidRate,
	tenantdomain.ErrInvalidName,
	tenantdomain.ErrInvalidEmail,
	tenantdomain.ErrInvalidMobileNumber,
	tenantdomain.ErrInvalidTotalPerson,
	tenantdomain.ErrInvalidMoveInDate,
	tenantdomain.ErrInvalidDocument,
	paymentdomain.ErrInvalidMonth,
	paymentdomain.ErrInvalidYear,
	paymentdomain.ErrInvalidAmount,
	electricitydomain.ErrInvalidRoomNumber,
	electricitydomain.ErrInvalidReading,
	electricitydomain.ErrInvalidRate,
	electricitydomain.ErrInvalidMonth,
	electricitydomain.ErrInvalidYear,
	reportdomain.ErrInvalidMonth,
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func invalidIDError(field string) error {
	return newValidationError(field, "invalid_"+field, "invalid "+field)
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if code, ok := validationErrorCode(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	for _, m := range notFoundMessages {
		if errors.Is(err, m.err) {
			return http.StatusNotFound, errorPayload{Type: "not_found", Message: m.message}
		}
	}
	for _, m := range badRequestMessages {
		if errors.Is(err, m.err) {
			return http.StatusBadRequest, errorPayload{Type: "bad_request", Message: m.message}
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, token.ErrInvalidToken):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, landlorddomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "Invalid credentials",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "Too many login attempts, try again later",
		}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog returns the error type and code recorded on the
// request log line.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	switch {
	case len(payload.Errors) > 0:
		return payload.Type, payload.Errors[0].Code
	case payload.Type == "internal_error":
		return payload.Type, "internal_error"
	default:
		return payload.Type, err.Error()
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func validationErrorCode(err error) (string, bool) {
	for _, target := range validationCodes {
		if errors.Is(err, target) {
			return target.Error(), true
		}
	}
	return "", false
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid " + strings.ReplaceAll(validationErrorField(code), "_", " ")
	}
}
