package apierr

import (
	"errors"
	"net/http"
	"sync"

	"github.com/mcoot/boardbank/internal/api/response"
	"github.com/mcoot/boardbank/internal/model"
	"github.com/mcoot/boardbank/internal/msgcat"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInvalidUsername   = "INVALID_USERNAME"
	CodeSessionInvalid    = "SESSION_INVALID"
	CodeGameNotFound      = "GAME_NOT_FOUND"
	CodeGameNotJoinable   = "GAME_NOT_JOINABLE"
	CodeNotHost           = "NOT_HOST"
	CodeInvalidGameState  = "INVALID_GAME_STATE"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeInvalidAmount     = model.CodeInvalidAmount
	CodeInsufficientFunds = model.CodeInsufficientFunds
	CodeUnauthorized      = model.CodeUnauthorized
	CodePassGoRateLimit   = model.CodePassGoRateLimit
)

// Classified is the transport-neutral description of an error
type Classified struct {
	Status  int
	Code    string
	Reason  string
	Params  map[string]any
	Message string // Fallback text when the catalog has no entry
	Literal bool   // Message was supplied by the caller and bypasses the catalog
}

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

var defaultCatalog = sync.OnceValue(msgcat.Default)

// Classify maps any error to a status, code and fallback message
func Classify(err error) Classified {
	var he *httpError
	if errors.As(err, &he) {
		return Classified{Status: he.status, Code: he.apiError.Code, Message: he.apiError.Message, Literal: true}
	}

	var te *model.TransactionError
	if errors.As(err, &te) {
		status := http.StatusUnprocessableEntity
		switch te.Code {
		case model.CodeUnauthorized:
			status = http.StatusForbidden
		case model.CodePassGoRateLimit:
			status = http.StatusTooManyRequests
		}
		return Classified{Status: status, Code: te.Code, Reason: te.Reason, Params: te.Params, Message: te.Error()}
	}

	switch {
	case errors.Is(err, model.ErrInvalidUsername):
		return Classified{Status: http.StatusBadRequest, Code: CodeInvalidUsername, Message: "Username is required"}
	case errors.Is(err, model.ErrSessionInvalid), errors.Is(err, model.ErrSessionNotFound):
		return Classified{Status: http.StatusUnauthorized, Code: CodeSessionInvalid, Message: "Invalid player session"}
	case errors.Is(err, model.ErrGameNotFound):
		return Classified{Status: http.StatusNotFound, Code: CodeGameNotFound, Message: "Game not found"}
	case errors.Is(err, model.ErrGameNotJoinable):
		return Classified{Status: http.StatusConflict, Code: CodeGameNotJoinable, Message: "Game is not accepting new players"}
	case errors.Is(err, model.ErrNotHost):
		return Classified{Status: http.StatusForbidden, Code: CodeNotHost, Message: "Only the host can perform this action"}
	case errors.Is(err, model.ErrInvalidGameState):
		return Classified{Status: http.StatusConflict, Code: CodeInvalidGameState, Message: "Game is not in the required state"}
	default:
		return Classified{Status: http.StatusInternalServerError, Code: CodeInternalError, Message: "Internal server error"}
	}
}

// Describe classifies err and renders its message from the catalog. A nil
// catalog uses the embedded default.
func Describe(catalog *msgcat.Catalog, err error) (int, APIError) {
	c := Classify(err)
	if c.Literal {
		return c.Status, APIError{Code: c.Code, Message: c.Message}
	}
	if catalog == nil {
		catalog = defaultCatalog()
	}
	return c.Status, APIError{
		Code:    c.Code,
		Message: catalog.Message(c.Code, c.Reason, c.Params, c.Message),
	}
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	status, apiErr := Describe(nil, err)
	response.JSON(w, status, ErrorResponse{Error: apiErr})
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewSessionRequiredError creates an error for a missing session token
func NewSessionRequiredError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeSessionInvalid, "Authentication required"}}
}

// NewRouteNotFoundError is returned for requests to unknown endpoints
func NewRouteNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeInvalidRequest, "No such endpoint"}}
}

// NewMethodNotAllowedError is returned when an endpoint exists but not for the method used
func NewMethodNotAllowedError() error {
	return &httpError{http.StatusMethodNotAllowed, APIError{CodeInvalidRequest, "Method not allowed"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
