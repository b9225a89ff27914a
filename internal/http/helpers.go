package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/assembler"
	"github.com/mrlokans/pagescraper/internal/library"
	"github.com/mrlokans/pagescraper/internal/sites"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	zap.L().Error("internal error", zap.String("context", context), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError sends an error response with the given status code and code.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// respondDomainError maps library, classifier and assembler errors to status
// codes. Anything unrecognised is an internal error.
func respondDomainError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, library.ErrBookNotFound):
		respondError(c, http.StatusNotFound, "book_not_found", err.Error())
	case errors.Is(err, library.ErrInvalidBook):
		respondError(c, http.StatusBadRequest, "invalid_book", err.Error())
	case errors.Is(err, library.ErrPageIndex):
		respondError(c, http.StatusBadRequest, "page_index", err.Error())
	case errors.Is(err, sites.ErrNoActiveTab):
		respondError(c, http.StatusConflict, "no_active_tab", err.Error())
	case errors.Is(err, sites.ErrUnknownSite):
		respondError(c, http.StatusUnprocessableEntity, "unknown_site", err.Error())
	case errors.Is(err, sites.ErrMalformedURL):
		respondError(c, http.StatusBadRequest, "malformed_url", err.Error())
	case errors.Is(err, assembler.ErrEmptyBook):
		respondError(c, http.StatusUnprocessableEntity, "empty_book", err.Error())
	case errors.Is(err, assembler.ErrNoValidPages):
		respondError(c, http.StatusUnprocessableEntity, "no_valid_pages", err.Error())
	case errors.Is(err, assembler.ErrAllPagesFailed):
		respondError(c, http.StatusBadGateway, "all_pages_failed", err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

// --- Parameter Parsing ---

// requireBookURL extracts the book key from the "url" query parameter.
// Responds with a 400 error and returns "", false when it is missing.
func requireBookURL(c *gin.Context) (string, bool) {
	key := c.Query("url")
	if key == "" {
		respondBadRequest(c, "url is required")
		return "", false
	}
	return key, true
}

// parseIndexParam extracts a non-negative integer index from URL parameters.
// Returns the parsed index or responds with a 400 error and returns 0, false.
func parseIndexParam(c *gin.Context, paramName string) (int, bool) {
	idx, err := strconv.Atoi(c.Param(paramName))
	if err != nil || idx < 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return idx, true
}
