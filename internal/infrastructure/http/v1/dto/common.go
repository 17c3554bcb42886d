// Package dto provides Data Transfer Objects for API requests/responses.
//
// Request types carry IDs as strings and calendar dates as "2006-01-02";
// each conversion to a domain input reports a 400 on malformed values.
// Responses serialize the domain models directly: they carry json tags and
// decimals render as fixed-point strings.
package dto

import (
	"time"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
)

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// ListResponse wraps list results.
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// parseID parses a request id field, reporting the field name on failure.
func parseID(field, raw string) (id.ID, error) {
	if raw == "" {
		return id.Nil(), apperror.NewMissingField(field)
	}
	parsed, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), apperror.NewInvalidInput("invalid id format").WithDetail("field", field)
	}
	return parsed, nil
}

// parseDate parses a calendar date field.
func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apperror.NewMissingField(field)
	}
	parsed, err := time.Parse(DateFormat, raw)
	if err != nil {
		return time.Time{}, apperror.NewInvalidInput("invalid date, expected YYYY-MM-DD").WithDetail("field", field)
	}
	return parsed, nil
}
