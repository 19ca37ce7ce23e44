package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Pagination represents common pagination parameters
type Pagination struct {
	Limit  int `json:"limit" form:"limit"`
	Offset int `json:"offset" form:"offset"`
}

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}

// DateLayout is the wire format of calendar dates (dob, bill date, inventory date).
const DateLayout = "2006-01-02"

// dateTimeLayouts are the ISO-8601 forms accepted for appointment date-times.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDateTime accepts the ISO-8601 variants browsers and clients send for date-time fields.
func ParseDateTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
