package domain

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the wire format of every timestamp: RFC 3339 in UTC
// with exactly three fractional digits.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

type (
	taskFields Task
	userFields User
)

// MarshalJSON implements json.Marshaler.
func (t Task) MarshalJSON() ([]byte, error) {
	//nolint:wrapcheck
	return json.Marshal(struct {
		taskFields
		CreatedAt     string `json:"createdAt"`
		LastUpdatedAt string `json:"lastUpdatedAt"`
	}{
		taskFields:    taskFields(t),
		CreatedAt:     FormatTimestamp(t.CreatedAt),
		LastUpdatedAt: FormatTimestamp(t.LastUpdatedAt),
	})
}

// MarshalJSON implements json.Marshaler.
func (u User) MarshalJSON() ([]byte, error) {
	//nolint:wrapcheck
	return json.Marshal(struct {
		userFields
		CreatedAt string `json:"createdAt"`
	}{
		userFields: userFields(u),
		CreatedAt:  FormatTimestamp(u.CreatedAt),
	})
}
