package domain

import "errors"

// ErrInvalidAuthToken is returned when a token's signature or payload is invalid.
var ErrInvalidAuthToken = errors.New("invalid auth token")

// AuthTokenResponse represents a response containing an authentication token.
type AuthTokenResponse struct {
	Token string `json:"token"`
}
