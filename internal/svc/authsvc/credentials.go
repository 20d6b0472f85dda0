package authsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/everyio/tasktracker/internal/domain"
)

// tokenClaims is the payload of a bearer token.
type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// UserLookup resolves a user ID to a user, following the convention of
// user.Repository.GetUserByID.
type UserLookup func(ctx context.Context, id string) (*domain.User, bool, error)

// HashPassword hashes plaintext with bcrypt at the given cost.
// Every call uses a fresh salt.
func HashPassword(plaintext string, cost int) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return nil, fmt.Errorf("generate password hash: %w", err)
	}

	return hash, nil
}

// VerifyPassword reports whether plaintext matches the bcrypt hash.
func VerifyPassword(plaintext string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}

// IssueToken signs an HS256 token embedding userID. Tokens carry no expiry.
func IssueToken(userID, secret string, issuedAt time.Time) (string, error) {
	//nolint:exhaustruct
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseToken verifies the signature of tokenString and returns the embedded user ID.
// Returns domain.ErrInvalidAuthToken for any verification failure or malformed payload.
func ParseToken(tokenString, secret string) (string, error) {
	var claims tokenClaims

	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidAuthToken, err)
	}

	if claims.UserID == "" {
		return "", fmt.Errorf("%w: no user id", domain.ErrInvalidAuthToken)
	}

	return claims.UserID, nil
}

// ResolveUser returns the user a bearer token belongs to, or nil if the token
// does not verify, carries no user ID, or names a user lookup cannot find.
// The second return value explains a nil user and is meant for logging only.
func ResolveUser(ctx context.Context, tokenString, secret string, lookup UserLookup) (*domain.User, error) {
	userID, err := ParseToken(tokenString, secret)
	if err != nil {
		return nil, err
	}

	user, ok, err := lookup(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	} else if !ok {
		return nil, fmt.Errorf("lookup user: %w", domain.ErrUserNotFound)
	}

	return user, nil
}
