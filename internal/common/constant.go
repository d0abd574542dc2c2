// Package common contains shared constants and sentinel errors used across
// the report-sharing server components.
package common

const (
	// RefreshTokenCookieName is the cookie carrying the long-lived credential.
	RefreshTokenCookieName = "jwt"

	// AuthorizationHeaderName carries the bearer access token on protected requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the expected authorization scheme, compared case-insensitively.
	BearerScheme = "Bearer"
)
