package auth

import (
	"strings"
)

const bearerPrefix = "Bearer "

// Extract token from Authorization header value
// Scheme is case-sensitive and must be followed by exactly one space
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" || strings.HasPrefix(token, " ") {
		return "", false
	}

	return token, true
}
