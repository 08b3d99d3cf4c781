package api

import (
	"crypto/subtle"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// authorize validates the Authorization header and returns the owner ID.
// This is a single-owner system: the token gates access, it does not select
// an identity. An empty configured token disables auth entirely.
func (s *Server) authorize(authHeader string) (string, error) {
	if s.auth.Token == "" {
		return s.auth.OwnerID, nil
	}

	if authHeader == "" {
		return "", huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", huma.Error401Unauthorized("Invalid authorization header format")
	}

	if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(s.auth.Token)) != 1 {
		return "", huma.Error401Unauthorized("Invalid token")
	}

	return s.auth.OwnerID, nil
}
