package auth

import "net/http"

// BearerAuthenticator sends a token as Authorization: Bearer. Used for the
// GitHub API and for feeds that accept bearer tokens.
type BearerAuthenticator struct {
	token string
}

// NewBearerAuthenticator creates a new bearer token authenticator.
func NewBearerAuthenticator(token string) *BearerAuthenticator {
	return &BearerAuthenticator{token: token}
}

// Authenticate sets the header; an empty token leaves the request anonymous.
func (a *BearerAuthenticator) Authenticate(req *http.Request) error {
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	return nil
}

// Type returns the authentication type.
func (a *BearerAuthenticator) Type() Type {
	return AuthTypeBearer
}
