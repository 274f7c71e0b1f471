package auth

import "net/http"

// BasicAuthenticator sends a username and password on every request. Private
// feeds such as Azure Artifacts and GitHub Packages take a personal access
// token as the password.
type BasicAuthenticator struct {
	username string
	password string
}

// NewBasicAuthenticator creates a new basic auth authenticator.
func NewBasicAuthenticator(username, password string) *BasicAuthenticator {
	return &BasicAuthenticator{username: username, password: password}
}

// Authenticate sets the Authorization: Basic header unless both fields are empty.
func (a *BasicAuthenticator) Authenticate(req *http.Request) error {
	if a.username == "" && a.password == "" {
		return nil
	}
	req.SetBasicAuth(a.username, a.password)
	return nil
}

// Type returns the authentication type.
func (a *BasicAuthenticator) Type() Type {
	return AuthTypeBasic
}
