// Package auth applies credentials to outbound requests for the GitHub API
// and private package feeds.
package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// Authenticator adds credentials to a request.
type Authenticator interface {
	Authenticate(req *http.Request) error
}

// Type represents the type of authentication.
type Type string

const (
	AuthTypeNone   Type = "none"
	AuthTypeBearer Type = "bearer"
	AuthTypeBasic  Type = "basic"
)

// Credentials is the configured form of an Authenticator.
type Credentials struct {
	Type     Type   `toml:"type"`
	Token    string `toml:"token"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// noneAuthenticator leaves requests untouched.
type noneAuthenticator struct{}

func (noneAuthenticator) Authenticate(*http.Request) error { return nil }

// New builds the Authenticator described by creds. An empty Type infers
// bearer from a token, basic from a username, and none otherwise.
func New(creds Credentials) (Authenticator, error) {
	kind := Type(strings.ToLower(string(creds.Type)))
	if kind == "" {
		switch {
		case creds.Token != "":
			kind = AuthTypeBearer
		case creds.Username != "":
			kind = AuthTypeBasic
		default:
			kind = AuthTypeNone
		}
	}

	switch kind {
	case AuthTypeNone:
		return noneAuthenticator{}, nil
	case AuthTypeBearer:
		return NewBearerAuthenticator(creds.Token), nil
	case AuthTypeBasic:
		return NewBasicAuthenticator(creds.Username, creds.Password), nil
	default:
		return nil, fmt.Errorf("unknown authentication type %q", creds.Type)
	}
}
