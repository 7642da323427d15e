// Package auth holds the credentials used to talk to the careers platform API.
// Credentials are passed explicitly to the API client; nothing here reads
// process-wide state on its own.
package auth

import (
	"net/http"
)

// Credentials is the authentication context attached to every API request.
type Credentials struct {
	Token string
}

// NewCredentials resolves the token described by src.
func NewCredentials(src Source) (Credentials, error) {
	token, err := Load(src)
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{Token: token}, nil
}

// Empty reports whether no token is set.
func (c Credentials) Empty() bool {
	return c.Token == ""
}

// Apply sets the bearer authorization header on req. Requests are left
// untouched when the credentials are empty.
func (c Credentials) Apply(req *http.Request) {
	if c.Empty() {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
}
