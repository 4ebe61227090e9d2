// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"errors"
	"net/url"
	"strings"
)

// Credentials identify a ModelPark account. Exactly one of the identifying
// forms is used: Email or Username with Password, or Token.
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

// Validate checks that exactly one identifying form is set.
func (c Credentials) Validate() error {
	hasUser := c.Email != "" || c.Username != ""
	hasToken := c.Token != ""
	switch {
	case hasUser && hasToken:
		return errors.New("credentials: email/username and token are mutually exclusive")
	case !hasUser && !hasToken:
		return errors.New("credentials: an email/username or a token is required")
	case c.Email != "" && c.Username != "":
		return errors.New("credentials: email and username are mutually exclusive")
	case hasUser && c.Password == "":
		return errors.New("credentials: password is required with email/username")
	}
	return nil
}

// Account returns a display name for the credentials.
func (c Credentials) Account() string {
	switch {
	case c.Email != "":
		return c.Email
	case c.Username != "":
		return c.Username
	case c.Token != "":
		return "token"
	default:
		return ""
	}
}

// AccessOptions constrain an accessToken. Empty fields are not sent.
type AccessOptions struct {
	Password string
	// Expire is forwarded verbatim as expiresIn.
	Expire string
}

// AccessQuery builds the query string for the access token endpoint.
// password comes first; expiresIn follows with "&" when both are present and
// introduces the query on its own otherwise. It returns "" when both are empty.
func AccessQuery(password, expire string) string {
	var b strings.Builder
	if password != "" {
		b.WriteString("?password=")
		b.WriteString(url.QueryEscape(password))
	}
	if expire != "" {
		if b.Len() > 0 {
			b.WriteString("&")
		} else {
			b.WriteString("?")
		}
		b.WriteString("expiresIn=")
		b.WriteString(url.QueryEscape(expire))
	}
	return b.String()
}
