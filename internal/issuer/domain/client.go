package domain

import "time"

// Client is a registered OAuth2 client application. The issuance core only
// needs its existence and metadata; redirect URI and scope enforcement
// happen in the authorization front-end before a request reaches us.
type Client struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SecretHash   string    `json:"-"` // empty for public clients
	RedirectURIs []string  `json:"redirect_uris"`
	Scopes       []string  `json:"scopes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public reports whether the client has no secret registered.
func (c Client) Public() bool { return c.SecretHash == "" }
