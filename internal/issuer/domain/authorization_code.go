package domain

import "time"

// AuthorizationCode represents an issued OAuth 2.0 authorization code.
//
// The durable store keeps CodeHash only; the plaintext code exists in the
// issuance response and, when the secondary cache is enabled, in the cached
// copy's composite key. Records are immutable after creation; only the
// out-of-scope exchange path sets UsedAt.
type AuthorizationCode struct {
	ID                  string     `json:"id"`
	CodeHash            string     `json:"code_hash"`
	UserID              string     `json:"user_id"`
	Username            string     `json:"username,omitempty"`
	TenantDomain        string     `json:"tenant_domain,omitempty"`
	Federated           bool       `json:"federated,omitempty"`
	ClientID            string     `json:"client_id"`
	RedirectURI         string     `json:"redirect_uri"`
	Scopes              []string   `json:"scopes"`
	CodeChallenge       string     `json:"code_challenge,omitempty"`
	CodeChallengeMethod string     `json:"code_challenge_method,omitempty"`
	SessionDataKey      string     `json:"session_data_key,omitempty"`
	IssuedAt            time.Time  `json:"issued_at"`
	ExpiresAt           time.Time  `json:"expires_at"`
	UsedAt              *time.Time `json:"used_at,omitempty"`
}

// IsExpired reports whether the code has passed its expiry at the given time.
func (c AuthorizationCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
