package domain

// Principal is the already-authenticated user an authorization code is
// issued to. Federated principals were authenticated by an external
// identity source; their tenant domain is normalized to the requesting
// application's domain at record-build time.
type Principal struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username,omitempty"`
	Federated    bool   `json:"federated,omitempty"`
	TenantDomain string `json:"tenant_domain,omitempty"`
}
