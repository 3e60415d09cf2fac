package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/quolldev/grantd/pkg/cryptox"
)

// CodeIssuer mints the secret authorization-code string. It is injected
// so alternate generation strategies can be substituted without touching
// the issuance flow.
type CodeIssuer interface {
	AuthorizationCode(ctx context.Context) (string, error)
}

// RandomCodeIssuer is the default CodeIssuer: a 256-bit random base64url
// token.
type RandomCodeIssuer struct{}

func (RandomCodeIssuer) AuthorizationCode(context.Context) (string, error) {
	return cryptox.GenerateToken(cryptox.TokenSize256)
}

// newCodeID mints the record identifier. It is independent from the code
// itself: it appears in audit logs and events, never as a credential.
func newCodeID() string {
	return uuid.NewString()
}
