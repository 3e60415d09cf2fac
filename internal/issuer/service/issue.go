package service

import (
	"context"
	"strings"
	"time"

	"github.com/quolldev/grantd/internal/issuer/cache"
	"github.com/quolldev/grantd/internal/issuer/domain"
	"github.com/quolldev/grantd/internal/issuer/notify"
	"github.com/quolldev/grantd/internal/issuer/store"
	"github.com/quolldev/grantd/pkg/cryptox"
	"github.com/quolldev/grantd/pkg/slogx"
)

// IssueService encapsulates authorization-code issuance for requests that
// have already been authenticated and consented upstream.
type IssueService struct {
	Store      store.Store
	Registry   *ClientRegistry
	Codes      cache.Codes
	Issuer     CodeIssuer
	Dispatcher *notify.Dispatcher

	// DefaultValidity is the code lifetime used when a request carries no
	// override.
	DefaultValidity time.Duration
}

// IssueRequest captures the inputs of a single issuance call. The
// principal is trusted as-is; authentication and scope approval happened
// before the request reached this service.
type IssueRequest struct {
	ClientID  string
	Principal domain.Principal

	// TenantDomain is the requesting application's tenant. Federated
	// principals are re-homed to it at record-build time.
	TenantDomain string

	Scopes              []string
	RedirectURI         string
	CodeChallenge       string
	CodeChallengeMethod string

	// SessionDataKey correlates the issued code with the caller's
	// session; it is echoed into the issued-code event.
	SessionDataKey string

	// ValidityOverride replaces the default code lifetime when strictly
	// positive. Zero means unset.
	ValidityOverride time.Duration
}

// IssueResult is returned on success. It carries the resolved validity
// and issue timestamp explicitly so later pipeline stages consume them by
// name instead of reading them back off a mutated request.
type IssueResult struct {
	RedirectURI string
	Code        string
	CodeID      string
	IssuedAt    time.Time
	Validity    time.Duration
	Scopes      []string
}

// Issue runs the issuance pipeline: resolve the client, resolve the code
// lifetime, mint identifiers, build the immutable record, persist it,
// then update the secondary cache and emit the issued event.
//
// The durable insert is the only step that gates success. Cache writes
// are best effort, and notification is queued asynchronously, so nothing
// can fail the call once the record is persisted.
func (s *IssueService) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	log := slogx.FromContext(ctx)

	if _, err := s.Registry.Resolve(ctx, req.ClientID); err != nil {
		return nil, err
	}

	validity, err := resolveValidity(s.DefaultValidity, req.ValidityOverride)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	code, err := s.Issuer.AuthorizationCode(ctx)
	if err != nil {
		return nil, wrapErr(ErrCodeGeneration, err)
	}
	codeID := newCodeID()

	record, err := buildRecord(req, now, validity, code, codeID)
	if err != nil {
		return nil, err
	}

	if err := s.Store.AuthorizationCodes().CreateAuthorizationCode(ctx, record); err != nil {
		return nil, wrapErr(ErrPersistence, err)
	}

	// Write-through to the secondary cache. A failure here only costs the
	// fast path; the exchange endpoint falls back to the durable store.
	if err := s.Codes.Put(ctx, req.ClientID, code, record); err != nil {
		log.Warn("authorization code cache write failed",
			"client_id", req.ClientID,
			"code_id", codeID,
			"error", err,
		)
	}

	s.Dispatcher.Emit(notify.EventPostIssueCode, notify.Payload{
		CodeID:         codeID,
		SessionDataKey: req.SessionDataKey,
	})

	log.Debug("issued authorization code",
		"client_id", req.ClientID,
		"code_id", codeID,
		"user_id", record.UserID,
		"scopes", strings.Join(record.Scopes, " "),
		"validity", validity,
	)

	return &IssueResult{
		RedirectURI: req.RedirectURI,
		Code:        code,
		CodeID:      codeID,
		IssuedAt:    now,
		Validity:    validity,
		Scopes:      record.Scopes,
	}, nil
}

// buildRecord assembles the immutable authorization-code record. The
// durable copy carries the code's fingerprint, not the plaintext.
//
// Federated principals are re-homed: their tenant domain is replaced by
// the requesting application's tenant so downstream handlers treat the
// two as one domain.
func buildRecord(
	req IssueRequest,
	issuedAt time.Time,
	validity time.Duration,
	code, codeID string,
) (domain.AuthorizationCode, error) {
	if strings.TrimSpace(req.ClientID) == "" || strings.TrimSpace(req.RedirectURI) == "" {
		return domain.AuthorizationCode{}, wrapErr(ErrInvalidRequest, nil)
	}

	tenantDomain := req.Principal.TenantDomain
	if req.Principal.Federated {
		tenantDomain = req.TenantDomain
	}

	return domain.AuthorizationCode{
		ID:                  codeID,
		CodeHash:            cryptox.FingerprintToken(code),
		UserID:              req.Principal.UserID,
		Username:            req.Principal.Username,
		TenantDomain:        tenantDomain,
		Federated:           req.Principal.Federated,
		ClientID:            req.ClientID,
		RedirectURI:         req.RedirectURI,
		Scopes:              req.Scopes,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		SessionDataKey:      req.SessionDataKey,
		IssuedAt:            issuedAt,
		ExpiresAt:           issuedAt.Add(validity),
	}, nil
}
