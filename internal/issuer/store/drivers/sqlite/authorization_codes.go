package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/quolldev/grantd/internal/issuer/domain"
)

type authorizationCodesRepo struct {
	db *sql.DB
}

func (r *authorizationCodesRepo) CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO authorization_codes (
			id, code_hash, user_id, username, tenant_domain, federated,
			client_id, redirect_uri, scopes, code_challenge,
			code_challenge_method, session_data_key, issued_at, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		code.ID, code.CodeHash, code.UserID, code.Username, code.TenantDomain,
		code.Federated, code.ClientID, code.RedirectURI, joinScopes(code.Scopes),
		code.CodeChallenge, code.CodeChallengeMethod, code.SessionDataKey,
		code.IssuedAt, code.ExpiresAt)
	return mapConstraint(err)
}

func (r *authorizationCodesRepo) GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code_hash, user_id, username, tenant_domain, federated,
		       client_id, redirect_uri, scopes, code_challenge,
		       code_challenge_method, session_data_key, issued_at, expires_at, used_at
		FROM authorization_codes WHERE code_hash = ?`, hash)

	var (
		c      domain.AuthorizationCode
		scopes string
		usedAt sql.NullTime
	)
	err := row.Scan(&c.ID, &c.CodeHash, &c.UserID, &c.Username, &c.TenantDomain,
		&c.Federated, &c.ClientID, &c.RedirectURI, &scopes, &c.CodeChallenge,
		&c.CodeChallengeMethod, &c.SessionDataKey, &c.IssuedAt, &c.ExpiresAt, &usedAt)
	if err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}
	c.Scopes = splitScopes(scopes)
	c.UsedAt = mapNullTimePtr(usedAt)
	return c, nil
}

func (r *authorizationCodesRepo) MarkAuthorizationCodeUsed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE authorization_codes SET used_at = ?
		WHERE id = ? AND used_at IS NULL`, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *authorizationCodesRepo) CountAuthorizationCodes(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM authorization_codes`).Scan(&count)
	return count, err
}

func (r *authorizationCodesRepo) DeleteExpiredAuthorizationCodes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM authorization_codes WHERE expires_at < ?`, time.Now().UTC())
	return err
}
