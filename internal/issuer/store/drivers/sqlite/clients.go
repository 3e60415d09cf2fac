package sqlite

import (
	"context"
	"database/sql"

	"github.com/quolldev/grantd/internal/issuer/domain"
)

type clientsRepo struct {
	db *sql.DB
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, secret_hash, redirect_uris, scopes, created_at, updated_at
		FROM clients WHERE id = ?`, id)

	c, err := scanClient(row)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, secret_hash, redirect_uris, scopes, created_at, updated_at
		FROM clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, secret_hash, redirect_uris, scopes)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, mapStringNull(c.SecretHash), joinScopes(c.RedirectURIs), joinScopes(c.Scopes))
	return mapConstraint(err)
}

func (r *clientsRepo) DeleteClient(ctx context.Context, clientID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, clientID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (domain.Client, error) {
	var (
		c            domain.Client
		secretHash   sql.NullString
		redirectURIs string
		scopes       string
	)
	if err := row.Scan(&c.ID, &c.Name, &secretHash, &redirectURIs, &scopes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Client{}, err
	}
	c.SecretHash = mapNullString(secretHash)
	c.RedirectURIs = splitScopes(redirectURIs)
	c.Scopes = splitScopes(scopes)
	return c, nil
}
