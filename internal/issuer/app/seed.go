package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/quolldev/grantd/internal/issuer/domain"
	"github.com/quolldev/grantd/internal/issuer/store"
	"github.com/quolldev/grantd/pkg/cryptox"
)

// seedClient is one entry of the seed file. Secrets are provided in
// plaintext in the file and stored hashed.
type seedClient struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Secret       string   `json:"secret,omitempty"`
	RedirectURIs []string `json:"redirect_uris"`
	Scopes       []string `json:"scopes,omitempty"`
}

// seedClients registers the clients listed in the configured seed file.
// Already-registered ids are skipped, so the file can stay in place
// across restarts.
func (app *Application) seedClients(ctx context.Context) error {
	if app.cfg.SeedClientsFile == "" {
		return nil
	}

	data, err := os.ReadFile(app.cfg.SeedClientsFile)
	if err != nil {
		return fmt.Errorf("failed to read seed clients file: %w", err)
	}

	var seeds []seedClient
	if err := json.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("failed to parse seed clients file: %w", err)
	}

	for _, seed := range seeds {
		if seed.ID == "" || seed.Name == "" {
			return fmt.Errorf("seed client missing id or name")
		}

		var secretHash string
		if seed.Secret != "" {
			secretHash, err = cryptox.HashSecret(seed.Secret)
			if err != nil {
				return fmt.Errorf("failed to hash seed client secret: %w", err)
			}
		}

		err := app.db.Clients().CreateClient(ctx, domain.Client{
			ID:           seed.ID,
			Name:         seed.Name,
			SecretHash:   secretHash,
			RedirectURIs: seed.RedirectURIs,
			Scopes:       seed.Scopes,
		})
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("failed to seed client %s: %w", seed.ID, err)
		}

		app.logger.Info("seeded client", "client_id", seed.ID, "name", seed.Name)
	}

	return nil
}
