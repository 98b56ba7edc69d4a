package interfaces

import (
	"context"

	"github.com/davmoren/credverify/internal/models"
)

// CredentialRepository defines the contract for the credential store boundary.
// Verification is read-only; AddCredential exists for startup seeding and
// provisioning, never for the login path.
type CredentialRepository interface {
	// FindByCredentials returns every stored record whose username and
	// password both equal the given values. Both values must reach the
	// store as bound parameters.
	FindByCredentials(ctx context.Context, username, password string) ([]models.Credential, error)
	AddCredential(ctx context.Context, cred models.Credential) (string, error)
	EnsureIndices(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
