package interfaces

import (
	"context"

	"github.com/davmoren/credverify/internal/models"
)

// CredentialVerifier is the verification core: one read query per call,
// classified into exactly one of three outcomes (matches, no match, store
// failure).
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) ([]models.Credential, error)
}
