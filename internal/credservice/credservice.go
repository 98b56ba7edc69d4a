// credservice.go
package credservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/davmoren/credverify/internal/credrepo"
	"github.com/davmoren/credverify/internal/interfaces"
	"github.com/davmoren/credverify/internal/models"
	"github.com/davmoren/credverify/pkg/helper"
)

const DefaultQueryTimeout = 5 * time.Second

// ErrNoMatch reports a well-formed lookup that matched zero records. It is
// deliberately silent about whether the username exists: both the
// unknown-username and wrong-password cases collapse into this one error.
var ErrNoMatch = errors.New(ErrNoMatchingRecord)

// CredentialService is the verification core. It is stateless and
// request-scoped: each Verify call issues exactly one read query against the
// store and classifies the result set by cardinality.
type CredentialService struct {
	CredRepo     interfaces.CredentialRepository
	Logger       interfaces.Logger
	QueryTimeout time.Duration
}

// NewCredentialService creates a new CredentialService instance.
func NewCredentialService(repo interfaces.CredentialRepository, logger interfaces.Logger, queryTimeout time.Duration) *CredentialService {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &CredentialService{
		CredRepo:     repo,
		Logger:       logger,
		QueryTimeout: queryTimeout,
	}
}

// Verify checks the candidate pair against the store. Outcomes:
//   - matching records and a nil error (authenticated)
//   - ErrNoMatch (rejected; generic by design)
//   - any other error (store unavailable; the cause is logged for
//     operators and must not reach a client)
//
// The single store round-trip is bounded by the configured query timeout;
// expiry surfaces as a store failure. The password value is never logged.
func (s *CredentialService) Verify(ctx context.Context, username, password string) ([]models.Credential, error) {
	funcName := helper.GetFuncName()
	s.Logger.Debug("Entering function", "func", funcName, "user", username)

	queryCtx, cancel := context.WithTimeout(ctx, s.QueryTimeout)
	defer cancel()

	creds, err := s.CredRepo.FindByCredentials(queryCtx, username, password)
	if err != nil {
		s.Logger.Error(ErrQueryingStore, "func", funcName, "user", username, "error", err)
		s.Logger.Debug("Exiting function", "func", funcName, "user", username)
		return nil, fmt.Errorf("%s: %w", ErrQueryingStore, err)
	}

	if len(creds) == 0 {
		s.Logger.Info("Credential verification rejected", "func", funcName, "user", username)
		s.Logger.Debug("Exiting function", "func", funcName, "user", username)
		return nil, ErrNoMatch
	}

	s.Logger.Info("Credential verification succeeded", "func", funcName, "user", username, "records", len(creds))
	s.Logger.Debug("Exiting function", "func", funcName, "user", username)
	return creds, nil
}

// Seed provisions the given records, skipping any username that already
// exists. It runs once at startup and is the only write path in the service.
func (s *CredentialService) Seed(ctx context.Context, creds []models.Credential) error {
	funcName := helper.GetFuncName()
	for _, cred := range creds {
		id, err := s.CredRepo.AddCredential(ctx, cred)
		if err != nil {
			if errors.Is(err, credrepo.ErrDuplicateUsername) {
				s.Logger.Debug("Seed record already present", "func", funcName, "user", cred.Username)
				continue
			}
			s.Logger.Error(ErrSeedingStore, "func", funcName, "user", cred.Username, "error", err)
			return fmt.Errorf("%s: %w", ErrSeedingStore, err)
		}
		s.Logger.Info("Seeded credential record", "func", funcName, "user", cred.Username, "ID", id)
	}
	return nil
}
