package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq" // PostgreSQL driver for database/sql

	"github.com/davmoren/credverify/internal/credrepo"
	"github.com/davmoren/credverify/internal/credrepo/constants"
	"github.com/davmoren/credverify/internal/interfaces"
	"github.com/davmoren/credverify/internal/models"

	"github.com/go-viper/mapstructure/v2"
)

const (
	// createLoginTable is fixed repository-owned DDL, never built from input.
	createLoginTable = `CREATE TABLE IF NOT EXISTS login (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	)`

	uniqueViolationCode = "23505"
)

// PostgresCredentialRepository implements CredentialRepository for PostgreSQL
// databases via the generic DBClient.
type PostgresCredentialRepository struct {
	dbClient interfaces.DBClient
}

// NewPostgresCredentialRepository creates a new PostgreSQL repository instance.
func NewPostgresCredentialRepository(dbClient interfaces.DBClient) (*PostgresCredentialRepository, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("dbClient cannot be nil")
	}
	return &PostgresCredentialRepository{dbClient: dbClient}, nil
}

// FindByCredentials runs the single equality lookup on (username, password).
// The query text is fixed inside the DB client; both values travel to the
// driver as bound parameters, so no input can alter the query structure.
func (r *PostgresCredentialRepository) FindByCredentials(ctx context.Context, username, password string) ([]models.Credential, error) {
	filter := map[string]interface{}{
		constants.UsernameField: username,
		constants.PasswordField: password,
	}

	rows, err := r.dbClient.FindMany(ctx, constants.LoginCollection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials from PostgreSQL: %w", err)
	}

	creds := make([]models.Credential, 0, len(rows))
	for _, row := range rows {
		var cred models.Credential
		if err := mapstructure.Decode(row, &cred); err != nil {
			return nil, fmt.Errorf("failed to decode credential row: %w", err)
		}
		creds = append(creds, cred)
	}
	return creds, nil
}

// AddCredential saves a new credential record to PostgreSQL via DBClient.
func (r *PostgresCredentialRepository) AddCredential(ctx context.Context, cred models.Credential) (string, error) {
	// Convert the record to map[string]interface{} for the generic client.
	doc := map[string]interface{}{
		constants.UsernameField: cred.Username,
		constants.PasswordField: cred.Password,
	}
	insertedID, err := r.dbClient.InsertOne(ctx, constants.LoginCollection, doc)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == uniqueViolationCode {
			return "", fmt.Errorf("username '%s' already exists: %w", cred.Username, credrepo.ErrDuplicateUsername)
		}
		return "", fmt.Errorf("failed to add credential to PostgreSQL: %w", err)
	}
	strID, ok := insertedID.(string)
	if !ok {
		return "", fmt.Errorf("failed to assert inserted ID to string (expected UUID)")
	}
	return strID, nil
}

// EnsureIndices creates the login table with its unique username constraint.
// Username uniqueness is a store invariant: it is what keeps a successful
// verification from ever being ambiguous across duplicate records.
func (r *PostgresCredentialRepository) EnsureIndices(ctx context.Context) error {
	return r.dbClient.EnsureSchema(ctx, constants.LoginCollection, createLoginTable)
}

// Ping reports store reachability.
func (r *PostgresCredentialRepository) Ping(ctx context.Context) error {
	return r.dbClient.Ping(ctx)
}

// Close closes the PostgreSQL database connection.
func (r *PostgresCredentialRepository) Close(ctx context.Context) error {
	return r.dbClient.Disconnect(ctx)
}
