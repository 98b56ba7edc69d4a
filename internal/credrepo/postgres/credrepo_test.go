package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"github.com/davmoren/credverify/internal/credrepo"
	"github.com/davmoren/credverify/internal/credrepo/constants"
	"github.com/davmoren/credverify/internal/interfaces"
	"github.com/davmoren/credverify/internal/interfaces/mocks"
	"github.com/davmoren/credverify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewPostgresCredentialRepository_NilClient(t *testing.T) {
	repo, err := NewPostgresCredentialRepository(nil)
	assert.Nil(t, repo)
	assert.Error(t, err)
}

func TestPostgresCredentialRepository_FindByCredentials(t *testing.T) {
	dbClient := mocks.NewMockDBClient(t)

	// Both values must travel inside the filter map so the client binds
	// them as parameters; the metacharacters stay literal data.
	username := "admin' OR '1'='1"
	password := "x"
	wantFilter := map[string]interface{}{
		constants.UsernameField: username,
		constants.PasswordField: password,
	}

	dbClient.On("FindMany", mock.Anything, constants.LoginCollection, wantFilter).
		Return([]interfaces.Document{}, nil)

	repo, err := NewPostgresCredentialRepository(dbClient)
	require.NoError(t, err)

	creds, err := repo.FindByCredentials(context.Background(), username, password)
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestPostgresCredentialRepository_FindByCredentials_DecodesRows(t *testing.T) {
	dbClient := mocks.NewMockDBClient(t)
	dbClient.On("FindMany", mock.Anything, constants.LoginCollection, mock.Anything).
		Return([]interfaces.Document{
			map[string]interface{}{
				"id":       "7b4a2c10",
				"username": "alice",
				"password": "s3cret",
			},
		}, nil)

	repo, err := NewPostgresCredentialRepository(dbClient)
	require.NoError(t, err)

	creds, err := repo.FindByCredentials(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, models.Credential{ID: "7b4a2c10", Username: "alice", Password: "s3cret"}, creds[0])
}

func TestPostgresCredentialRepository_FindByCredentials_StoreError(t *testing.T) {
	dbClient := mocks.NewMockDBClient(t)
	dbClient.On("FindMany", mock.Anything, constants.LoginCollection, mock.Anything).
		Return(nil, fmt.Errorf("connection refused"))

	repo, err := NewPostgresCredentialRepository(dbClient)
	require.NoError(t, err)

	creds, err := repo.FindByCredentials(context.Background(), "alice", "s3cret")
	assert.Nil(t, creds)
	assert.Error(t, err)
}

func TestPostgresCredentialRepository_AddCredential(t *testing.T) {
	dbClient := mocks.NewMockDBClient(t)
	dbClient.On("InsertOne", mock.Anything, constants.LoginCollection, map[string]interface{}{
		"username": "alice",
		"password": "s3cret",
	}).Return("3f2c9d41", nil)

	repo, err := NewPostgresCredentialRepository(dbClient)
	require.NoError(t, err)

	id, err := repo.AddCredential(context.Background(), models.Credential{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "3f2c9d41", id)
}

func TestPostgresCredentialRepository_AddCredential_Duplicate(t *testing.T) {
	dbClient := mocks.NewMockDBClient(t)
	dbClient.On("InsertOne", mock.Anything, constants.LoginCollection, mock.Anything).
		Return(nil, &pq.Error{Code: uniqueViolationCode})

	repo, err := NewPostgresCredentialRepository(dbClient)
	require.NoError(t, err)

	_, err = repo.AddCredential(context.Background(), models.Credential{Username: "alice", Password: "s3cret"})
	assert.ErrorIs(t, err, credrepo.ErrDuplicateUsername)
}

func TestPostgresCredentialRepository_EnsureIndices(t *testing.T) {
	dbClient := mocks.NewMockDBClient(t)
	dbClient.On("EnsureSchema", mock.Anything, constants.LoginCollection, createLoginTable).
		Return(nil)

	repo, err := NewPostgresCredentialRepository(dbClient)
	require.NoError(t, err)

	assert.NoError(t, repo.EnsureIndices(context.Background()))
}
