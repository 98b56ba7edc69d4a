package mongo

import (
	"context"
	"fmt"
	"testing"

	"github.com/davmoren/credverify/internal/credrepo"
	"github.com/davmoren/credverify/internal/credrepo/constants"
	"github.com/davmoren/credverify/internal/interfaces"
	"github.com/davmoren/credverify/internal/interfaces/mocks"
	"github.com/davmoren/credverify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewMongoCredentialRepository_NilClient(t *testing.T) {
	repo, err := NewMongoCredentialRepository(nil)
	assert.Nil(t, repo)
	assert.Error(t, err)
}

func TestMongoCredentialRepository_FindByCredentials(t *testing.T) {
	objID := primitive.NewObjectID()

	dbClient := mocks.NewMockDBClient(t)
	dbClient.On("FindMany", mock.Anything, constants.LoginCollection, map[string]interface{}{
		"username": "alice",
		"password": "s3cret",
	}).Return([]interfaces.Document{
		map[string]interface{}{
			"_id":      objID,
			"username": "alice",
			"password": "s3cret",
		},
	}, nil)

	repo, err := NewMongoCredentialRepository(dbClient)
	require.NoError(t, err)

	creds, err := repo.FindByCredentials(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, objID.Hex(), creds[0].ID)
	assert.Equal(t, "alice", creds[0].Username)
}

func TestMongoCredentialRepository_FindByCredentials_NoMatch(t *testing.T) {
	dbClient := mocks.NewMockDBClient(t)
	dbClient.On("FindMany", mock.Anything, constants.LoginCollection, mock.Anything).
		Return(nil, nil)

	repo, err := NewMongoCredentialRepository(dbClient)
	require.NoError(t, err)

	creds, err := repo.FindByCredentials(context.Background(), "bob", "anything")
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestMongoCredentialRepository_AddCredential(t *testing.T) {
	objID := primitive.NewObjectID()

	dbClient := mocks.NewMockDBClient(t)
	dbClient.On("InsertOne", mock.Anything, constants.LoginCollection, map[string]interface{}{
		"username": "alice",
		"password": "s3cret",
	}).Return(objID, nil)

	repo, err := NewMongoCredentialRepository(dbClient)
	require.NoError(t, err)

	id, err := repo.AddCredential(context.Background(), models.Credential{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, objID.Hex(), id)
}

func TestMongoCredentialRepository_AddCredential_Duplicate(t *testing.T) {
	dbClient := mocks.NewMockDBClient(t)
	dbClient.On("InsertOne", mock.Anything, constants.LoginCollection, mock.Anything).
		Return(nil, fmt.Errorf("write exception: E11000 duplicate key error collection: credverifyDB.login"))

	repo, err := NewMongoCredentialRepository(dbClient)
	require.NoError(t, err)

	_, err = repo.AddCredential(context.Background(), models.Credential{Username: "alice", Password: "s3cret"})
	assert.ErrorIs(t, err, credrepo.ErrDuplicateUsername)
}

func TestMongoCredentialRepository_EnsureIndices(t *testing.T) {
	dbClient := mocks.NewMockDBClient(t)
	dbClient.On("EnsureSchema", mock.Anything, constants.LoginCollection, mock.AnythingOfType("mongo.IndexModel")).
		Return(nil)

	repo, err := NewMongoCredentialRepository(dbClient)
	require.NoError(t, err)

	assert.NoError(t, repo.EnsureIndices(context.Background()))
}
