package mongo

import (
	"context"
	"fmt"
	"strings"

	"github.com/davmoren/credverify/internal/credrepo"
	"github.com/davmoren/credverify/internal/credrepo/constants"
	"github.com/davmoren/credverify/internal/interfaces"
	"github.com/davmoren/credverify/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	mongoClient "github.com/davmoren/credverify/pkg/databases/mongo"
	mongosdk "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCredentialRepository implements CredentialRepository using the generic DBClient.
type MongoCredentialRepository struct {
	dbClient interfaces.DBClient
}

// NewMongoCredentialRepository creates a new MongoDB repository instance.
func NewMongoCredentialRepository(dbClient interfaces.DBClient) (*MongoCredentialRepository, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("dbClient cannot be nil")
	}
	return &MongoCredentialRepository{dbClient: dbClient}, nil
}

// FindByCredentials runs the single equality lookup on (username, password).
// The filter is a fixed two-key document; the client's sanitizer drops any
// key carrying Mongo operator characters, so input values cannot change the
// query's structure.
func (r *MongoCredentialRepository) FindByCredentials(ctx context.Context, username, password string) ([]models.Credential, error) {
	filter := map[string]interface{}{
		constants.UsernameField: username,
		constants.PasswordField: password,
	}

	docs, err := r.dbClient.FindMany(ctx, constants.LoginCollection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials from MongoDB: %w", err)
	}

	creds := make([]models.Credential, 0, len(docs))
	for _, doc := range docs {
		docMap, ok := doc.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected document type from MongoDB")
		}
		cred := models.Credential{}
		if id, ok := docMap[mongoClient.IDFIELD].(primitive.ObjectID); ok {
			cred.ID = id.Hex()
		}
		if name, ok := docMap[constants.UsernameField].(string); ok {
			cred.Username = name
		}
		if secret, ok := docMap[constants.PasswordField].(string); ok {
			cred.Password = secret
		}
		creds = append(creds, cred)
	}
	return creds, nil
}

// AddCredential saves a new credential record to MongoDB via DBClient.
func (r *MongoCredentialRepository) AddCredential(ctx context.Context, cred models.Credential) (string, error) {
	doc := map[string]interface{}{
		constants.UsernameField: cred.Username,
		constants.PasswordField: cred.Password,
	}

	insertedID, err := r.dbClient.InsertOne(ctx, constants.LoginCollection, doc)
	if err != nil {
		if strings.Contains(err.Error(), "E11000 duplicate key error") {
			return "", fmt.Errorf("username '%s' already exists: %w", cred.Username, credrepo.ErrDuplicateUsername)
		}
		return "", fmt.Errorf("failed to add credential to MongoDB: %w", err)
	}

	objID, ok := insertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to assert inserted ID to ObjectID")
	}
	return objID.Hex(), nil
}

// EnsureIndices creates the unique username index in MongoDB.
// Username uniqueness is the store invariant that keeps a successful
// verification unambiguous.
func (r *MongoCredentialRepository) EnsureIndices(ctx context.Context) error {
	indexModel := mongosdk.IndexModel{
		Keys:    bson.M{constants.UsernameField: 1},
		Options: options.Index().SetUnique(true),
	}
	// The generic DBClient doesn't expose index creation directly, so the
	// MongoDB-specific schema hook carries the index model.
	return r.dbClient.EnsureSchema(ctx, constants.LoginCollection, indexModel)
}

// Ping reports store reachability.
func (r *MongoCredentialRepository) Ping(ctx context.Context) error {
	return r.dbClient.Ping(ctx)
}

// Close disconnects the MongoDB client.
func (r *MongoCredentialRepository) Close(ctx context.Context) error {
	return r.dbClient.Disconnect(ctx)
}
