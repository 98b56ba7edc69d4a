package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/davmoren/credverify/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *PostgresDatabaseClient {
	dbConfig := &config.PostgresConfig{
		ValidTables: []string{"login"},
		ValidFields: []string{"username", "password"},
	}
	return NewPostgresDatabaseClient(dbConfig).(*PostgresDatabaseClient)
}

func TestPostgresDatabaseClient_BuildWhere_SingleField(t *testing.T) {
	p := newTestClient()

	whereString, whereValues, err := p.buildWhere(map[string]interface{}{
		"username": "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, " WHERE username = $1", whereString)
	assert.Equal(t, []interface{}{"alice"}, whereValues)
}

func TestPostgresDatabaseClient_BuildWhere_CredentialPair(t *testing.T) {
	p := newTestClient()

	// Metacharacter-laden values must surface only in the bound values,
	// never in the query text itself.
	injected := "admin' OR '1'='1"
	whereString, whereValues, err := p.buildWhere(map[string]interface{}{
		"username": injected,
		"password": "x",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(whereString, " WHERE "))
	assert.Contains(t, whereString, "username = $")
	assert.Contains(t, whereString, "password = $")
	assert.Contains(t, whereString, " AND ")
	assert.Contains(t, whereString, "$1")
	assert.Contains(t, whereString, "$2")
	assert.NotContains(t, whereString, injected)
	assert.NotContains(t, whereString, "'")

	require.Len(t, whereValues, 2)
	assert.Contains(t, whereValues, injected)
	assert.Contains(t, whereValues, "x")
}

func TestPostgresDatabaseClient_BuildWhere_EmptyFilter(t *testing.T) {
	p := newTestClient()

	whereString, whereValues, err := p.buildWhere(map[string]interface{}{})
	require.NoError(t, err)
	assert.Empty(t, whereString)
	assert.Empty(t, whereValues)
}

func TestPostgresDatabaseClient_BuildWhere_RejectsUnknownColumn(t *testing.T) {
	tests := []struct {
		name   string
		column string
	}{
		{name: "Column not on the allow-list", column: "role"},
		{name: "Injection-shaped column name", column: "username = username --"},
		{name: "Empty column name", column: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestClient()

			whereString, whereValues, err := p.buildWhere(map[string]interface{}{
				tt.column: "x",
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid field name")
			assert.Empty(t, whereString)
			assert.Nil(t, whereValues)
		})
	}
}

func TestPostgresDatabaseClient_FindMany_RejectsUnknownTable(t *testing.T) {
	p := newTestClient()

	// Rejected before any connection is needed.
	results, err := p.FindMany(context.Background(), "users", map[string]interface{}{
		"username": "alice",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
	assert.Nil(t, results)
}

func TestPostgresDatabaseClient_InsertOne_RejectsUnknownColumn(t *testing.T) {
	p := newTestClient()

	insertedID, err := p.InsertOne(context.Background(), "login", map[string]interface{}{
		"username":           "alice",
		"password":           "s3cret",
		"role) VALUES ('a',": "smuggled",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid field name")
	assert.Nil(t, insertedID)
}

func TestPostgresDatabaseClient_CheckTable(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{name: "Allowed table", table: "login", wantErr: false},
		{name: "Unknown table", table: "accounts", wantErr: true},
		{name: "Empty table name", table: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestClient()

			err := p.checkTable(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewPostgresDatabaseClient_Defaults(t *testing.T) {
	p := newTestClient()

	assert.Equal(t, DefaultMaxOpenConns, p.MaxOpenConns)
	assert.Equal(t, DefaultMaxIdleConns, p.MaxIdleConns)
	assert.Equal(t, DefaultConnMaxLifetime, p.ConnMaxLifetime)
}

func TestPostgresDatabaseClient_Ping_NotConnected(t *testing.T) {
	p := newTestClient()

	err := p.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}
