package credservice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/davmoren/credverify/internal/credrepo"
	"github.com/davmoren/credverify/internal/interfaces"
	"github.com/davmoren/credverify/internal/interfaces/mocks"
	"github.com/davmoren/credverify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordingLogger captures every message and keyval so tests can assert on
// what reaches the log sink.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) record(msg string, keyvals ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := msg
	for _, kv := range keyvals {
		line += fmt.Sprintf(" %v", kv)
	}
	l.lines = append(l.lines, line)
}

func (l *recordingLogger) Info(msg string, keyvals ...interface{})  { l.record(msg, keyvals...) }
func (l *recordingLogger) Warn(msg string, keyvals ...interface{})  { l.record(msg, keyvals...) }
func (l *recordingLogger) Error(msg string, keyvals ...interface{}) { l.record(msg, keyvals...) }
func (l *recordingLogger) Debug(msg string, keyvals ...interface{}) { l.record(msg, keyvals...) }
func (l *recordingLogger) SetLevel(level string)                    {}
func (l *recordingLogger) WithContext(ctx map[string]interface{}) interfaces.Logger {
	return l
}

func (l *recordingLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestCredentialService_Verify_Authenticated(t *testing.T) {
	repo := mocks.NewMockCredentialRepository(t)
	repo.On("FindByCredentials", mock.Anything, "alice", "s3cret").Return([]models.Credential{
		{Username: "alice", Password: "s3cret"},
	}, nil)

	svc := NewCredentialService(repo, &recordingLogger{}, 0)

	creds, err := svc.Verify(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "alice", creds[0].Username)
}

func TestCredentialService_Verify_Rejected(t *testing.T) {
	repo := mocks.NewMockCredentialRepository(t)
	repo.On("FindByCredentials", mock.Anything, "bob", "anything").Return([]models.Credential{}, nil)

	svc := NewCredentialService(repo, &recordingLogger{}, 0)

	creds, err := svc.Verify(context.Background(), "bob", "anything")
	assert.Nil(t, creds)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestCredentialService_Verify_StoreFailure(t *testing.T) {
	logger := &recordingLogger{}
	storeErr := fmt.Errorf("dial tcp 127.0.0.1:5432: connection refused")

	repo := mocks.NewMockCredentialRepository(t)
	repo.On("FindByCredentials", mock.Anything, "alice", "s3cret").Return(nil, storeErr)

	svc := NewCredentialService(repo, logger, 0)

	creds, err := svc.Verify(context.Background(), "alice", "s3cret")
	assert.Nil(t, creds)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatch)
	assert.ErrorIs(t, err, storeErr)

	// The cause is recorded for operators.
	assert.True(t, logger.contains("connection refused"))
}

func TestCredentialService_Verify_PasswordNeverLogged(t *testing.T) {
	logger := &recordingLogger{}

	repo := mocks.NewMockCredentialRepository(t)
	repo.On("FindByCredentials", mock.Anything, "alice", mock.Anything).
		Return(nil, fmt.Errorf("query failed")).Once()
	repo.On("FindByCredentials", mock.Anything, "alice", mock.Anything).
		Return([]models.Credential{}, nil).Once()

	svc := NewCredentialService(repo, logger, 0)

	_, _ = svc.Verify(context.Background(), "alice", "hunter2-secret")
	_, _ = svc.Verify(context.Background(), "alice", "hunter2-secret")

	// Username may appear in diagnostics; the password value must not, on
	// any path, at any level.
	assert.True(t, logger.contains("alice"))
	assert.False(t, logger.contains("hunter2-secret"))
}

func TestCredentialService_Verify_OneQueryPerCall(t *testing.T) {
	repo := mocks.NewMockCredentialRepository(t)
	repo.On("FindByCredentials", mock.Anything, "alice", "s3cret").
		Return([]models.Credential{{Username: "alice"}}, nil).Times(2)

	svc := NewCredentialService(repo, &recordingLogger{}, 0)

	first, err := svc.Verify(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	second, err := svc.Verify(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	// Repeated identical calls against an unchanged store agree.
	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "FindByCredentials", 2)
}

func TestCredentialService_Verify_TimeoutBound(t *testing.T) {
	repo := mocks.NewMockCredentialRepository(t)
	repo.On("FindByCredentials", mock.Anything, "alice", "s3cret").
		Return(func(ctx context.Context, username, password string) ([]models.Credential, error) {
			// The store round-trip must see a deadline-bearing context.
			deadline, ok := ctx.Deadline()
			if !ok {
				return nil, fmt.Errorf("no deadline on query context")
			}
			if time.Until(deadline) > 50*time.Millisecond {
				return nil, fmt.Errorf("deadline further out than configured timeout")
			}
			return []models.Credential{{Username: username}}, nil
		})

	svc := NewCredentialService(repo, &recordingLogger{}, 50*time.Millisecond)

	_, err := svc.Verify(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
}

func TestCredentialService_Seed(t *testing.T) {
	repo := mocks.NewMockCredentialRepository(t)
	repo.On("AddCredential", mock.Anything, models.Credential{Username: "alice", Password: "s3cret"}).
		Return("id-1", nil)
	repo.On("AddCredential", mock.Anything, models.Credential{Username: "carol", Password: "pw"}).
		Return("", fmt.Errorf("username 'carol' already exists: %w", credrepo.ErrDuplicateUsername))

	svc := NewCredentialService(repo, &recordingLogger{}, 0)

	err := svc.Seed(context.Background(), []models.Credential{
		{Username: "alice", Password: "s3cret"},
		{Username: "carol", Password: "pw"},
	})
	// Duplicates are already-provisioned records, not failures.
	require.NoError(t, err)
}

func TestCredentialService_Seed_StoreFailure(t *testing.T) {
	repo := mocks.NewMockCredentialRepository(t)
	repo.On("AddCredential", mock.Anything, mock.Anything).
		Return("", fmt.Errorf("connection reset"))

	svc := NewCredentialService(repo, &recordingLogger{}, 0)

	err := svc.Seed(context.Background(), []models.Credential{{Username: "alice", Password: "pw"}})
	require.Error(t, err)
}
