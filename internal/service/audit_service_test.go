package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// failingLogRepo wraps memLogRepo and fails every write.
type failingLogRepo struct {
	*memLogRepo
}

func (f *failingLogRepo) Create(context.Context, *domain.LogEntry) error {
	return errors.New("connection refused")
}

func newAuditFixture(t *testing.T) (*AuditService, *memLogRepo, events.Dispatcher) {
	t.Helper()
	repo := newMemLogRepo()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	svc := NewAuditService(repo, dispatcher, zap.NewNop())
	svc.RegisterHandlers()
	return svc, repo, dispatcher
}

func TestAuditRecordsPublishedEvents(t *testing.T) {
	svc, repo, dispatcher := newAuditFixture(t)
	ctx := context.Background()
	actorID := "id-1"

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:    events.EventUserRegistered,
		ActorID: &actorID,
		Payload: events.UserEventPayload{Username: "jane"},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:    events.EventAccessDenied,
		ActorID: &actorID,
		Payload: events.AccessDeniedPayload{Username: "jane", Path: "/api/users"},
	}))

	list, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, list.Count)

	assert.Equal(t, "New user jane registered successfully", list.Entries[0].Message)
	assert.Equal(t, domain.LogLevelInfo, list.Entries[0].Level)
	require.NotNil(t, list.Entries[0].UserID)
	assert.Equal(t, actorID, *list.Entries[0].UserID)

	assert.Equal(t, "User jane attempted to access a restricted route", list.Entries[1].Message)
	assert.Equal(t, domain.LogLevelError, list.Entries[1].Level)

	entries, _ := repo.List(ctx, 1, 10)
	require.NoError(t, svc.Delete(ctx, entries[0].ID))
	list, err = svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)

	require.NoError(t, svc.DeleteAll(ctx))
	list, err = svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, list.Count)
}

func TestAuditWriteFailureNeverReachesPublisher(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	svc := NewAuditService(&failingLogRepo{newMemLogRepo()}, dispatcher, zap.NewNop())
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventLoginFailed,
		Payload: events.LoginFailedPayload{Identity: "jane"},
	})
	assert.NoError(t, err)
}

func TestAuditDeleteMissingEntry(t *testing.T) {
	svc, _, _ := newAuditFixture(t)

	err := svc.Delete(context.Background(), "log-99")
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "VALIDATION_FAILED", derr.Code)
}
