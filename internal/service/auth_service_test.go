package service

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

func newAuthFixture(t *testing.T) (*AuthService, *memUserRepo, events.Dispatcher) {
	t.Helper()
	repo := newMemUserRepo()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	svc := NewAuthService(testConfig(), AuthDependencies{
		UserRepo:   repo,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return svc, repo, dispatcher
}

func registerInput(email, username string) RegisterInput {
	return RegisterInput{
		Name:            "Doe",
		Forename:        "Jane",
		Email:           email,
		Username:        username,
		Password:        "Sup3r$ecret",
		ConfirmPassword: "Sup3r$ecret",
	}
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	first, token, exp, err := svc.Register(ctx, registerInput("jane@example.com", "jane"))
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))
	assert.Equal(t, domain.RoleAdmin, first.Role)

	second, _, _, err := svc.Register(ctx, registerInput("john@example.com", "john"))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, second.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, registerInput("jane@example.com", "jane"))
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, registerInput("jane@example.com", "other"))
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "CONFLICT", derr.Code)
	assert.Equal(t, http.StatusConflict, derr.HTTPStatus)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)

	in := registerInput("jane@example.com", "jane")
	in.Password = "short"
	in.ConfirmPassword = "short"
	_, _, _, err := svc.Register(context.Background(), in)

	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "VALIDATION_FAILED", derr.Code)

	count, _ := repo.Count(context.Background())
	assert.Zero(t, count)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	in := registerInput("jane@example.com", "jane")
	in.Forename = ""
	_, _, _, err := svc.Register(context.Background(), in)

	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, http.StatusUnprocessableEntity, derr.HTTPStatus)
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, registerInput("jane@example.com", "jane"))
	require.NoError(t, err)

	user, token, _, err := svc.Login(ctx, "jane", "Sup3r$ecret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "jane", user.Username)

	_, _, _, err = svc.Login(ctx, "jane@example.com", "Sup3r$ecret")
	require.NoError(t, err)
}

func TestLoginBadPasswordPublishesLoginFailed(t *testing.T) {
	svc, _, dispatcher := newAuthFixture(t)
	ctx := context.Background()

	var failures atomic.Int64
	dispatcher.Subscribe(events.EventLoginFailed, func(context.Context, events.Event) error {
		failures.Add(1)
		return nil
	})

	_, _, _, err := svc.Register(ctx, registerInput("jane@example.com", "jane"))
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "jane", "wrong-password")
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "VALIDATION_FAILED", derr.Code)
	assert.Equal(t, int64(1), failures.Load())
}

func TestLoginUnknownIdentity(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, _, _, err := svc.Login(context.Background(), "ghost", "Sup3r$ecret")
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "UNKNOWN_SUBJECT", derr.Code)
}

func TestGoogleSignInMissingAccountIsNotFound(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, _, _, err := svc.GoogleSignIn(context.Background(), "ghost@example.com")
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "NOT_FOUND", derr.Code)
}

func TestGoogleSignInExistingAccount(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	in := registerInput("jane@example.com", "jane")
	in.PhotoURL = "https://lh3.example.com/photo.jpg"
	registered, _, _, err := svc.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, domain.AuthTypeGoogle, registered.AuthType)

	user, token, _, err := svc.GoogleSignIn(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, registered.ID, user.ID)
}

func TestMeRoundTripsIssuedToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user, token, _, err := svc.Register(ctx, registerInput("jane@example.com", "jane"))
	require.NoError(t, err)

	subject, err := svc.TokenManager().Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)

	me, err := svc.Me(ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, user.Username, me.Username)

	_, err = svc.Me(ctx, "missing")
	var derr *apperrors.DomainError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "UNKNOWN_SUBJECT", derr.Code)
}
