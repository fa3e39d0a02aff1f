package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/avatar"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// RegisterInput carries the registration payload. PhotoURL is set for
// Google sign-ups; it switches the auth type and seeds the avatar.
type RegisterInput struct {
	Name            string
	Forename        string
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
	PhotoURL        string
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	avatars    *avatar.Store
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Avatars    *avatar.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		avatars:    deps.Avatars,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     deps.Logger,
	}
}

// Register creates a new account. The first registered account is
// promoted to admin.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, time.Time, error) {
	if in.Name == "" || in.Forename == "" || in.Email == "" || in.Username == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, "", time.Time{}, apperrors.NewMissingFields()
	}
	if !auth.ValidPassword(in.Password) {
		return nil, "", time.Time{}, apperrors.NewValidationError("password does not meet requirements", nil)
	}
	if in.Password != in.ConfirmPassword {
		return nil, "", time.Time{}, apperrors.NewValidationError("passwords do not match", nil)
	}

	if err := s.checkUnique(ctx, in.Email, in.Username, ""); err != nil {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	authType := domain.AuthTypeLocal
	if in.PhotoURL != "" {
		authType = domain.AuthTypeGoogle
	}

	user := &domain.User{
		Name:         in.Name,
		Forename:     in.Forename,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		AuthType:     authType,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			return nil, "", time.Time{}, apperrors.NewConflict("email or username taken")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	s.attachAvatar(ctx, user, in.PhotoURL)

	count, err := s.users.Count(ctx)
	if err == nil && count == 1 {
		adminRole := domain.RoleAdmin
		if promoted, err := s.users.Update(ctx, user.ID, domain.UserChanges{Role: &adminRole}); err == nil {
			user = promoted
		}
	}

	token, exp, err := s.tokenMgr.Generate(user.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:    events.EventUserRegistered,
		ActorID: &user.ID,
		Payload: events.UserEventPayload{Username: user.Username},
	})
	return user, token, exp, nil
}

// Login authenticates by username or email plus password.
func (s *AuthService) Login(ctx context.Context, identity, password string) (*domain.User, string, time.Time, error) {
	if identity == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewMissingFields()
	}

	user, err := s.users.GetByIdentity(ctx, identity, identity)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnknownSubject()
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:    events.EventLoginFailed,
			ActorID: &user.ID,
			Payload: events.LoginFailedPayload{Identity: user.Username},
		})
		return nil, "", time.Time{}, apperrors.NewValidationError("invalid credentials", nil)
	}

	token, exp, err := s.tokenMgr.Generate(user.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// GoogleSignIn authenticates an existing Google-linked account by email.
// A missing account is reported as not-found so the client can fall back
// to registration.
func (s *AuthService) GoogleSignIn(ctx context.Context, email string) (*domain.User, string, time.Time, error) {
	if email == "" {
		return nil, "", time.Time{}, apperrors.NewMissingFields()
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewNotFound("user")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.Generate(user.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// Me loads the authenticated user's record.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnknownSubject()
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Logout is a no-op for stateless tokens; clients discard their copy.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// checkUnique rejects an email or username already held by another user.
func (s *AuthService) checkUnique(ctx context.Context, email, username, excludeID string) error {
	if email != "" {
		existing, err := s.users.GetByEmail(ctx, email)
		if err == nil && existing.ID != excludeID {
			return apperrors.NewConflict("email taken")
		}
		if err != nil && err != pgx.ErrNoRows {
			return apperrors.MapError(err)
		}
	}
	if username != "" {
		existing, err := s.users.GetByUsername(ctx, username)
		if err == nil && existing.ID != excludeID {
			return apperrors.NewConflict("username taken")
		}
		if err != nil && err != pgx.ErrNoRows {
			return apperrors.MapError(err)
		}
	}
	return nil
}

// attachAvatar seeds the avatar from the given photo URL, falling back
// to a generated identicon. Avatar failures never fail registration.
func (s *AuthService) attachAvatar(ctx context.Context, user *domain.User, photoURL string) {
	if s.avatars == nil {
		return
	}

	var avatarPath string
	var err error
	if photoURL != "" {
		avatarPath, err = s.avatars.SaveFromURL(ctx, photoURL, user.ID)
	} else {
		avatarPath, err = s.avatars.Generate(user.ID)
	}
	if err != nil {
		s.logger.Warn("avatar creation failed", zap.String("user_id", user.ID), zap.Error(err))
		return
	}

	if updated, err := s.users.Update(ctx, user.ID, domain.UserChanges{Avatar: &avatarPath}); err == nil {
		*user = *updated
	}
}
