package service

import (
	"context"

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

// CreateUserInput carries the admin user-creation payload.
type CreateUserInput struct {
	Name     string
	Forename string
	Email    string
	Username string
	Password string
	Role     string
}

// UserList bundles a page of users with the total count.
type UserList struct {
	Users []*domain.User
	Count int
}

// AuthTypeStat is one slice of the users-per-auth-type chart.
type AuthTypeStat struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// UserService implements user administration and self-service flows.
type UserService struct {
	users      repository.UserRepository
	avatars    *avatar.Store
	dispatcher events.Dispatcher
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies encapsulates requirements for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Avatars    *avatar.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		avatars:    deps.Avatars,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     deps.Logger,
	}
}

// List returns a page of users, newest first, with the total count.
func (s *UserService) List(ctx context.Context, page, size int) (*UserList, error) {
	users, err := s.users.List(ctx, page, size)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &UserList{Users: users, Count: count}, nil
}

// Create adds a user on behalf of an admin actor.
func (s *UserService) Create(ctx context.Context, actorID string, in CreateUserInput) (*domain.User, error) {
	if in.Name == "" || in.Forename == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, apperrors.NewMissingFields()
	}

	role := domain.RoleUser
	if in.Role != "" {
		parsed, err := auth.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	if err := s.checkUnique(ctx, in.Email, in.Username, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         in.Name,
		Forename:     in.Forename,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         role,
		AuthType:     domain.AuthTypeLocal,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			return nil, apperrors.NewConflict("email or username taken")
		}
		return nil, apperrors.MapError(err)
	}

	if s.avatars != nil {
		if avatarPath, err := s.avatars.Generate(user.ID); err == nil {
			if updated, err := s.users.Update(ctx, user.ID, domain.UserChanges{Avatar: &avatarPath}); err == nil {
				user = updated
			}
		} else {
			s.logger.Warn("avatar creation failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:    events.EventUserCreated,
		ActorID: &actorID,
		Payload: events.UserEventPayload{Username: user.Username},
	})
	return user, nil
}

// Update applies a partial update to the target user. The actor's role
// is re-read from the store, and the admin authorization policy decides
// which submitted fields survive: self-service callers silently lose
// role and password.
func (s *UserService) Update(ctx context.Context, actorID, targetID string, update auth.UserUpdate) (*domain.User, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnknownSubject()
		}
		return nil, apperrors.MapError(err)
	}

	update, err = auth.FilterUpdate(actor.Role, update)
	if err != nil {
		return nil, err
	}

	var email, username string
	if update.Email != nil {
		email = *update.Email
	}
	if update.Username != nil {
		username = *update.Username
	}
	if err := s.checkUnique(ctx, email, username, targetID); err != nil {
		return nil, err
	}

	changes := domain.UserChanges{
		Name:     update.Name,
		Forename: update.Forename,
		Email:    update.Email,
		Username: update.Username,
		Avatar:   update.Avatar,
	}
	if update.Role != nil {
		role, err := auth.ParseRole(*update.Role)
		if err != nil {
			return nil, err
		}
		changes.Role = &role
	}
	if update.Password != nil {
		hash, err := auth.HashPassword(*update.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		changes.PasswordHash = &hash
	}

	user, err := s.users.Update(ctx, targetID, changes)
	if err != nil {
		switch err {
		case pgx.ErrNoRows:
			return nil, apperrors.NewUnknownSubject()
		case repository.ErrDuplicate:
			return nil, apperrors.NewConflict("email or username taken")
		}
		return nil, apperrors.MapError(err)
	}

	if actor.IsAdmin() {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:    events.EventUserUpdated,
			ActorID: &actorID,
			Payload: events.UserEventPayload{Username: user.Username},
		})
	}
	return user, nil
}

// Delete removes a user on behalf of an admin actor, cleaning up the
// stored avatar file.
func (s *UserService) Delete(ctx context.Context, actorID, targetID string) (*domain.User, error) {
	user, err := s.users.Delete(ctx, targetID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnknownSubject()
		}
		return nil, apperrors.MapError(err)
	}

	s.removeAvatar(user)

	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:    events.EventUserDeleted,
		ActorID: &actorID,
		Payload: events.UserEventPayload{Username: user.Username},
	})
	return user, nil
}

// UpdatePassword changes a user's password after verifying the current one.
func (s *UserService) UpdatePassword(ctx context.Context, targetID, current, newPassword, confirm string) error {
	if current == "" || newPassword == "" || confirm == "" {
		return apperrors.NewMissingFields()
	}

	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnknownSubject()
		}
		return apperrors.MapError(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, current); err != nil {
		return apperrors.NewValidationError("current password incorrect", nil)
	}
	if !auth.ValidPassword(newPassword) {
		return apperrors.NewValidationError("password does not meet requirements", nil)
	}
	if newPassword != confirm {
		return apperrors.NewValidationError("passwords do not match", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	if _, err := s.users.Update(ctx, targetID, domain.UserChanges{PasswordHash: &hash}); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// DeleteAccount removes the actor's own account after a password check.
func (s *UserService) DeleteAccount(ctx context.Context, actorID, password string) error {
	if password == "" {
		return apperrors.NewMissingFields()
	}

	user, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnknownSubject()
		}
		return apperrors.MapError(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return apperrors.NewValidationError("password incorrect", nil)
	}

	deleted, err := s.users.Delete(ctx, actorID)
	if err != nil {
		return apperrors.MapError(err)
	}

	s.removeAvatar(deleted)

	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:    events.EventAccountDeleted,
		ActorID: &actorID,
		Payload: events.UserEventPayload{Username: deleted.Username},
	})
	return nil
}

// GeneratePassword returns a random password satisfying the policy.
func (s *UserService) GeneratePassword() (string, error) {
	pw, err := auth.GeneratePassword()
	if err != nil {
		return "", apperrors.MapError(err)
	}
	return pw, nil
}

// AuthTypeStats returns chart data with the user count per auth type.
func (s *UserService) AuthTypeStats(ctx context.Context) ([]AuthTypeStat, error) {
	counts, err := s.users.CountByAuthType(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := make([]AuthTypeStat, 0, len(domain.AuthTypes()))
	for _, authType := range domain.AuthTypes() {
		label := string(authType)
		if label != "" {
			label = string(label[0]-'a'+'A') + label[1:]
		}
		stats = append(stats, AuthTypeStat{Label: label, Value: counts[authType]})
	}
	return stats, nil
}

// SetAvatar stores a new avatar URL path on the user, removing the old
// file first.
func (s *UserService) SetAvatar(ctx context.Context, targetID, avatarPath string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnknownSubject()
		}
		return nil, apperrors.MapError(err)
	}

	s.removeAvatar(user)

	updated, err := s.users.Update(ctx, targetID, domain.UserChanges{Avatar: &avatarPath})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return updated, nil
}

// Get loads a single user.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnknownSubject()
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *UserService) checkUnique(ctx context.Context, email, username, excludeID string) error {
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

func (s *UserService) removeAvatar(user *domain.User) {
	if s.avatars == nil || user == nil || user.Avatar == "" {
		return
	}
	if err := s.avatars.Remove(user.Avatar); err != nil {
		s.logger.Warn("avatar cleanup failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}
