package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/observability"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller for the lifetime of one
// request. The role is the stored role at load time, never one carried
// in the token.
type Principal struct {
	User *domain.User
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens     *TokenManager
	users      repository.UserRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, dispatcher events.Dispatcher, metrics *observability.Metrics) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, dispatcher: dispatcher, metrics: metrics}
}

// Handle enforces authentication for protected routes. When a role is
// given, the loaded user must hold it; rejected privileged attempts are
// written to the activity log as a side effect.
func (m *AuthMiddleware) Handle(requiredRole ...domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			m.metrics.RecordAuthFailure("missing_header")
			return apperrors.NewUnauthenticated("expired_session")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.metrics.RecordAuthFailure("missing_header")
			return apperrors.NewUnauthenticated("expired_session")
		}

		subjectID, err := m.tokens.Parse(parts[1])
		if err != nil {
			m.metrics.RecordAuthFailure("invalid_token")
			return apperrors.NewInvalidToken("access token is invalid")
		}

		user, err := m.users.GetByID(c.Context(), subjectID)
		if err != nil {
			if err == pgx.ErrNoRows {
				m.metrics.RecordAuthFailure("unknown_subject")
				return apperrors.NewUnknownSubject()
			}
			return apperrors.MapError(err)
		}

		if len(requiredRole) > 0 && user.Role != requiredRole[0] {
			m.metrics.RecordAuthFailure("role_mismatch")
			_ = m.dispatcher.Publish(c.Context(), events.Event{
				Type:    events.EventAccessDenied,
				ActorID: &user.ID,
				Payload: events.AccessDeniedPayload{Username: user.Username, Path: c.Path()},
			})
			return apperrors.NewForbidden("access restricted")
		}

		c.Locals(principalKey, &Principal{User: user})
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
