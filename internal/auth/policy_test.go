package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/domain"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

func strPtr(s string) *string { return &s }

func TestFilterUpdateStripsPrivilegedFieldsForNonAdmin(t *testing.T) {
	t.Parallel()

	update := UserUpdate{
		Username: strPtr("newname"),
		Role:     strPtr("admin"),
		Password: strPtr("x"),
	}

	filtered, err := FilterUpdate(domain.RoleUser, update)
	require.NoError(t, err)

	// The rest of the update proceeds; privileged fields vanish silently.
	require.NotNil(t, filtered.Username)
	require.Equal(t, "newname", *filtered.Username)
	require.Nil(t, filtered.Role)
	require.Nil(t, filtered.Password)
}

func TestFilterUpdateKeepsPrivilegedFieldsForAdmin(t *testing.T) {
	t.Parallel()

	update := UserUpdate{
		Role:     strPtr("user"),
		Password: strPtr("N3w!passw"),
	}

	filtered, err := FilterUpdate(domain.RoleAdmin, update)
	require.NoError(t, err)
	require.NotNil(t, filtered.Role)
	require.NotNil(t, filtered.Password)
}

func TestFilterUpdateRejectsUnknownRoleFromAdmin(t *testing.T) {
	t.Parallel()

	_, err := FilterUpdate(domain.RoleAdmin, UserUpdate{Role: strPtr("superuser")})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, "INVALID_ROLE", domainErr.Code)
	require.Equal(t, 400, domainErr.HTTPStatus)
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	role, err := ParseRole("admin")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, role)

	role, err = ParseRole("USER")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, role)

	_, err = ParseRole("root")
	require.Error(t, err)
}

func TestCanAdminister(t *testing.T) {
	t.Parallel()

	require.False(t, CanAdminister(nil))
	require.False(t, CanAdminister(&domain.User{Role: domain.RoleUser}))
	require.True(t, CanAdminister(&domain.User{Role: domain.RoleAdmin}))
}
