//go:build e2e

package gymauth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/gymauth/pkg/gymsdk"
	"github.com/stretchr/testify/require"
)

func TestAdminManagesUsers(t *testing.T) {
	s := startServer(t, relaxedLimits)
	ctx := t.Context()

	admin := s.seedAdmin(t)
	member := s.register(t, "member@gym.test")

	_, err := s.client.ListUsers(ctx, member.AccessToken, gymsdk.ListUsersFilter{})
	requireAPIError(t, err, http.StatusForbidden, gymsdk.ErrorCodeAccessDenied)

	coach, err := s.client.CreateUser(ctx, admin.AccessToken, gymsdk.CreateUserRequest{
		Email: "coach@gym.test", Password: "secret1", Name: "Coach", Role: "trainer",
	})
	require.NoError(t, err)
	require.Equal(t, "trainer", coach.Role)

	list, err := s.client.ListUsers(ctx, admin.AccessToken, gymsdk.ListUsersFilter{Role: "trainer"})
	require.NoError(t, err)
	require.Len(t, list.Users, 1)
	require.Equal(t, coach.ID, list.Users[0].ID)

	// A trainer may read members but only an admin or the owner may edit.
	trainer, err := s.client.Login(ctx, "coach@gym.test", "secret1")
	require.NoError(t, err)
	got, err := s.client.GetMember(ctx, trainer.AccessToken, member.User.ID)
	require.NoError(t, err)
	require.Equal(t, member.User.ID, got.ID)

	name := "Renamed"
	_, err = s.client.UpdateMember(ctx, trainer.AccessToken, member.User.ID, gymsdk.UpdateProfileRequest{Name: &name})
	requireAPIError(t, err, http.StatusForbidden, gymsdk.ErrorCodeAccessDenied)
	updated, err := s.client.UpdateMember(ctx, member.AccessToken, member.User.ID, gymsdk.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)

	other := s.register(t, "other@gym.test")
	_, err = s.client.GetMember(ctx, member.AccessToken, other.User.ID)
	requireAPIError(t, err, http.StatusForbidden, gymsdk.ErrorCodeAccessDenied)

	deactivated, err := s.client.ToggleUserStatus(ctx, admin.AccessToken, member.User.ID)
	require.NoError(t, err)
	require.False(t, deactivated.Active)
	_, err = s.client.Me(ctx, member.AccessToken)
	requireAPIError(t, err, http.StatusUnauthorized, gymsdk.ErrorCodeUserInactive)

	require.NoError(t, s.client.DeleteUser(ctx, admin.AccessToken, coach.ID))
	_, err = s.client.GetUser(ctx, admin.AccessToken, coach.ID)
	requireAPIError(t, err, http.StatusNotFound, gymsdk.ErrorCodeNotFound)
}
