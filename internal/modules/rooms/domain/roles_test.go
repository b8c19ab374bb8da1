package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ResolveRoomRole_Grants_Host_To_Privileged_Roles(t *testing.T) {
	// Arrange
	room := Room{Name: "english-club", CurrentHostID: "user-a"}

	// Act
	teacherRole := ResolveRoomRole(room, "user-b", RoleTeacher)
	adminRole := ResolveRoomRole(room, "user-c", RoleAdmin)

	// Assert
	require.Equal(t, RoomRoleHost, teacherRole)
	require.Equal(t, RoomRoleHost, adminRole)
}

func Test_ResolveRoomRole_Grants_Host_To_Current_Host(t *testing.T) {
	// Arrange
	room := Room{Name: "english-club", CurrentHostID: "user-a"}

	// Act
	role := ResolveRoomRole(room, "user-a", RoleStudent)

	// Assert
	require.Equal(t, RoomRoleHost, role)
}

func Test_ResolveRoomRole_Defaults_To_Participant(t *testing.T) {
	// Arrange
	room := Room{Name: "english-club", CurrentHostID: "user-a"}

	// Act
	role := ResolveRoomRole(room, "user-b", RoleStudent)

	// Assert
	require.Equal(t, RoomRoleParticipant, role)
}

func Test_ResolveRoomRole_Ignores_Unknown_Declared_Roles(t *testing.T) {
	// Arrange
	room := Room{Name: "english-club", CurrentHostID: "user-a"}

	// Act
	role := ResolveRoomRole(room, "user-b", "moderator")

	// Assert
	require.Equal(t, RoomRoleParticipant, role)
}
