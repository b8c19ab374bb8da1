package domain

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

const (
	RoomRoleHost        = "host"
	RoomRoleParticipant = "participant"
)

// privilegedRoles are the platform roles that receive host privileges
// in any room they join.
var privilegedRoles = map[string]struct{}{
	RoleTeacher: {},
	RoleAdmin:   {},
}

func IsPrivilegedRole(role string) bool {
	_, ok := privilegedRoles[role]
	return ok
}

// ResolveRoomRole decides the effective in-room role for a requester:
// host when their platform role is privileged or they currently hold
// the room's host token, participant otherwise.
func ResolveRoomRole(room Room, identity, declaredRole string) string {
	if IsPrivilegedRole(declaredRole) || identity == room.CurrentHostID {
		return RoomRoleHost
	}

	return RoomRoleParticipant
}
