package middleware

import "course-manager/internal/model"

type Operation string

const (
	OpAuthUpdateRole Operation = "auth.update_role"

	OpCourseList   Operation = "courses.list"
	OpCourseGet    Operation = "courses.get"
	OpCourseCreate Operation = "courses.create"
	OpCourseUpdate Operation = "courses.update"
	OpCourseDelete Operation = "courses.delete"

	OpUserList   Operation = "users.list"
	OpUserGet    Operation = "users.get"
	OpUserUpdate Operation = "users.update"
	OpUserDelete Operation = "users.delete"

	OpUserSelfGet    Operation = "users.self.get"
	OpUserSelfUpdate Operation = "users.self.update"
	OpUserSelfDelete Operation = "users.self.delete"
)

var adminOnly = []model.Role{model.RoleSuperAdmin}

// permissions lists the roles allowed per operation. Operations missing from
// the table, or mapped to no roles, only need an authenticated caller.
var permissions = map[Operation][]model.Role{
	OpAuthUpdateRole: nil,

	OpCourseList:   nil,
	OpCourseGet:    nil,
	OpCourseCreate: adminOnly,
	OpCourseUpdate: adminOnly,
	OpCourseDelete: adminOnly,

	OpUserList:   adminOnly,
	OpUserGet:    adminOnly,
	OpUserUpdate: adminOnly,
	OpUserDelete: adminOnly,

	OpUserSelfGet:    nil,
	OpUserSelfUpdate: nil,
	OpUserSelfDelete: nil,
}

func RolesFor(op Operation) []model.Role {
	return permissions[op]
}
