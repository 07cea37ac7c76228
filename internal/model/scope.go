package model

// Role is the caller's platform role.
type Role string

// Known roles. Any other value resolves to no access.
const (
	RoleSuperAdmin     Role = "super_admin"
	RoleProfessor      Role = "professor"
	RoleAdminProfessor Role = "admin_professor"
)

// Caller identifies who is asking for analytics.
type Caller struct {
	UserID       int64
	Role         Role
	UniversityID int64
}

// ScopeFilter narrows the modules a caller asks about. Zero means "not set".
type ScopeFilter struct {
	ModuleID     int64
	CourseID     int64
	UniversityID int64
}
