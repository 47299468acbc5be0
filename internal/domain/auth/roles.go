package auth

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var Roles = []string{RoleUser, RoleAdmin}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
