package rbac

// Role names. Keep these stable; they are part of the token contract with
// the identity provider.
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleViewer = "viewer" // read-only: may look at the board, never mutate
)

func IsAdmin(role string) bool { return role == RoleAdmin }
