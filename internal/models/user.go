package models

// Role represents what a control API caller may do
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Actions checked by the control API
const (
	ActionSpawn        = "spawn"
	ActionViewVehicles = "view_vehicles"
	ActionViewStats    = "view_stats"
	ActionViewRuns     = "view_runs"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}

// Claims represents JWT claims
type Claims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Exp      int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	default:
		return false
	}
}

// HasPermission checks if a role may perform a specific action
func (r Role) HasPermission(action string) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleOperator:
		return action == ActionSpawn || action == ActionViewVehicles ||
			action == ActionViewStats || action == ActionViewRuns
	case RoleViewer:
		return action == ActionViewVehicles || action == ActionViewStats ||
			action == ActionViewRuns
	default:
		return false
	}
}
