package domain

import "time"

// Role is an access-level tag gating route and action visibility.
type Role string

const (
	RoleAdmin       Role = "Admin"
	RoleManager     Role = "Manager"
	RoleLeadManager Role = "Lead Manager"
	RoleEmployee    Role = "Employee"
	RoleGuest       Role = "Guest"
)

// ValidRole reports whether r is a recognized role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleLeadManager, RoleEmployee, RoleGuest:
		return true
	}
	return false
}

// Profile is an authenticated user's role profile, stored in the backend
// profiles table.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// AuthCredential represents stored credentials in the database.
type AuthCredential struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	PasswordHash      string     `json:"password_hash"`
	FailedAttempts    int        `json:"failed_attempts"`
	LockedUntil       *time.Time `json:"locked_until,omitempty"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
}

// AuthRefreshToken represents a refresh token stored in the database.
type AuthRefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// ============================================================
// Auth — Request / Response types (matches frontend API contract)
// ============================================================

// RegisterRequest is the body for POST /v1/auth/register.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required,min=2,max=120"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Role        Role   `json:"role,omitempty"`
}

// RegisterResponse is the body for 201 from POST /v1/auth/register.
type RegisterResponse struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	Message string `json:"message"`
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	Role         Role   `json:"role"`
	LandingRoute string `json:"landingRoute"`
}

// RefreshRequest is the body for POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// PasswordResetRequestBody is the body for POST /v1/auth/password/reset-request.
type PasswordResetRequestBody struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetRequestResponse is the response for reset-request.
type PasswordResetRequestResponse struct {
	Message     string `json:"message"`
	MaskedEmail string `json:"maskedEmail"`
	ExpiresIn   int    `json:"expiresIn"`
}

// PasswordRecoverRequest is the body for POST /v1/auth/password/recover.
// The token pair arrives as `access_token` / `refresh_token` query
// parameters on the recovery URL; the handler copies them in here.
type PasswordRecoverRequest struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	NewPassword  string `json:"newPassword" validate:"required,min=8,max=72"`
}

// ChangePasswordRequest is the body for PUT /v1/auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

// UpdateRoleRequest is the body for PUT /v1/admin/users/{id}/role.
type UpdateRoleRequest struct {
	Role Role `json:"role" validate:"required"`
}

// ============================================================
// Route policy
// ============================================================

// LoginRoute is where unauthenticated users are sent.
const LoginRoute = "/login"

// routePolicy maps a frontend route to the roles allowed to enter it.
// A route absent from the map is open to any authenticated non-guest role.
var routePolicy = map[string][]Role{
	"/dashboard":       {RoleAdmin, RoleManager, RoleLeadManager, RoleEmployee},
	"/leads":           {RoleAdmin, RoleManager, RoleLeadManager, RoleEmployee},
	"/campaigns":       {RoleAdmin, RoleManager, RoleLeadManager},
	"/calendar":        {RoleAdmin, RoleManager, RoleLeadManager, RoleEmployee},
	"/notifications":   {RoleAdmin, RoleManager, RoleLeadManager, RoleEmployee},
	"/settings":        {RoleAdmin, RoleManager, RoleLeadManager, RoleEmployee},
	"/admin/users":     {RoleAdmin},
	"/admin/settings":  {RoleAdmin},
	"/admin/analytics": {RoleAdmin, RoleManager},
}

// landingRoutes is each role's designated default landing route, used as
// the redirect destination when a route check fails.
var landingRoutes = map[Role]string{
	RoleAdmin:       "/admin/analytics",
	RoleManager:     "/dashboard",
	RoleLeadManager: "/leads",
	RoleEmployee:    "/leads",
	RoleGuest:       LoginRoute,
}

// LandingRoute returns the default landing route for a role.
func LandingRoute(r Role) string {
	if route, ok := landingRoutes[r]; ok {
		return route
	}
	return LoginRoute
}

// RoleMayAccess reports whether the role may enter the given route.
func RoleMayAccess(r Role, route string) bool {
	allowed, ok := routePolicy[route]
	if !ok {
		return r != RoleGuest && ValidRole(r)
	}
	for _, a := range allowed {
		if a == r {
			return true
		}
	}
	return false
}

// KnownRoutes returns the routes the role may access, for building
// role-dependent navigation.
func KnownRoutes(r Role) []string {
	routes := make([]string, 0, len(routePolicy))
	for route := range routePolicy {
		if RoleMayAccess(r, route) {
			routes = append(routes, route)
		}
	}
	return routes
}

// ============================================================
// Guard decision
// ============================================================

// GuardOutcome is the terminal result of a guard evaluation.
type GuardOutcome string

const (
	GuardAllow    GuardOutcome = "allow"
	GuardRedirect GuardOutcome = "redirect"
	GuardError    GuardOutcome = "error"
)

// GuardDecision is what the navigation guard tells the caller to do for a
// given path.
type GuardDecision struct {
	Outcome    GuardOutcome `json:"outcome"`
	RedirectTo string       `json:"redirect_to,omitempty"`
	Reason     string       `json:"reason,omitempty"`
}
