package auth

import "strings"

// Console routes
const (
	RouteHome           = "/"
	RouteLogin          = "/login"
	RouteSignup         = "/signup"
	RouteVerifyEmail    = "/verify-email"
	RouteForgotPassword = "/forgot-password"
	RouteResetPassword  = "/reset-password"
	RouteSelectRole     = "/select-role"
	RouteAdmin          = "/admin"
	RouteVendor         = "/vendor"
)

var publicRoutes = []string{
	RouteLogin,
	RouteSignup,
	RouteVerifyEmail,
	RouteForgotPassword,
	RouteResetPassword,
	RouteSelectRole,
}

// Outcome is the result of evaluating a route against a session
type Outcome int

const (
	Unauthenticated Outcome = iota
	AuthenticatedWrongSection
	AuthenticatedAllowed
)

func (o Outcome) String() string {
	switch o {
	case Unauthenticated:
		return "unauthenticated"
	case AuthenticatedWrongSection:
		return "wrong-section"
	case AuthenticatedAllowed:
		return "allowed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Decision tells the caller whether to render the route or where to go instead.
// From is set on redirects to login so a successful login can return there.
type Decision struct {
	Outcome  Outcome `json:"outcome"`
	Redirect string  `json:"redirect,omitempty"`
	From     string  `json:"from,omitempty"`
}

// Allowed reports whether the requested route may render
func (d Decision) Allowed() bool {
	return d.Outcome == AuthenticatedAllowed
}

// RequireAuth guards a generic protected route. A role outside the section it
// belongs to is sent home.
func RequireAuth(s Session, path string) Decision {
	if !s.Authenticated() {
		return toLogin(path)
	}

	p := routePath(path)
	if s.Role != "" {
		if inSection(p, RouteVendor) && s.Role != RoleVendor {
			return Decision{Outcome: AuthenticatedWrongSection, Redirect: RouteHome}
		}
		if inSection(p, RouteAdmin) && s.Role != RoleAdmin {
			return Decision{Outcome: AuthenticatedWrongSection, Redirect: RouteHome}
		}
	}

	return Decision{Outcome: AuthenticatedAllowed}
}

// AdminOnly guards the admin section. Any role other than admin, including
// none, is sent to the vendor console.
func AdminOnly(s Session, path string) Decision {
	if !s.Authenticated() {
		return toLogin(path)
	}
	if s.Role != RoleAdmin {
		return Decision{Outcome: AuthenticatedWrongSection, Redirect: RouteVendor}
	}
	return Decision{Outcome: AuthenticatedAllowed}
}

// Evaluate picks the guard that protects path and runs it. Public routes are
// always allowed.
func Evaluate(s Session, path string) Decision {
	p := routePath(path)
	for _, public := range publicRoutes {
		if inSection(p, public) {
			return Decision{Outcome: AuthenticatedAllowed}
		}
	}

	if inSection(p, RouteAdmin) {
		return AdminOnly(s, path)
	}
	return RequireAuth(s, path)
}

// LandingRoute is where a role starts after login
func LandingRoute(r Role) string {
	switch r {
	case RoleAdmin:
		return RouteAdmin
	case RoleVendor:
		return RouteVendor
	default:
		return RouteHome
	}
}

func toLogin(path string) Decision {
	return Decision{Outcome: Unauthenticated, Redirect: RouteLogin, From: path}
}

// routePath drops the query and fragment and makes path root-relative
func routePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

func inSection(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
