// ABOUTME: Route guard deciding whether a navigation may enter its target view
// ABOUTME: Evaluates the session on every call; decisions are never cached

package guard

import "strings"

// Route paths
const (
	RouteRoot      = "/"
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"
)

// State of the guard for a single evaluation
type State int

const (
	Locked State = iota
	Unlocked
)

func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// Checker reports whether the current session is authenticated
type Checker interface {
	IsAuthenticated() bool
}

// Decision is the outcome of a navigation attempt
type Decision struct {
	// Requested is the normalized path that was asked for
	Requested string
	// Target is the route to render
	Target string
	State  State
}

// Redirected reports whether the navigation landed somewhere other than requested
func (d Decision) Redirected() bool {
	return d.Requested != d.Target
}

// Denied reports a protected route turned away for lack of a session
func (d Decision) Denied() bool {
	return d.Requested == RouteDashboard && d.Target != RouteDashboard
}

// Guard resolves navigation requests against the session
type Guard struct {
	checker Checker
}

// New creates a guard over checker
func New(checker Checker) *Guard {
	return &Guard{checker: checker}
}

// Protected reports whether path requires an authenticated session
func Protected(path string) bool {
	return normalize(path) == RouteDashboard
}

// Resolve decides where a navigation to path lands. The session is read on
// every call.
func (g *Guard) Resolve(path string) Decision {
	requested := normalize(path)
	state := Locked
	if g.checker.IsAuthenticated() {
		state = Unlocked
	}

	d := Decision{Requested: requested, State: state}
	switch requested {
	case RouteLogin:
		d.Target = RouteLogin
	case RouteDashboard:
		if state == Unlocked {
			d.Target = RouteDashboard
		} else {
			d.Target = RouteLogin
		}
	case RouteRoot:
		if state == Unlocked {
			d.Target = RouteDashboard
		} else {
			d.Target = RouteLogin
		}
	default:
		d.Target = RouteLogin
	}
	return d
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return RouteRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = RouteRoot
		}
	}
	return path
}
