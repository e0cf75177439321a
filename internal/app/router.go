package app

import "strings"

// Route is a navigable location of the TUI.
type Route string

const (
	RouteDashboard Route = "/"
	RouteLogin     Route = "/login"
	RouteRegister  Route = "/register"
)

// Guarded reports whether r requires a session.
func (r Route) Guarded() bool {
	return r == RouteDashboard
}

// Resolve maps a path to a known route. Unknown paths land on the dashboard.
func Resolve(path string) Route {
	p := strings.TrimSpace(path)
	if p != "/" {
		p = strings.TrimRight(p, "/")
	}
	switch Route(p) {
	case RouteLogin:
		return RouteLogin
	case RouteRegister:
		return RouteRegister
	default:
		return RouteDashboard
	}
}

// Resolution is the outcome of a guard check.
type Resolution struct {
	Route Route
	// From is the route the user asked for when they were redirected to
	// login; empty otherwise.
	From Route
}

// Guard decides where a navigation request ends up. Signed-out users are
// sent to login and remember where they were going; signed-in users never
// see the login or register screens.
func Guard(requested Route, authenticated bool) Resolution {
	switch {
	case requested.Guarded() && !authenticated:
		return Resolution{Route: RouteLogin, From: requested}
	case !requested.Guarded() && authenticated:
		return Resolution{Route: RouteDashboard}
	default:
		return Resolution{Route: requested}
	}
}

// AfterLogin returns where to go once signed in.
func AfterLogin(from Route) Route {
	if from == "" {
		return RouteDashboard
	}
	return Guard(from, true).Route
}
