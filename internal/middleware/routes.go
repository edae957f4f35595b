package middleware

import "strings"

// RouteClass is the access-control category of a request path.
type RouteClass int

const (
	// RoutePublic matches an explicit public prefix, or nothing at all.
	RoutePublic RouteClass = iota
	// RouteAuth matches a sign-in/sign-up flow prefix.
	RouteAuth
	// RouteProtected matches a dashboard prefix and requires a session.
	RouteProtected
	// RoutePublicEventDetail is an /events/<slug> detail page: public even
	// though /events alone is protected.
	RoutePublicEventDetail
)

// String implements fmt.Stringer for logs and tests.
func (c RouteClass) String() string {
	switch c {
	case RouteAuth:
		return "auth"
	case RouteProtected:
		return "protected"
	case RoutePublicEventDetail:
		return "public-event-detail"
	default:
		return "public"
	}
}

// RouteTable holds the prefix lists the classifier matches against. It is
// plain data so tests and deployments can swap tables without touching
// package state.
type RouteTable struct {
	Public    []string
	Auth      []string
	Protected []string
}

// DefaultRouteTable returns the route table the Gatherly web app ships with.
func DefaultRouteTable() RouteTable {
	return RouteTable{
		Public:    []string{"/", "/about", "/pricing", "/contact"},
		Auth:      []string{"/sign-in", "/sign-up"},
		Protected: []string{"/dashboard", "/events", "/analytics", "/settings", "/scanner", "/events/create", "/events/edit"},
	}
}

// Classify maps a request path to its route class. Matching is prefix based.
// Auth prefixes win first; an /events/... path that is not /events/create and
// does not contain /edit is a public event detail page; then protected
// prefixes; then public prefixes. Anything unmatched is treated as public so
// the gate forwards it.
func Classify(table RouteTable, path string) RouteClass {
	if matchesPrefix(table.Auth, path) {
		return RouteAuth
	}
	if isPublicEventDetail(path) {
		return RoutePublicEventDetail
	}
	if matchesPrefix(table.Protected, path) {
		return RouteProtected
	}
	return RoutePublic
}

// isPublicEventDetail reports whether path is an /events/<something> detail
// page. /events/create and any path containing /edit are excluded and fall
// through to the protected check.
func isPublicEventDetail(path string) bool {
	if !strings.HasPrefix(path, "/events/") {
		return false
	}
	if path == "/events/create" || strings.HasPrefix(path, "/events/create/") {
		return false
	}
	if strings.Contains(path, "/edit") {
		return false
	}
	return true
}

func matchesPrefix(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
