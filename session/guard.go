package session

import "context"

// LandingRoute is the only route reachable without a session.
const LandingRoute = "/"

// Guard decides whether route may be shown. Without a stored session every
// route other than the landing route redirects to the landing route.
func (s *Store) Guard(ctx context.Context, route string) (redirect string, allowed bool) {
	if route == LandingRoute {
		return "", true
	}
	if !s.HasSession(ctx) {
		s.log.Debug().Str("route", route).Msg("no session, redirecting to landing")
		return LandingRoute, false
	}
	return "", true
}
