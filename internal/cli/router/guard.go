package router

// Outcome is the result of guarding one navigation
type Outcome int

const (
	Proceed Outcome = iota
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Proceed:
		return "proceed"
	case RedirectLogin:
		return "redirect-to-login"
	case RedirectHome:
		return "redirect-to-home"
	default:
		return "unknown"
	}
}

// SessionView is the part of the session the guard reads
type SessionView interface {
	IsAuthenticated() bool
	IsAdmin() bool
}

// Guard decides whether a navigation may proceed. It only reads the session,
// so an admin check made before the profile has loaded denies.
type Guard struct {
	session SessionView
}

// NewGuard creates a guard over the given session
func NewGuard(session SessionView) *Guard {
	return &Guard{session: session}
}

// Resolve returns the outcome for navigating to route
func (g *Guard) Resolve(route Route) Outcome {
	if route.RequiresAuth && !g.session.IsAuthenticated() {
		return RedirectLogin
	}
	if route.RequiresAdmin && !g.session.IsAdmin() {
		return RedirectHome
	}
	return Proceed
}
