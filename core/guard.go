package core

import "sync"

// Default redirect destinations, matching the platform's route table.
const (
	DefaultLoginPath        = "/auth/login"
	DefaultUnauthorizedPath = "/unauthorized"
)

// Decision is the outcome of a guard check.
type Decision int

const (
	// DecisionChecking means the check has not resolved yet. Nothing may be
	// rendered: protected content must not flash before the first committed
	// state is observed.
	DecisionChecking Decision = iota
	DecisionAuthorized
	DecisionRedirectLogin
	DecisionRedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case DecisionChecking:
		return "checking"
	case DecisionAuthorized:
		return "authorized"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectUnauthorized:
		return "redirect-unauthorized"
	default:
		return "unknown"
	}
}

// Guard gates a protected subtree on session state, with an optional
// required role. Role comparison happens on canonical values; raw
// requirements go through ParseRole before they reach the guard.
type Guard struct {
	RequiredRole     *Role
	LoginPath        string
	UnauthorizedPath string
}

// RequireRole builds a guard for a raw role declaration ("lawyer", "CLIENT").
func RequireRole(raw string) (Guard, error) {
	role, err := ParseRole(raw)
	if err != nil {
		return Guard{}, err
	}
	return Guard{RequiredRole: &role}, nil
}

// Evaluate checks a committed state against the guard. It returns the
// decision and, for redirects, the destination path.
//
//  1. Unauthenticated visitors go to the login destination.
//  2. Authenticated visitors with the wrong role go to the unauthorized
//     destination; their session is left intact.
//  3. Everyone else is authorized.
func (g Guard) Evaluate(st State) (Decision, string) {
	if !st.IsAuthenticated {
		return DecisionRedirectLogin, g.loginPath()
	}
	if g.RequiredRole != nil && (st.User == nil || st.User.Role != *g.RequiredRole) {
		return DecisionRedirectUnauthorized, g.unauthorizedPath()
	}
	return DecisionAuthorized, ""
}

func (g Guard) loginPath() string {
	if g.LoginPath == "" {
		return DefaultLoginPath
	}
	return g.LoginPath
}

func (g Guard) unauthorizedPath() string {
	if g.UnauthorizedPath == "" {
		return DefaultUnauthorizedPath
	}
	return g.UnauthorizedPath
}

// GuardWatcher binds a Guard to a Store for the lifetime of a mounted
// protected view. The check re-runs on every committed state, so a logout
// while the view is open redirects immediately. Redirection is synchronous
// relative to the state change that triggered it.
type GuardWatcher struct {
	guard    Guard
	store    *Store
	navigate func(path string)

	mu          sync.Mutex
	decision    Decision
	unsubscribe func()
}

// NewGuardWatcher creates an unmounted watcher. navigate is invoked with the
// redirect destination whenever a check resolves to a redirect.
func NewGuardWatcher(store *Store, guard Guard, navigate func(path string)) *GuardWatcher {
	return &GuardWatcher{
		guard:    guard,
		store:    store,
		navigate: navigate,
	}
}

// Mount runs the initial check and subscribes to future commits. Before
// Mount the watcher reports DecisionChecking and renders nothing.
func (w *GuardWatcher) Mount() {
	w.unsubscribe = w.store.Subscribe(func(st State) {
		w.check(st)
	})
	w.check(w.store.Snapshot())
}

// Unmount stops watching. The last decision remains readable.
func (w *GuardWatcher) Unmount() {
	if w.unsubscribe != nil {
		w.unsubscribe()
		w.unsubscribe = nil
	}
}

// Decision returns the latest resolved decision.
func (w *GuardWatcher) Decision() Decision {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.decision
}

// ShouldRender reports whether the protected subtree may be rendered.
func (w *GuardWatcher) ShouldRender() bool {
	return w.Decision() == DecisionAuthorized
}

func (w *GuardWatcher) check(st State) {
	decision, target := w.guard.Evaluate(st)

	w.mu.Lock()
	changed := decision != w.decision
	w.decision = decision
	w.mu.Unlock()

	if changed && target != "" && w.navigate != nil {
		w.navigate(target)
	}
}
