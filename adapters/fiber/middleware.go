package fiber

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/legalaipro/lexauth"
	"github.com/legalaipro/lexauth/core"
)

// Context locals set by RequireSession for downstream handlers.
const (
	localUser    = "user"
	localSession = "session"
	localToken   = "token"
)

// RequireSession validates the request's token and stores the resolved
// identity in the context. Unauthenticated browser navigation is redirected
// to the login page; API clients get 401 JSON.
func (a *Adapter) RequireSession(c fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return a.deny(c, core.DecisionRedirectLogin, core.DefaultLoginPath, lexauth.ErrMissingAuthHeader)
	}

	sessionData, err := a.auth.Accounts.GetSession(token)
	if err != nil {
		return a.deny(c, core.DecisionRedirectLogin, core.DefaultLoginPath, err)
	}

	// Store user and session in context for downstream handlers
	c.Locals(localUser, sessionData.User)
	c.Locals(localSession, sessionData.Session)
	c.Locals(localToken, token)

	return c.Next()
}

// RequireRole builds route-guard middleware for a raw role declaration
// ("lawyer", "CLIENT"). It runs after RequireSession and evaluates the same
// guard the client uses: wrong-role visitors are sent to the unauthorized
// page with their session intact.
//
// Panics on an unknown role so a bad route declaration fails at startup.
func (a *Adapter) RequireRole(raw string) fiber.Handler {
	guard, err := lexauth.RequireRole(raw)
	if err != nil {
		panic("RequireRole: " + err.Error())
	}

	return func(c fiber.Ctx) error {
		state := core.State{}
		if user, ok := c.Locals(localUser).(*lexauth.User); ok && user != nil {
			if token, ok := c.Locals(localToken).(string); ok && token != "" {
				state = core.State{User: user, Token: token, IsAuthenticated: true}
			}
		}

		decision, target := guard.Evaluate(state)
		if decision == core.DecisionAuthorized {
			return c.Next()
		}

		slog.Warn("route guard denied",
			"path", c.Path(),
			"decision", decision.String(),
			"required_role", guard.RequiredRole.String(),
		)
		return a.deny(c, decision, target, nil)
	}
}

// deny redirects browser navigation and answers API clients with JSON.
func (a *Adapter) deny(c fiber.Ctx, decision core.Decision, target string, cause error) error {
	if c.Accepts("text/html") != "" {
		return c.Redirect().Status(http.StatusFound).To(target)
	}

	status := http.StatusUnauthorized
	if decision == core.DecisionRedirectUnauthorized {
		status = http.StatusForbidden
	}

	message := "unauthorized"
	if cause != nil {
		message = cause.Error()
	} else if decision == core.DecisionRedirectUnauthorized {
		message = "insufficient permissions"
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
