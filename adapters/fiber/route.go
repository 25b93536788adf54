package fiber

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/legalaipro/lexauth"
)

// Adapter mounts the credential-exchange endpoints and the route-guard
// middleware onto a Fiber app.
type Adapter struct {
	app  *fiber.App
	auth *lexauth.Auth

	// CookieSecure marks the access_token cookie Secure. Set it before
	// RegisterRoutes when the app is served over TLS.
	CookieSecure bool
}

var _ lexauth.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app}
}

// RegisterRoutes binds a handler to every endpoint in the exchange
// registry. Protected endpoints run behind RequireSession.
func (a *Adapter) RegisterRoutes(auth *lexauth.Auth) error {
	a.auth = auth

	handlers := map[string]fiber.Handler{
		"register": a.register,
		"login":    a.login,
		"logout":   a.logout,
		"refresh":  a.refresh,
		"getMe":    a.getMe,
		"updateMe": a.updateMe,
	}

	for _, ep := range auth.Registry.Endpoints() {
		handler, ok := handlers[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("no handler bound for operation %q", ep.Metadata.OperationID)
		}

		// fiber v3 runs the chain in argument order, so middleware must
		// precede the bound handler.
		chain := []any{}
		if ep.Metadata.Protected {
			chain = append(chain, a.RequireSession)
		}
		chain = append(chain, handler)

		a.app.Add([]string{ep.Method}, ep.Path, chain[0], chain[1:]...)
	}

	return nil
}
