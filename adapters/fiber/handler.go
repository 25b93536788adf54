package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/legalaipro/lexauth"
	"github.com/legalaipro/lexauth/services"
)

// registerRequest is the registration wire shape; the raw role string is
// normalized before it reaches the account service.
type registerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Country   string `json:"country"`
	BarNumber string `json:"barNumber"`
	IsFirm    bool   `json:"isFirm"`
	FirmName  string `json:"firmName"`
}

func (a *Adapter) register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	role, err := lexauth.ParseRole(req.Role)
	if err != nil {
		return handleAuthError(c, err)
	}

	input := services.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		Country:  req.Country,
		IsFirm:   req.IsFirm,
	}
	if req.BarNumber != "" {
		input.BarNumber = &req.BarNumber
	}
	if req.IsFirm && req.FirmName != "" {
		input.FirmName = &req.FirmName
	}

	result, err := a.auth.Accounts.SignUp(input, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return handleAuthError(c, err)
	}

	a.setSessionCookie(c, result)
	return c.Status(http.StatusCreated).JSON(result)
}

func (a *Adapter) login(c fiber.Ctx) error {
	var input services.SignInInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := a.auth.Accounts.SignIn(input, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return handleAuthError(c, err)
	}

	a.setSessionCookie(c, result)
	return c.Status(http.StatusOK).JSON(result)
}

func (a *Adapter) logout(c fiber.Ctx) error {
	token := c.Locals(localToken).(string)

	if err := a.auth.Accounts.SignOut(token); err != nil {
		return handleAuthError(c, err)
	}

	a.clearSessionCookie(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "signed out successfully",
	})
}

func (a *Adapter) refresh(c fiber.Ctx) error {
	token := c.Locals(localToken).(string)

	result, err := a.auth.Accounts.Refresh(token)
	if err != nil {
		return handleAuthError(c, err)
	}

	a.setSessionCookie(c, result)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"token": result.Token,
		"user":  result.User,
	})
}

func (a *Adapter) getMe(c fiber.Ctx) error {
	user := c.Locals(localUser).(*lexauth.User)
	return c.Status(http.StatusOK).JSON(user)
}

func (a *Adapter) updateMe(c fiber.Ctx) error {
	user := c.Locals(localUser).(*lexauth.User)

	var update lexauth.ProfileUpdate
	if err := c.Bind().Body(&update); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	updated, err := a.auth.Accounts.UpdateProfile(user.ID, update)
	if err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(http.StatusOK).JSON(updated)
}

// sessionCookie carries the session token for browser navigation, where no
// script attaches the Authorization header.
const sessionCookie = "access_token"

func (a *Adapter) setSessionCookie(c fiber.Ctx, result *services.AuthResult) {
	if result.Session == nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    result.Token,
		Expires:  result.Session.ExpiresAt,
		Path:     "/",
		HTTPOnly: true,
		Secure:   a.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (a *Adapter) clearSessionCookie(c fiber.Ctx) {
	c.ClearCookie(sessionCookie)
}

// extractToken extracts the authentication token from the request.
// Checks Authorization header (Bearer token) first, then falls back to cookie.
func extractToken(c fiber.Ctx) string {
	// Try Bearer token first
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}

	// Fall back to cookie
	return c.Cookies(sessionCookie)
}

// handleAuthError maps exchange errors to the error payload the client's
// message extraction expects.
func handleAuthError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// mapErrorToStatus maps lexauth error types to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, lexauth.ErrUserExists):
		return http.StatusConflict

	case errors.Is(err, lexauth.ErrInvalidCredentials),
		errors.Is(err, lexauth.ErrUserNotFound),
		errors.Is(err, lexauth.ErrInvalidToken),
		errors.Is(err, lexauth.ErrSessionNotFound),
		errors.Is(err, lexauth.ErrSessionExpired):
		return http.StatusUnauthorized

	case errors.Is(err, lexauth.ErrNameRequired),
		errors.Is(err, lexauth.ErrEmailRequired),
		errors.Is(err, lexauth.ErrPasswordRequired),
		errors.Is(err, lexauth.ErrPasswordMismatch),
		errors.Is(err, lexauth.ErrPasswordTooShort),
		errors.Is(err, lexauth.ErrPasswordTooLong),
		errors.Is(err, lexauth.ErrInvalidEmail),
		errors.Is(err, lexauth.ErrRoleRequired),
		errors.Is(err, lexauth.ErrUnknownRole),
		errors.Is(err, lexauth.ErrBarNumberRequired):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
