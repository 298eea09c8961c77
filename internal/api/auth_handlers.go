package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/gridpulse/internal/auth"
)

// userEmailKey is the context key the auth middleware stores the
// authenticated email under.
const userEmailKey = "user_email"

// requireAuth rejects requests without a valid bearer token and records
// the token subject for handlers.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}

		email, err := s.deps.Tokens.Parse(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set(userEmailKey, email)
		return next(c)
	}
}

// RegisterRequest is the request body for POST /register.
type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// LoginRequest is the request body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the response body for POST /login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

// EditUserRequest is the request body for PUT /edit-user. Empty optional
// fields are left unchanged.
type EditUserRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	u, err := s.deps.Auth.Register(c.Request().Context(), req.Email, req.FirstName, req.LastName, req.Password)
	if errors.Is(err, auth.ErrEmailTaken) {
		return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
	}
	if err != nil {
		s.logger.Error("register failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
	}

	return c.JSON(http.StatusOK, u)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	session, err := s.deps.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		s.logger.Error("login failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		Email:       session.User.Email,
		FirstName:   session.User.FirstName,
		LastName:    session.User.LastName,
	})
}

func (s *Server) handleEditUser(c echo.Context) error {
	var req EditUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.CurrentPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and currentPassword are required")
	}

	err := s.deps.Auth.EditUser(c.Request().Context(), auth.EditParams{
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		NewPassword:     req.NewPassword,
	})
	switch {
	case errors.Is(err, auth.ErrWrongPassword):
		return echo.NewHTTPError(http.StatusForbidden, "wrong password")
	case errors.Is(err, auth.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case err != nil:
		s.logger.Error("edit user failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "update failed")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "user updated"})
}
