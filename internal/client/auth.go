package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pasc-cca/ccadash/internal/session"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthUser is the account returned by the login endpoints
type AuthUser struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Year       int    `json:"year,omitempty"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

type RegisterRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	StudentID  string `json:"studentId,omitempty"`
	Department string `json:"department,omitempty"`
	Year       int    `json:"year,omitempty" validate:"omitempty,min=1,max=5"`
	Phone      string `json:"phone,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type AuthAPI struct {
	c *Client
}

// Login signs in as a student (role user) or admin and persists the returned token and role.
func (a *AuthAPI) Login(ctx context.Context, email, password string, role session.Role) (*Response[LoginResponse], error) {
	if err := validate().Var(string(role), "oneof=user admin"); err != nil {
		return nil, NewClientValidationError("Please choose either the student or the admin login.", fmt.Errorf("role %q: %w", role, err))
	}

	path := fmt.Sprintf("/auth/%s/login", role)
	res, err := call[LoginResponse](ctx, a.c, http.MethodPost, path, nil, LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	if !res.Success || res.Data.Token == "" {
		return res, nil
	}

	persisted := role
	if res.Data.User.Role != "" {
		persisted = session.ParseRole(strings.ToLower(res.Data.User.Role))
	}

	if err := a.c.store.Set(res.Data.Token, persisted); err != nil {
		return nil, NewClientInternalError(err, "saving the session after login")
	}

	a.c.logger.Debug("session started",
		slog.String("component", "AuthAPI.Login"),
		slog.String("role", string(persisted)),
	)
	return res, nil
}

func (a *AuthAPI) Register(ctx context.Context, req RegisterRequest) (*Response[AuthUser], error) {
	return call[AuthUser](ctx, a.c, http.MethodPost, "/auth/user/register", nil, req)
}

func (a *AuthAPI) ChangePassword(ctx context.Context, oldPassword, newPassword string) (*Ack, error) {
	return ack(ctx, a.c, http.MethodPost, "/auth/change-password", ChangePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
}

func (a *AuthAPI) ResetPassword(ctx context.Context, email string) (*Ack, error) {
	return ack(ctx, a.c, http.MethodPost, "/auth/reset-password", ResetPasswordRequest{Email: email})
}

// Logout clears the persisted session. The backend keeps no server side session so no request is made.
func (a *AuthAPI) Logout() error {
	if err := a.c.store.Clear(); err != nil {
		return fmt.Errorf("could not clear session: %w", err)
	}
	return nil
}
