package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/vibrantflight/internal/models"
	"github.com/example/vibrantflight/internal/services"
)

// AuthHandler serves registration, login, password recovery and profile endpoints.
type AuthHandler struct {
	identity *services.IdentityService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(identity *services.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.identity.Register(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": res.Message,
		"user":    res.User,
		"token":   res.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an admin or a user.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.identity.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": res.Message,
		"user":    res.User,
		"token":   res.Token,
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword mails a reset link.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.identity.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password reset link sent to your email"})
}

type resetPasswordRequest struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.identity.ResetPassword(c.UserContext(), req.Email, req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password reset successful"})
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	caller, err := principal(c)
	if err != nil {
		return err
	}

	user, err := h.identity.Me(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

// UpdateAddress replaces the caller's saved address.
func (h *AuthHandler) UpdateAddress(c *fiber.Ctx) error {
	caller, err := principal(c)
	if err != nil {
		return err
	}

	var req models.Address
	if err := parseBody(c, &req); err != nil {
		return err
	}

	address, err := h.identity.UpdateAddress(c.UserContext(), caller.ID, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Address updated successfully",
		"address": address,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword replaces the caller's password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	caller, err := principal(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.identity.ChangePassword(c.UserContext(), caller.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}
