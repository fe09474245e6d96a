package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/vibrantflight/internal/models"
	"github.com/example/vibrantflight/internal/services"
)

// ContactHandler accepts contact-form submissions.
type ContactHandler struct {
	contact *services.ContactService
}

func NewContactHandler(contact *services.ContactService) *ContactHandler {
	return &ContactHandler{contact: contact}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Submit forwards a contact message to the shop inbox.
func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req contactRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	err := h.contact.Submit(c.UserContext(), models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Message sent successfully!"})
}
